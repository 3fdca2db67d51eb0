// Package format renders engine values for display. Rounding to cents
// happens here and nowhere upstream.
package format

import (
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Cents rounds amount half away from zero to two decimal places.
func Cents(amount float64) float64 {
	return decimal.NewFromFloat(amount).Round(constants.CurrencyPlaces).InexactFloat64()
}

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	rounded := Cents(amount)
	if rounded < 0 {
		return "-$" + grouped(-rounded)
	}
	return "$" + grouped(rounded)
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	rounded := Cents(amount)
	if rounded < 0 {
		return "-" + grouped(-rounded)
	}
	return grouped(rounded)
}

// Percent renders a percentage value such as 6.85 as "6.85%".
func Percent(value float64) string {
	return NumericCurrency(value) + "%"
}

func grouped(value float64) string {
	return printer.Sprintf("%.2f", value)
}
