// Package mathutil provides the percentage and rate conversions shared by
// the engines.
package mathutil

import (
	"math"

	"github.com/iwvelando/milcalc/pkg/constants"
)

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total float64) float64 {
	if total == 0 {
		return 0
	}
	return (value / total) * constants.PercentageMultiplier
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// MonthlyFraction converts an annual percentage into the fractional rate
// applied each month, e.g. 6.0 -> 0.005.
func MonthlyFraction(annualPercent float64) float64 {
	return annualPercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}
