package validation

import (
	"strings"

	"github.com/iwvelando/milcalc/pkg/mathutil"
	"github.com/spf13/cast"
)

var amountReplacer = strings.NewReplacer("$", "", ",", "", "%", "", "_", "")

// ParseAmount coerces raw user input into a finite number. Anything that is
// not numeric, including NaN, infinities and empty strings, becomes 0.
// Currency symbols, percent signs and thousands separators are ignored.
func ParseAmount(raw any) float64 {
	if s, ok := raw.(string); ok {
		raw = amountReplacer.Replace(strings.TrimSpace(s))
	}
	value, err := cast.ToFloat64E(raw)
	if err != nil || !mathutil.IsFinite(value) {
		return 0
	}
	return value
}

// Clamp limits value to [lower, upper]. A non-finite value clamps to lower.
func Clamp(value, lower, upper float64) float64 {
	if !mathutil.IsFinite(value) {
		return lower
	}
	return max(lower, min(value, upper))
}

// NonNegative returns value, or 0 when it is negative or non-finite.
func NonNegative(value float64) float64 {
	if !mathutil.IsFinite(value) || value < 0 {
		return 0
	}
	return value
}

// Range is an inclusive bound applied to one input field.
type Range struct {
	Min float64
	Max float64
}

// Apply clamps value into the range.
func (r Range) Apply(value float64) float64 {
	return Clamp(value, r.Min, r.Max)
}

// Contains reports whether value already lies within the range.
func (r Range) Contains(value float64) bool {
	return mathutil.IsFinite(value) && value >= r.Min && value <= r.Max
}

// ApplyInt clamps an integer input into the range.
func (r Range) ApplyInt(value int) int {
	return int(r.Apply(float64(value)))
}
