// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/milcalc/internal/calculator"
)

// FindResult finds a scenario result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []calculator.Result, name string) *calculator.Result {
	for i := range results {
		if results[i].Name == name {
			return &results[i]
		}
	}
	return nil
}

// FloatPtr returns a pointer to v, for optional scenario fields.
func FloatPtr(v float64) *float64 {
	return &v
}
