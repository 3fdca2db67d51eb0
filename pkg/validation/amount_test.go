package validation

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{"Float", 1234.5, 1234.5},
		{"Integer", 42, 42},
		{"Numeric string", "350000", 350000},
		{"Padded string", "  6.85 ", 6.85},
		{"Currency string", "$1,250.75", 1250.75},
		{"Percent string", "3.5%", 3.5},
		{"Negative string", "-200", -200},
		{"JSON number", json.Number("99.9"), 99.9},
		{"Empty string", "", 0},
		{"Non-numeric string", "abc", 0},
		{"NaN string", "NaN", 0},
		{"NaN value", math.NaN(), 0},
		{"Infinity", math.Inf(1), 0},
		{"Infinity string", "Inf", 0},
		{"Nil", nil, 0},
		{"Unsupported type", []int{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAmount(tt.input)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("ParseAmount(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"Within range", 50, 50},
		{"Below range", -10, 0},
		{"Above range", 150, 100},
		{"Lower edge", 0, 0},
		{"Upper edge", 100, 100},
		{"NaN", math.NaN(), 0},
		{"Positive infinity", math.Inf(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, 0, 100); got != tt.expected {
				t.Errorf("Clamp(%v) = %v, expected %v", tt.value, got, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	tests := []struct {
		value    float64
		expected float64
	}{
		{5, 5},
		{0, 0},
		{-0.01, 0},
		{math.NaN(), 0},
		{math.Inf(-1), 0},
	}

	for _, tt := range tests {
		if got := NonNegative(tt.value); got != tt.expected {
			t.Errorf("NonNegative(%v) = %v, expected %v", tt.value, got, tt.expected)
		}
	}
}

func TestRange(t *testing.T) {
	r := Range{Min: 1, Max: 480}

	if got := r.Apply(600); got != 480 {
		t.Errorf("Apply(600) = %v, expected 480", got)
	}
	if got := r.ApplyInt(-3); got != 1 {
		t.Errorf("ApplyInt(-3) = %v, expected 1", got)
	}
	if got := r.ApplyInt(360); got != 360 {
		t.Errorf("ApplyInt(360) = %v, expected 360", got)
	}
	if !r.Contains(360) {
		t.Error("expected 360 to be within range")
	}
	if r.Contains(0) || r.Contains(math.NaN()) {
		t.Error("expected 0 and NaN to be outside range")
	}
}
