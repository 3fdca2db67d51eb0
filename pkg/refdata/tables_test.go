package refdata

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const syntheticTables = `
version: test
national:
  propertyTaxRatePercent: 1.2
  homeInsuranceAnnual: 1200
  appreciationPercent: 3.0
  mortgageRatePercent: 7.0
  pmiRatePercent: 0.6
  maintenancePercent: 1.2
  utilitiesMonthly: 300
vaFundingFees:
  - minDownPaymentPercent: 10
    firstUsePercent: 1.25
    subsequentUsePercent: 1.25
  - minDownPaymentPercent: 0
    firstUsePercent: 2.15
    subsequentUsePercent: 3.3
  - minDownPaymentPercent: 5
    firstUsePercent: 1.5
    subsequentUsePercent: 1.5
states:
  tx:
    name: Texas
    incomeTaxRatePercent: 0
    propertyTaxRatePercent: 1.8
    homeInsuranceAnnual: 3600
  ZZ:
    name: Nowhere
    incomeTaxRatePercent: 2
`

func TestDefaultTablesLoad(t *testing.T) {
	tables := Default()

	if tables.Version == "" {
		t.Error("expected bundled tables to carry a version")
	}
	if len(tables.States) == 0 {
		t.Error("expected bundled tables to include states")
	}
	if len(tables.VAFundingFees) == 0 {
		t.Error("expected bundled tables to include the VA funding fee schedule")
	}
	if Default() != tables {
		t.Error("Default() should return the same parsed tables each call")
	}
}

func TestParseNormalizesStateCodes(t *testing.T) {
	tables, err := Parse([]byte(syntheticTables))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, ok := tables.State("TX"); !ok {
		t.Error("expected lower-case state code to be normalized")
	}
	if _, ok := tables.State(" tx "); !ok {
		t.Error("expected lookup to ignore case and whitespace")
	}
}

func TestLookupsFallBackToNationalAverages(t *testing.T) {
	tables, err := Parse([]byte(syntheticTables))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"Known state property tax", tables.PropertyTaxRatePercent("TX"), 1.8},
		{"Unknown state property tax", tables.PropertyTaxRatePercent("QQ"), 1.2},
		{"State without property tax entry", tables.PropertyTaxRatePercent("ZZ"), 1.2},
		{"Known state insurance", tables.HomeInsuranceAnnual("TX"), 3600},
		{"Unknown state insurance", tables.HomeInsuranceAnnual(""), 1200},
		{"State without appreciation entry", tables.AppreciationPercent("TX"), 3.0},
		{"Monthly property tax", tables.PropertyTaxMonthly("TX", 300000), 450},
		{"Monthly insurance", tables.HomeInsuranceMonthly("QQ"), 100},
		{"Monthly maintenance", tables.MaintenanceMonthly(300000), 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.expected) > 1e-9 {
				t.Errorf("got %v, expected %v", tt.got, tt.expected)
			}
		})
	}
}

func TestFundingFeePercent(t *testing.T) {
	tables, err := Parse([]byte(syntheticTables))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tests := []struct {
		name          string
		downPayment   float64
		subsequentUse bool
		exempt        bool
		expected      float64
	}{
		{name: "No down payment first use", downPayment: 0, expected: 2.15},
		{name: "No down payment subsequent use", downPayment: 0, subsequentUse: true, expected: 3.3},
		{name: "Five percent down", downPayment: 5, expected: 1.5},
		{name: "Just under ten percent", downPayment: 9.99, subsequentUse: true, expected: 1.5},
		{name: "Ten percent down", downPayment: 10, expected: 1.25},
		{name: "Twenty percent down", downPayment: 20, subsequentUse: true, expected: 1.25},
		{name: "Disabled veteran exempt", downPayment: 0, exempt: true, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.FundingFeePercent(tt.downPayment, tt.subsequentUse, tt.exempt)
			if got != tt.expected {
				t.Errorf("FundingFeePercent() = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestParseRejectsInvalidTables(t *testing.T) {
	tests := map[string]string{
		"malformed yaml":         "national: [",
		"negative national rate": "national:\n  propertyTaxRatePercent: -1\n",
		"negative state rate":    "states:\n  TX:\n    propertyTaxRatePercent: -0.5\n",
		"negative funding fee":   "vaFundingFees:\n  - minDownPaymentPercent: 0\n    firstUsePercent: -1\n",
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	tables, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if tables != Default() {
		t.Error("empty path should return the bundled tables")
	}

	path := filepath.Join(t.TempDir(), "tables.yaml")
	if err := os.WriteFile(path, []byte(syntheticTables), 0600); err != nil {
		t.Fatalf("failed to write tables: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Version != "test" {
		t.Errorf("expected version test, got %s", loaded.Version)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}
}
