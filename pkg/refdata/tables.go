// Package refdata holds the static reference tables the calculators consume:
// national averages, per-state rates and the VA funding fee schedule.
//
// Tables are plain values handed to callers explicitly so tests can supply
// synthetic data. A loaded Tables is never mutated and is safe to share
// between goroutines.
package refdata

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultTables []byte

// NationalAverages are the fallback values used when a state has no entry.
type NationalAverages struct {
	PropertyTaxRatePercent float64 `yaml:"propertyTaxRatePercent" json:"propertyTaxRatePercent"`
	HomeInsuranceAnnual    float64 `yaml:"homeInsuranceAnnual" json:"homeInsuranceAnnual"`
	AppreciationPercent    float64 `yaml:"appreciationPercent" json:"appreciationPercent"`
	MortgageRatePercent    float64 `yaml:"mortgageRatePercent" json:"mortgageRatePercent"`
	PMIRatePercent         float64 `yaml:"pmiRatePercent" json:"pmiRatePercent"`
	MaintenancePercent     float64 `yaml:"maintenancePercent" json:"maintenancePercent"` // annual, of home value
	UtilitiesMonthly       float64 `yaml:"utilitiesMonthly" json:"utilitiesMonthly"`
}

// State holds per-state rates. Unset optional values fall back to the
// national averages.
type State struct {
	Name                      string   `yaml:"name" json:"name"`
	IncomeTaxRatePercent      float64  `yaml:"incomeTaxRatePercent" json:"incomeTaxRatePercent"`
	PropertyTaxRatePercent    *float64 `yaml:"propertyTaxRatePercent,omitempty" json:"propertyTaxRatePercent,omitempty"`
	HomeInsuranceAnnual       *float64 `yaml:"homeInsuranceAnnual,omitempty" json:"homeInsuranceAnnual,omitempty"`
	AppreciationPercent       *float64 `yaml:"appreciationPercent,omitempty" json:"appreciationPercent,omitempty"`
	MilitaryRetirementTaxFree bool     `yaml:"militaryRetirementTaxFree" json:"militaryRetirementTaxFree"`
}

// FundingFeeTier is one row of the VA funding fee schedule.
type FundingFeeTier struct {
	MinDownPaymentPercent float64 `yaml:"minDownPaymentPercent" json:"minDownPaymentPercent"`
	FirstUsePercent       float64 `yaml:"firstUsePercent" json:"firstUsePercent"`
	SubsequentUsePercent  float64 `yaml:"subsequentUsePercent" json:"subsequentUsePercent"`
}

// Tables is the full set of reference data.
type Tables struct {
	Version       string           `yaml:"version" json:"version"`
	National      NationalAverages `yaml:"national" json:"national"`
	States        map[string]State `yaml:"states" json:"states"`
	VAFundingFees []FundingFeeTier `yaml:"vaFundingFees" json:"vaFundingFees"`
}

var loadDefault = sync.OnceValues(func() (*Tables, error) {
	return Parse(defaultTables)
})

// Default returns the tables bundled with the binary.
func Default() *Tables {
	tables, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("bundled reference data is invalid: %v", err))
	}
	return tables
}

// Load reads tables from a YAML file. An empty path returns the bundled
// defaults.
func Load(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference data: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML reference tables.
func Parse(data []byte) (*Tables, error) {
	var tables Tables
	if err := yaml.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}

	normalized := make(map[string]State, len(tables.States))
	for code, state := range tables.States {
		normalized[strings.ToUpper(strings.TrimSpace(code))] = state
	}
	tables.States = normalized

	sort.Slice(tables.VAFundingFees, func(i, j int) bool {
		return tables.VAFundingFees[i].MinDownPaymentPercent < tables.VAFundingFees[j].MinDownPaymentPercent
	})

	if err := tables.Validate(); err != nil {
		return nil, err
	}
	return &tables, nil
}

// Validate rejects tables with negative rates or amounts.
func (t *Tables) Validate() error {
	var errs []error
	n := t.National
	for name, value := range map[string]float64{
		"national.propertyTaxRatePercent": n.PropertyTaxRatePercent,
		"national.homeInsuranceAnnual":    n.HomeInsuranceAnnual,
		"national.mortgageRatePercent":    n.MortgageRatePercent,
		"national.pmiRatePercent":         n.PMIRatePercent,
		"national.maintenancePercent":     n.MaintenancePercent,
		"national.utilitiesMonthly":       n.UtilitiesMonthly,
	} {
		if value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, value))
		}
	}
	for code, state := range t.States {
		if state.IncomeTaxRatePercent < 0 {
			errs = append(errs, fmt.Errorf("states.%s.incomeTaxRatePercent must not be negative", code))
		}
		if state.PropertyTaxRatePercent != nil && *state.PropertyTaxRatePercent < 0 {
			errs = append(errs, fmt.Errorf("states.%s.propertyTaxRatePercent must not be negative", code))
		}
		if state.HomeInsuranceAnnual != nil && *state.HomeInsuranceAnnual < 0 {
			errs = append(errs, fmt.Errorf("states.%s.homeInsuranceAnnual must not be negative", code))
		}
	}
	for i, tier := range t.VAFundingFees {
		if tier.FirstUsePercent < 0 || tier.SubsequentUsePercent < 0 {
			errs = append(errs, fmt.Errorf("vaFundingFees[%d] must not be negative", i))
		}
	}
	return errors.Join(errs...)
}

// State looks up a state by its postal code.
func (t *Tables) State(code string) (State, bool) {
	state, ok := t.States[strings.ToUpper(strings.TrimSpace(code))]
	return state, ok
}

// PropertyTaxRatePercent returns the state's property tax rate, or the
// national average for unknown states.
func (t *Tables) PropertyTaxRatePercent(code string) float64 {
	if state, ok := t.State(code); ok && state.PropertyTaxRatePercent != nil {
		return *state.PropertyTaxRatePercent
	}
	return t.National.PropertyTaxRatePercent
}

// HomeInsuranceAnnual returns the state's annual insurance premium, or the
// national average for unknown states.
func (t *Tables) HomeInsuranceAnnual(code string) float64 {
	if state, ok := t.State(code); ok && state.HomeInsuranceAnnual != nil {
		return *state.HomeInsuranceAnnual
	}
	return t.National.HomeInsuranceAnnual
}

// AppreciationPercent returns the state's annual appreciation, or the
// national average for unknown states.
func (t *Tables) AppreciationPercent(code string) float64 {
	if state, ok := t.State(code); ok && state.AppreciationPercent != nil {
		return *state.AppreciationPercent
	}
	return t.National.AppreciationPercent
}

// PropertyTaxMonthly is the monthly property tax on homeValue.
func (t *Tables) PropertyTaxMonthly(code string, homeValue float64) float64 {
	return mathutil.ApplyPercentage(homeValue, t.PropertyTaxRatePercent(code)) / constants.MonthsPerYear
}

// HomeInsuranceMonthly is the monthly insurance premium.
func (t *Tables) HomeInsuranceMonthly(code string) float64 {
	return t.HomeInsuranceAnnual(code) / constants.MonthsPerYear
}

// MaintenanceMonthly is the monthly maintenance reserve on homeValue.
func (t *Tables) MaintenanceMonthly(homeValue float64) float64 {
	return mathutil.ApplyPercentage(homeValue, t.National.MaintenancePercent) / constants.MonthsPerYear
}

// FundingFeePercent returns the VA funding fee for the given down payment.
// Exempt borrowers (e.g. those receiving VA disability compensation) pay none.
func (t *Tables) FundingFeePercent(downPaymentPercent float64, subsequentUse, exempt bool) float64 {
	if exempt {
		return 0
	}
	fee := 0.0
	for _, tier := range t.VAFundingFees {
		if downPaymentPercent < tier.MinDownPaymentPercent {
			break
		}
		fee = tier.FirstUsePercent
		if subsequentUse {
			fee = tier.SubsequentUsePercent
		}
	}
	return fee
}
