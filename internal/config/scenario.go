package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/costs"
	"github.com/iwvelando/milcalc/pkg/validation"
)

// Scenario holds the inputs of one calculator run.
type Scenario struct {
	Name       string `yaml:"name" json:"name"`
	Active     bool   `yaml:"active" json:"active"`
	Calculator string `yaml:"calculator,omitempty" json:"calculator,omitempty"`
	StartDate  string `yaml:"startDate,omitempty" json:"startDate,omitempty"` // month of origination, YYYY-MM

	HomePrice          float64  `yaml:"homePrice" json:"homePrice"`
	DownPaymentPercent float64  `yaml:"downPaymentPercent" json:"downPaymentPercent"`
	InterestRate       *float64 `yaml:"interestRate,omitempty" json:"interestRate,omitempty"` // annual percent, national average when unset
	TermMonths         int      `yaml:"termMonths,omitempty" json:"termMonths,omitempty"`
	LoanType           string   `yaml:"loanType,omitempty" json:"loanType,omitempty"`
	VASubsequentUse    bool     `yaml:"vaSubsequentUse,omitempty" json:"vaSubsequentUse,omitempty"`
	DisabledVeteran    bool     `yaml:"disabledVeteran,omitempty" json:"disabledVeteran,omitempty"`
	State              string   `yaml:"state,omitempty" json:"state,omitempty"`
	AppreciationRate   *float64 `yaml:"appreciationRate,omitempty" json:"appreciationRate,omitempty"`
	PMIRate            *float64 `yaml:"pmiRate,omitempty" json:"pmiRate,omitempty"`
	HorizonMonths      int      `yaml:"horizonMonths,omitempty" json:"horizonMonths,omitempty"`

	// Monthly amounts. Unset property tax, insurance and maintenance come from
	// the reference tables.
	PropertyTax   *float64 `yaml:"propertyTax,omitempty" json:"propertyTax,omitempty"`
	HomeInsurance *float64 `yaml:"homeInsurance,omitempty" json:"homeInsurance,omitempty"`
	Maintenance   *float64 `yaml:"maintenance,omitempty" json:"maintenance,omitempty"`
	HOA           float64  `yaml:"hoa,omitempty" json:"hoa,omitempty"`
	Utilities     float64  `yaml:"utilities,omitempty" json:"utilities,omitempty"`
	BAH           float64  `yaml:"bah,omitempty" json:"bah,omitempty"`

	MonthlyRent         float64 `yaml:"monthlyRent,omitempty" json:"monthlyRent,omitempty"`
	RentIncreasePercent float64 `yaml:"rentIncreasePercent,omitempty" json:"rentIncreasePercent,omitempty"` // annual

	RecurringCosts         []costs.RecurringCost   `yaml:"recurringCosts,omitempty" json:"recurringCosts,omitempty"`
	ExtraMonthlyPayment    float64                 `yaml:"extraMonthlyPayment,omitempty" json:"extraMonthlyPayment,omitempty"`
	ExtraPrincipalPayments []ExtraPrincipalPayment `yaml:"extraPrincipalPayments,omitempty" json:"extraPrincipalPayments,omitempty"`
}

// ExtraPrincipalPayment is a one-time or recurring prepayment. It is
// scheduled either by date relative to the scenario start date or directly
// by payment month.
type ExtraPrincipalPayment struct {
	Name       string  `yaml:"name" json:"name"`
	Amount     float64 `yaml:"amount" json:"amount"`
	StartDate  string  `yaml:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate    string  `yaml:"endDate,omitempty" json:"endDate,omitempty"`
	StartMonth int     `yaml:"startMonth,omitempty" json:"startMonth,omitempty"`
	EndMonth   int     `yaml:"endMonth,omitempty" json:"endMonth,omitempty"`
	Frequency  int     `yaml:"frequency,omitempty" json:"frequency,omitempty"` // months
}

var (
	homePriceRange    = validation.Range{Min: 0, Max: constants.MaxHomePrice}
	percentRange      = validation.Range{Min: 0, Max: constants.PercentageMultiplier}
	interestRange     = validation.Range{Min: 0, Max: constants.MaxInterestRatePercent}
	termRange         = validation.Range{Min: 1, Max: constants.MaxTermMonths}
	horizonRange      = validation.Range{Min: 1, Max: constants.MaxHorizonMonths}
	appreciationRange = validation.Range{Min: -constants.MaxAppreciationPercent, Max: constants.MaxAppreciationPercent}
	pmiRange          = validation.Range{Min: 0, Max: constants.MaxPMIRatePercent}
	monthlyRange      = validation.Range{Min: 0, Max: constants.MaxMonthlyAmount}
)

// Clone returns a deep copy so sanitizing the copy leaves s untouched.
func (s Scenario) Clone() Scenario {
	clone := s
	clone.InterestRate = cloneFloat(s.InterestRate)
	clone.AppreciationRate = cloneFloat(s.AppreciationRate)
	clone.PMIRate = cloneFloat(s.PMIRate)
	clone.PropertyTax = cloneFloat(s.PropertyTax)
	clone.HomeInsurance = cloneFloat(s.HomeInsurance)
	clone.Maintenance = cloneFloat(s.Maintenance)
	clone.RecurringCosts = slices.Clone(s.RecurringCosts)
	clone.ExtraPrincipalPayments = slices.Clone(s.ExtraPrincipalPayments)
	return clone
}

func cloneFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}

func clampOptional(value *float64, r validation.Range) {
	if value != nil {
		*value = r.Apply(*value)
	}
}

// Sanitize clamps every input to its documented range and fills defaults.
// Non-finite values clamp to the lower bound.
func (s *Scenario) Sanitize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Calculator = strings.ToLower(strings.TrimSpace(s.Calculator))
	if s.Calculator == "" {
		s.Calculator = constants.CalculatorMortgage
	}
	s.LoanType = strings.ToLower(strings.TrimSpace(s.LoanType))
	if s.LoanType == "" {
		s.LoanType = constants.LoanTypeConventional
	}
	s.State = strings.ToUpper(strings.TrimSpace(s.State))
	s.StartDate = strings.TrimSpace(s.StartDate)

	s.HomePrice = homePriceRange.Apply(s.HomePrice)
	s.DownPaymentPercent = percentRange.Apply(s.DownPaymentPercent)
	if s.TermMonths == 0 {
		s.TermMonths = constants.DefaultTermMonths
	}
	s.TermMonths = termRange.ApplyInt(s.TermMonths)
	if s.HorizonMonths == 0 {
		s.HorizonMonths = constants.DefaultHorizonMonths
	}
	s.HorizonMonths = horizonRange.ApplyInt(s.HorizonMonths)

	clampOptional(s.InterestRate, interestRange)
	clampOptional(s.AppreciationRate, appreciationRange)
	clampOptional(s.PMIRate, pmiRange)
	clampOptional(s.PropertyTax, monthlyRange)
	clampOptional(s.HomeInsurance, monthlyRange)
	clampOptional(s.Maintenance, monthlyRange)

	s.HOA = monthlyRange.Apply(s.HOA)
	s.Utilities = monthlyRange.Apply(s.Utilities)
	s.BAH = monthlyRange.Apply(s.BAH)
	s.MonthlyRent = monthlyRange.Apply(s.MonthlyRent)
	s.RentIncreasePercent = appreciationRange.Apply(s.RentIncreasePercent)
	s.ExtraMonthlyPayment = monthlyRange.Apply(s.ExtraMonthlyPayment)

	for i := range s.RecurringCosts {
		s.RecurringCosts[i].Label = strings.TrimSpace(s.RecurringCosts[i].Label)
		s.RecurringCosts[i].MonthlyAmount = monthlyRange.Apply(s.RecurringCosts[i].MonthlyAmount)
	}
	for i := range s.ExtraPrincipalPayments {
		extra := &s.ExtraPrincipalPayments[i]
		extra.Amount = homePriceRange.Apply(extra.Amount)
		if extra.Frequency <= 0 {
			extra.Frequency = constants.DefaultFrequency
		}
		extra.StartMonth = max(extra.StartMonth, 0)
		extra.EndMonth = max(extra.EndMonth, 0)
	}
}

// ValidCalculator reports whether key names a known calculator.
func ValidCalculator(key string) bool {
	switch key {
	case constants.CalculatorMortgage, constants.CalculatorVALoan, constants.CalculatorPMI,
		constants.CalculatorEquity, constants.CalculatorRentVsBuy, constants.CalculatorBAH:
		return true
	}
	return false
}

// Validate returns an error for input that cannot be interpreted at all.
// Out-of-range numbers are not errors; Sanitize clamps them.
func (s *Scenario) Validate() error {
	var errs []error

	if s.Calculator != "" && !ValidCalculator(s.Calculator) {
		errs = append(errs, fmt.Errorf("unknown calculator %q", s.Calculator))
	}
	if _, err := costs.ParseLoanType(s.LoanType); err != nil {
		errs = append(errs, err)
	}
	if s.StartDate != "" {
		if _, err := time.Parse(DateTimeLayout, s.StartDate); err != nil {
			errs = append(errs, fmt.Errorf("invalid startDate %q, expected YYYY-MM", s.StartDate))
		}
	}
	for i, cost := range s.RecurringCosts {
		if cost.Label == "" {
			errs = append(errs, fmt.Errorf("recurring cost %d has no label", i))
		}
	}
	for _, extra := range s.ExtraPrincipalPayments {
		for _, date := range []string{extra.StartDate, extra.EndDate} {
			if date == "" {
				continue
			}
			if s.StartDate == "" {
				errs = append(errs, fmt.Errorf("extra principal payment %q is scheduled by date but the scenario has no startDate", extra.Name))
				break
			}
			if _, err := time.Parse(DateTimeLayout, date); err != nil {
				errs = append(errs, fmt.Errorf("extra principal payment %q has invalid date %q", extra.Name, date))
			}
		}
	}
	return errors.Join(errs...)
}
