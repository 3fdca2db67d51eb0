package config

import (
	"fmt"

	"github.com/iwvelando/milcalc/pkg/amortization"
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/costs"
	"github.com/iwvelando/milcalc/pkg/datetime"
	"github.com/iwvelando/milcalc/pkg/equity"
	"github.com/iwvelando/milcalc/pkg/mathutil"
	"github.com/iwvelando/milcalc/pkg/refdata"
)

// DownPayment is the cash paid at closing.
func (s *Scenario) DownPayment() float64 {
	return mathutil.ApplyPercentage(s.HomePrice, s.DownPaymentPercent)
}

// InterestRatePercent returns the scenario rate or the national average.
func (s *Scenario) InterestRatePercent(tables *refdata.Tables) float64 {
	if s.InterestRate != nil {
		return *s.InterestRate
	}
	return tables.National.MortgageRatePercent
}

// AppreciationPercent returns the scenario appreciation or the state value.
func (s *Scenario) AppreciationPercent(tables *refdata.Tables) float64 {
	if s.AppreciationRate != nil {
		return *s.AppreciationRate
	}
	return tables.AppreciationPercent(s.State)
}

// PMIRatePercent returns the scenario PMI rate or the national average.
func (s *Scenario) PMIRatePercent(tables *refdata.Tables) float64 {
	if s.PMIRate != nil {
		return *s.PMIRate
	}
	return tables.National.PMIRatePercent
}

// LoanTerms converts the scenario into the financed loan before any funding
// fee.
func (s *Scenario) LoanTerms(tables *refdata.Tables) amortization.LoanTerms {
	return amortization.LoanTerms{
		Principal:         max(s.HomePrice-s.DownPayment(), 0),
		AnnualRatePercent: s.InterestRatePercent(tables),
		TermMonths:        s.TermMonths,
	}
}

// CostOptions converts the scenario into PMI and funding fee rules.
func (s *Scenario) CostOptions(tables *refdata.Tables) (costs.Options, error) {
	loanType, err := costs.ParseLoanType(s.LoanType)
	if err != nil {
		return costs.Options{}, err
	}
	opts := costs.Options{
		LoanType:           loanType,
		DownPaymentPercent: s.DownPaymentPercent,
		PMIRatePercent:     s.PMIRatePercent(tables),
		FundingFeeExempt:   s.DisabledVeteran,
		PropertyValue:      s.HomePrice,
	}
	if loanType == costs.VA {
		opts.FundingFeePercent = tables.FundingFeePercent(s.DownPaymentPercent, s.VASubsequentUse, s.DisabledVeteran)
	}
	return opts, nil
}

// MonthlyCosts lists the recurring non-loan costs, filling property tax,
// insurance and maintenance from the tables when the scenario leaves them
// unset. PMI is not included; the cost aggregator adds it.
func (s *Scenario) MonthlyCosts(tables *refdata.Tables) []costs.RecurringCost {
	propertyTax := tables.PropertyTaxMonthly(s.State, s.HomePrice)
	if s.PropertyTax != nil {
		propertyTax = *s.PropertyTax
	}
	insurance := tables.HomeInsuranceMonthly(s.State)
	if s.HomeInsurance != nil {
		insurance = *s.HomeInsurance
	}
	maintenance := tables.MaintenanceMonthly(s.HomePrice)
	if s.Maintenance != nil {
		maintenance = *s.Maintenance
	}

	var recurring []costs.RecurringCost
	add := func(label string, amount float64) {
		if amount > 0 {
			recurring = append(recurring, costs.RecurringCost{Label: label, MonthlyAmount: amount})
		}
	}
	add(constants.LabelPropertyTax, propertyTax)
	add(constants.LabelHomeInsurance, insurance)
	add(constants.LabelHOA, s.HOA)
	add(constants.LabelMaintenance, maintenance)
	add(constants.LabelUtilities, s.Utilities)
	for _, cost := range s.RecurringCosts {
		add(cost.Label, cost.MonthlyAmount)
	}
	return recurring
}

// ExtraPayments converts the scheduled prepayments into payment-month
// indexes. A payment whose end falls before the first payment month is
// dropped.
func (s *Scenario) ExtraPayments() ([]amortization.ExtraPayment, error) {
	var extras []amortization.ExtraPayment
	for _, payment := range s.ExtraPrincipalPayments {
		extra := amortization.ExtraPayment{
			Name:       payment.Name,
			Amount:     payment.Amount,
			StartMonth: payment.StartMonth,
			EndMonth:   payment.EndMonth,
			Frequency:  payment.Frequency,
		}
		if payment.StartDate != "" {
			month, err := s.monthIndex(payment.StartDate)
			if err != nil {
				return nil, fmt.Errorf("extra principal payment %q: %w", payment.Name, err)
			}
			extra.StartMonth = month
		}
		if payment.EndDate != "" {
			month, err := s.monthIndex(payment.EndDate)
			if err != nil {
				return nil, fmt.Errorf("extra principal payment %q: %w", payment.Name, err)
			}
			if month < 1 {
				continue
			}
			extra.EndMonth = month
		}
		extras = append(extras, extra)
	}
	return extras, nil
}

func (s *Scenario) monthIndex(date string) (int, error) {
	if s.StartDate == "" {
		return 0, fmt.Errorf("date %s requires a scenario startDate", date)
	}
	return datetime.MonthsBetween(s.StartDate, date)
}

// EquityOptions converts the prepayment settings for the equity projector.
func (s *Scenario) EquityOptions() (equity.Options, error) {
	extras, err := s.ExtraPayments()
	if err != nil {
		return equity.Options{}, err
	}
	return equity.Options{ExtraMonthlyPayment: s.ExtraMonthlyPayment, Extras: extras}, nil
}
