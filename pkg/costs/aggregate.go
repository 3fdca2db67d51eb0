// Package costs adds the recurring non-loan costs of home ownership to the
// base loan payment: taxes, insurance, PMI, VA funding fees, maintenance and
// anything else a calculator supplies.
package costs

import (
	"fmt"
	"strings"

	"github.com/iwvelando/milcalc/pkg/amortization"
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/equity"
	"github.com/iwvelando/milcalc/pkg/mathutil"
)

// RecurringCost is a named monthly add-on to the loan payment.
type RecurringCost struct {
	Label         string  `json:"label" yaml:"label"`
	MonthlyAmount float64 `json:"monthlyAmount" yaml:"monthlyAmount"`
}

// LoanType selects the insurance and fee rules applied to a loan.
type LoanType string

const (
	Conventional LoanType = constants.LoanTypeConventional
	VA           LoanType = constants.LoanTypeVA
)

// ParseLoanType converts user input into a LoanType. Empty input is a
// conventional loan.
func ParseLoanType(value string) (LoanType, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", constants.LoanTypeConventional:
		return Conventional, nil
	case constants.LoanTypeVA:
		return VA, nil
	default:
		return "", fmt.Errorf("expected loan type of %s or %s, got %s",
			constants.LoanTypeConventional, constants.LoanTypeVA, value)
	}
}

// Options controls the PMI and funding fee rules.
type Options struct {
	LoanType           LoanType `json:"loanType"`
	DownPaymentPercent float64  `json:"downPaymentPercent"`
	PMIRatePercent     float64  `json:"pmiRatePercent"`
	// PMIThresholdPercent is the down payment at or above which no PMI is
	// charged. Zero means the conventional 20%.
	PMIThresholdPercent float64 `json:"pmiThresholdPercent,omitempty"`
	FundingFeePercent   float64 `json:"fundingFeePercent"`
	FundingFeeExempt    bool    `json:"fundingFeeExempt"`
	// PropertyValue is the original home value used for PMI cancellation.
	// Zero derives it from the principal and down payment.
	PropertyValue float64 `json:"propertyValue,omitempty"`
	// PMICutoffLTVPercent is the loan-to-value at which PMI drops off. Zero
	// means 78%.
	PMICutoffLTVPercent float64 `json:"pmiCutoffLtvPercent,omitempty"`
}

func (o Options) pmiThreshold() float64 {
	if o.PMIThresholdPercent > 0 {
		return o.PMIThresholdPercent
	}
	return constants.DefaultPMIThresholdPercent
}

// PMICutoff is the loan-to-value percent at which PMI is cancelled.
func (o Options) PMICutoff() float64 {
	if o.PMICutoffLTVPercent > 0 {
		return o.PMICutoffLTVPercent
	}
	return constants.DefaultMortgageInsuranceCutoff
}

// FundingFeeRate is the funding fee percent actually charged.
func (o Options) FundingFeeRate() float64 {
	if o.LoanType != VA || o.FundingFeeExempt {
		return 0
	}
	return o.FundingFeePercent
}

// RequiresPMI reports whether PMI applies: a non-VA loan with less than the
// threshold down.
func (o Options) RequiresPMI() bool {
	return o.LoanType != VA && o.PMIRatePercent > 0 && o.DownPaymentPercent < o.pmiThreshold()
}

// propertyValue returns the original home value backing the loan.
func (o Options) propertyValue(principal float64) float64 {
	if o.PropertyValue > 0 {
		return o.PropertyValue
	}
	if o.DownPaymentPercent > 0 && o.DownPaymentPercent < constants.PercentageMultiplier {
		return principal / (1 - o.DownPaymentPercent/constants.PercentageMultiplier)
	}
	return principal
}

// FinancedLoan folds any funding fee into the principal.
func FinancedLoan(loan amortization.LoanTerms, opts Options) amortization.LoanTerms {
	financed := loan
	financed.Principal = loan.Principal * (1 + opts.FundingFeeRate()/constants.PercentageMultiplier)
	return financed
}

// MonthlyPMI is the monthly premium on principal at an annual rate.
func MonthlyPMI(principal, pmiRatePercent float64) float64 {
	return mathutil.ApplyPercentage(principal, pmiRatePercent) / constants.MonthsPerYear
}

// Breakdown is the all-in monthly cost of a loan.
type Breakdown struct {
	BasePayment        float64            `json:"basePayment"`
	EffectivePrincipal float64            `json:"effectivePrincipal"`
	FundingFee         float64            `json:"fundingFee"`
	PMI                float64            `json:"pmi"`
	CostsByLabel       map[string]float64 `json:"costsByLabel"`
	Total              float64            `json:"total"`
}

// MonthlyAllInCost combines the loan payment, any financed funding fee, PMI
// and the supplied recurring costs. Costs sharing a label are summed. No
// rounding is applied.
func MonthlyAllInCost(loan amortization.LoanTerms, recurring []RecurringCost, opts Options) Breakdown {
	financed := FinancedLoan(loan, opts)

	breakdown := Breakdown{
		BasePayment:        financed.Payment(),
		EffectivePrincipal: financed.Principal,
		FundingFee:         financed.Principal - loan.Principal,
		CostsByLabel:       make(map[string]float64, len(recurring)+1),
	}

	total := breakdown.BasePayment
	for _, cost := range recurring {
		breakdown.CostsByLabel[cost.Label] += cost.MonthlyAmount
		total += cost.MonthlyAmount
	}

	if opts.RequiresPMI() {
		breakdown.PMI = MonthlyPMI(loan.Principal, opts.PMIRatePercent)
		breakdown.CostsByLabel[constants.LabelPMI] += breakdown.PMI
		total += breakdown.PMI
	}

	breakdown.Total = total
	return breakdown
}

// PMICancellationMonth returns the first month at which the balance falls to
// cutoffLTVPercent of propertyValue.
func PMICancellationMonth(loan amortization.LoanTerms, propertyValue, cutoffLTVPercent float64) (int, bool) {
	if propertyValue <= 0 {
		return 0, false
	}
	snapshots := equity.Project(loan, propertyValue, 0, loan.TermMonths)
	return equity.MonthReachingEquityPercent(snapshots, constants.PercentageMultiplier-cutoffLTVPercent)
}

// Projection totals the cost of ownership over a number of months.
type Projection struct {
	Months         int     `json:"months"`
	LoanPayments   float64 `json:"loanPayments"`
	RecurringCosts float64 `json:"recurringCosts"`
	PMI            float64 `json:"pmi"`
	Total          float64 `json:"total"`
	PMIMonths      int     `json:"pmiMonths"`
	// Monthly is the all-in cost for months 1..Months.
	Monthly []float64 `json:"monthly"`
}

// Project totals the all-in cost over months. Loan payments stop after the
// term and PMI stops once the loan reaches the cancellation LTV.
func Project(loan amortization.LoanTerms, recurring []RecurringCost, opts Options, months int) Projection {
	breakdown := MonthlyAllInCost(loan, recurring, opts)
	financed := FinancedLoan(loan, opts)

	recurringMonthly := 0.0
	for _, cost := range recurring {
		recurringMonthly += cost.MonthlyAmount
	}

	pmiLastMonth := 0
	if breakdown.PMI > 0 {
		pmiLastMonth = financed.TermMonths
		if month, ok := PMICancellationMonth(financed, opts.propertyValue(loan.Principal), opts.PMICutoff()); ok {
			pmiLastMonth = month
		}
	}

	projection := Projection{Months: max(months, 0)}
	projection.Monthly = make([]float64, 0, projection.Months)
	for month := 1; month <= months; month++ {
		cost := recurringMonthly
		if month <= financed.TermMonths {
			cost += breakdown.BasePayment
			projection.LoanPayments += breakdown.BasePayment
		}
		if month <= pmiLastMonth {
			cost += breakdown.PMI
			projection.PMI += breakdown.PMI
			projection.PMIMonths++
		}
		projection.RecurringCosts += recurringMonthly
		projection.Monthly = append(projection.Monthly, cost)
	}
	projection.Total = projection.LoanPayments + projection.RecurringCosts + projection.PMI
	return projection
}
