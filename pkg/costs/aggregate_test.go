package costs

import (
	"math"
	"testing"

	"github.com/iwvelando/milcalc/pkg/amortization"
	"github.com/iwvelando/milcalc/pkg/constants"
)

func TestParseLoanType(t *testing.T) {
	tests := []struct {
		input    string
		expected LoanType
		wantErr  bool
	}{
		{"", Conventional, false},
		{"conventional", Conventional, false},
		{" VA ", VA, false},
		{"fha", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLoanType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLoanType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseLoanType(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMonthlyAllInCost(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 300000, AnnualRatePercent: 6.0, TermMonths: 360}
	recurring := []RecurringCost{
		{Label: constants.LabelPropertyTax, MonthlyAmount: 275},
		{Label: constants.LabelHomeInsurance, MonthlyAmount: 160},
	}
	base := amortization.MonthlyPayment(300000, 6.0, 360)

	tests := []struct {
		name          string
		opts          Options
		expectedBase  float64
		expectedPMI   float64
		expectedFee   float64
		expectedTotal float64
	}{
		{
			name:          "Conventional with 20 percent down",
			opts:          Options{LoanType: Conventional, DownPaymentPercent: 20, PMIRatePercent: 0.5},
			expectedBase:  base,
			expectedTotal: base + 435,
		},
		{
			name:          "Conventional with 5 percent down carries PMI",
			opts:          Options{LoanType: Conventional, DownPaymentPercent: 5, PMIRatePercent: 0.5},
			expectedBase:  base,
			expectedPMI:   125,
			expectedTotal: base + 435 + 125,
		},
		{
			name:          "Custom PMI threshold",
			opts:          Options{LoanType: Conventional, DownPaymentPercent: 15, PMIRatePercent: 0.5, PMIThresholdPercent: 10},
			expectedBase:  base,
			expectedTotal: base + 435,
		},
		{
			name:          "VA never carries PMI and finances the fee",
			opts:          Options{LoanType: VA, DownPaymentPercent: 0, PMIRatePercent: 0.5, FundingFeePercent: 2.15},
			expectedBase:  amortization.MonthlyPayment(306450, 6.0, 360),
			expectedFee:   6450,
			expectedTotal: amortization.MonthlyPayment(306450, 6.0, 360) + 435,
		},
		{
			name:          "Exempt VA borrower pays no fee",
			opts:          Options{LoanType: VA, FundingFeePercent: 2.15, FundingFeeExempt: true},
			expectedBase:  base,
			expectedTotal: base + 435,
		},
		{
			name:          "Funding fee ignored on conventional loans",
			opts:          Options{LoanType: Conventional, DownPaymentPercent: 25, FundingFeePercent: 2.15},
			expectedBase:  base,
			expectedTotal: base + 435,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyAllInCost(loan, recurring, tt.opts)

			if math.Abs(got.BasePayment-tt.expectedBase) > 1e-6 {
				t.Errorf("BasePayment = %.4f, expected %.4f", got.BasePayment, tt.expectedBase)
			}
			if math.Abs(got.PMI-tt.expectedPMI) > 1e-9 {
				t.Errorf("PMI = %.4f, expected %.4f", got.PMI, tt.expectedPMI)
			}
			if math.Abs(got.FundingFee-tt.expectedFee) > 1e-6 {
				t.Errorf("FundingFee = %.4f, expected %.4f", got.FundingFee, tt.expectedFee)
			}
			if math.Abs(got.Total-tt.expectedTotal) > 1e-6 {
				t.Errorf("Total = %.4f, expected %.4f", got.Total, tt.expectedTotal)
			}
			if math.Abs(got.EffectivePrincipal-(loan.Principal+tt.expectedFee)) > 1e-6 {
				t.Errorf("EffectivePrincipal = %.4f", got.EffectivePrincipal)
			}
		})
	}
}

func TestMonthlyAllInCostFinancedFeeMatchesScaledPayment(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 300000, AnnualRatePercent: 6.0, TermMonths: 360}
	got := MonthlyAllInCost(loan, nil, Options{LoanType: VA, FundingFeePercent: 2.15})

	expected := 1798.65 * 1.0215
	if math.Abs(got.BasePayment-expected) > 0.01 {
		t.Errorf("BasePayment = %.2f, expected about %.2f", got.BasePayment, expected)
	}
	if _, ok := got.CostsByLabel[constants.LabelPMI]; ok {
		t.Error("VA loans must not list PMI")
	}
}

func TestMonthlyAllInCostSumsDuplicateLabels(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 0, AnnualRatePercent: 6.0, TermMonths: 360}
	recurring := []RecurringCost{
		{Label: "Reserve", MonthlyAmount: 50},
		{Label: "Reserve", MonthlyAmount: 25},
		{Label: constants.LabelUtilities, MonthlyAmount: 300},
	}

	got := MonthlyAllInCost(loan, recurring, Options{})

	if got.CostsByLabel["Reserve"] != 75 {
		t.Errorf("Reserve = %v, expected 75", got.CostsByLabel["Reserve"])
	}
	if len(got.CostsByLabel) != 2 {
		t.Errorf("expected 2 labels, got %d", len(got.CostsByLabel))
	}
	if got.Total != 375 {
		t.Errorf("Total = %v, expected 375 with a zero principal", got.Total)
	}
}

func TestMonthlyAllInCostIsDeterministic(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 250000, AnnualRatePercent: 6.85, TermMonths: 360}
	recurring := []RecurringCost{
		{Label: "a", MonthlyAmount: 0.1},
		{Label: "b", MonthlyAmount: 0.2},
		{Label: "c", MonthlyAmount: 0.3},
	}
	opts := Options{DownPaymentPercent: 3, PMIRatePercent: 0.7}

	first := MonthlyAllInCost(loan, recurring, opts)
	for range 20 {
		if got := MonthlyAllInCost(loan, recurring, opts); got.Total != first.Total {
			t.Fatalf("Total changed between calls: %v vs %v", got.Total, first.Total)
		}
	}
}

func TestProjectStopsLoanPaymentsAfterTerm(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 12000, AnnualRatePercent: 0, TermMonths: 12}
	recurring := []RecurringCost{{Label: constants.LabelHOA, MonthlyAmount: 100}}

	got := Project(loan, recurring, Options{DownPaymentPercent: 20}, 24)

	if got.Months != 24 || len(got.Monthly) != 24 {
		t.Fatalf("expected 24 months, got %d (%d entries)", got.Months, len(got.Monthly))
	}
	if math.Abs(got.LoanPayments-12000) > 1e-6 {
		t.Errorf("LoanPayments = %.2f, expected 12000", got.LoanPayments)
	}
	if got.RecurringCosts != 2400 {
		t.Errorf("RecurringCosts = %.2f, expected 2400", got.RecurringCosts)
	}
	if math.Abs(got.Total-14400) > 1e-6 {
		t.Errorf("Total = %.2f, expected 14400", got.Total)
	}
	if math.Abs(got.Monthly[0]-1100) > 1e-9 {
		t.Errorf("month 1 = %.2f, expected 1100", got.Monthly[0])
	}
	if got.Monthly[12] != 100 {
		t.Errorf("month 13 = %.2f, expected only the recurring cost", got.Monthly[12])
	}
}

func TestProjectEndsPMIAtCutoff(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 190000, AnnualRatePercent: 6.0, TermMonths: 360}
	opts := Options{
		LoanType:           Conventional,
		DownPaymentPercent: 5,
		PMIRatePercent:     0.5,
		PropertyValue:      200000,
	}

	cancel, ok := PMICancellationMonth(loan, 200000, constants.DefaultMortgageInsuranceCutoff)
	if !ok {
		t.Fatal("expected PMI to cancel within the term")
	}

	got := Project(loan, nil, opts, 360)
	if got.PMIMonths != cancel {
		t.Errorf("PMIMonths = %d, expected %d", got.PMIMonths, cancel)
	}
	expectedPMI := float64(cancel) * MonthlyPMI(190000, 0.5)
	if math.Abs(got.PMI-expectedPMI) > 1e-6 {
		t.Errorf("PMI = %.2f, expected %.2f", got.PMI, expectedPMI)
	}
	if got.Monthly[cancel] >= got.Monthly[cancel-1] {
		t.Error("monthly cost should drop once PMI is cancelled")
	}
}

func TestProjectZeroMonths(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 100000, AnnualRatePercent: 5, TermMonths: 360}
	got := Project(loan, nil, Options{}, -5)
	if got.Months != 0 || got.Total != 0 || len(got.Monthly) != 0 {
		t.Errorf("expected an empty projection, got %+v", got)
	}
}

func TestPMICancellationMonth(t *testing.T) {
	loan := amortization.LoanTerms{Principal: 190000, AnnualRatePercent: 6.0, TermMonths: 360}
	cutoff := 200000 * 0.78

	month, ok := PMICancellationMonth(loan, 200000, 78)
	if !ok {
		t.Fatal("expected a cancellation month")
	}
	before := amortization.RemainingBalance(loan.Principal, loan.AnnualRatePercent, loan.TermMonths, month-1)
	at := amortization.RemainingBalance(loan.Principal, loan.AnnualRatePercent, loan.TermMonths, month)
	if at > cutoff+1e-6 {
		t.Errorf("balance %.2f at month %d is above the cutoff %.2f", at, month, cutoff)
	}
	if before <= cutoff {
		t.Errorf("balance %.2f at month %d already reached the cutoff", before, month-1)
	}

	if _, ok := PMICancellationMonth(loan, 0, 78); ok {
		t.Error("a zero property value has no cancellation month")
	}
}
