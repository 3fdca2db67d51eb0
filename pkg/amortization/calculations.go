// Package amortization implements the fixed-rate, fixed-term, monthly
// compounding loan engine shared by every calculator: the fixed payment, the
// interest/principal split of a single month, the remaining balance after N
// months and the full month-indexed schedule.
//
// All functions are pure and total. Inputs are assumed to be finite and
// non-negative; clamping happens at the validation boundary, not here.
package amortization

import (
	"math"

	"github.com/iwvelando/milcalc/pkg/mathutil"
)

// LoanTerms describes a fixed-rate amortizing loan.
type LoanTerms struct {
	Principal         float64 `json:"principal" yaml:"principal"`
	AnnualRatePercent float64 `json:"annualRatePercent" yaml:"annualRatePercent"`
	TermMonths        int     `json:"termMonths" yaml:"termMonths"`
}

// MonthlyRate returns the fractional rate applied each month.
func (l LoanTerms) MonthlyRate() float64 {
	return MonthlyRate(l.AnnualRatePercent)
}

// Payment returns the fixed monthly payment for the loan.
func (l LoanTerms) Payment() float64 {
	return MonthlyPayment(l.Principal, l.AnnualRatePercent, l.TermMonths)
}

// Step holds the result of applying one monthly payment to a balance.
type Step struct {
	Interest  float64 `json:"interest"`
	Principal float64 `json:"principal"`
	Balance   float64 `json:"balance"`
}

// MonthlyRate converts an annual percentage rate into the monthly fraction,
// e.g. 6.0 -> 0.005.
func MonthlyRate(annualRatePercent float64) float64 {
	return mathutil.MonthlyFraction(annualRatePercent)
}

// MonthlyPayment calculates the fixed monthly payment for a loan using the
// standard amortization formula.
func MonthlyPayment(principal, annualRatePercent float64, termMonths int) float64 {
	if principal == 0 {
		return 0
	}
	if termMonths <= 0 {
		// Nothing to spread the balance over; it is all due at once.
		return principal
	}

	periodicInterestRate := MonthlyRate(annualRatePercent)
	if periodicInterestRate == 0 {
		return principal / float64(termMonths)
	}

	power := math.Pow(1.00+periodicInterestRate, float64(termMonths))
	discountFactor := (power - 1.00) / power
	return principal * periodicInterestRate / discountFactor
}

// AmortizationStep applies a single payment to balance. Principal is the
// payment less interest even when that exceeds the balance; only the new
// balance is clamped at zero. A retired loan produces an all-zero step.
func AmortizationStep(balance, monthlyRate, payment float64) Step {
	if balance <= 0 {
		return Step{}
	}

	interest := balance * monthlyRate
	principal := payment - interest

	newBalance := balance - principal
	if newBalance < 0 {
		newBalance = 0
	}

	return Step{
		Interest:  interest,
		Principal: principal,
		Balance:   newBalance,
	}
}

// RemainingBalance returns the balance left after elapsedMonths payments of
// the loan's fixed payment.
func RemainingBalance(principal, annualRatePercent float64, termMonths, elapsedMonths int) float64 {
	if elapsedMonths <= 0 {
		return principal
	}
	if elapsedMonths >= termMonths {
		return 0
	}

	rate := MonthlyRate(annualRatePercent)
	payment := MonthlyPayment(principal, annualRatePercent, termMonths)

	balance := principal
	for month := 0; month < elapsedMonths && balance > 0; month++ {
		balance = AmortizationStep(balance, rate, payment).Balance
	}
	return balance
}

// CumulativePrincipalPaid returns the principal retired after elapsedMonths
// payments.
func CumulativePrincipalPaid(principal, annualRatePercent float64, termMonths, elapsedMonths int) float64 {
	return principal - RemainingBalance(principal, annualRatePercent, termMonths, elapsedMonths)
}
