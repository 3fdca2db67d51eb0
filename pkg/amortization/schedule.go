package amortization

import (
	"fmt"
	"iter"
	"slices"

	"github.com/iwvelando/milcalc/pkg/constants"
	"go.uber.org/zap"
)

// SchedulePoint is one month of an amortization schedule. Month 0 is the state
// before the first payment.
type SchedulePoint struct {
	Month                   int     `json:"month"`
	Balance                 float64 `json:"balance"`
	CumulativePrincipalPaid float64 `json:"cumulativePrincipalPaid"`
	Interest                float64 `json:"interest"`
	Principal               float64 `json:"principal"`
	Extra                   float64 `json:"extra,omitempty"`
}

// ExtraPayment represents an extra principal payment event. Months are payment
// month indexes starting at 1. An EndMonth of 0 leaves the event open-ended.
type ExtraPayment struct {
	Name       string  `json:"name" yaml:"name"`
	Amount     float64 `json:"amount" yaml:"amount"`
	StartMonth int     `json:"startMonth" yaml:"startMonth"`
	EndMonth   int     `json:"endMonth,omitempty" yaml:"endMonth,omitempty"`
	Frequency  int     `json:"frequency,omitempty" yaml:"frequency,omitempty"` // months
}

// AppliesTo reports whether the event pays in the given month.
func (e ExtraPayment) AppliesTo(month int) bool {
	start := max(e.StartMonth, 1)
	if month < start {
		return false
	}
	if e.EndMonth > 0 && month > e.EndMonth {
		return false
	}
	frequency := e.Frequency
	if frequency <= 0 {
		frequency = constants.DefaultFrequency
	}
	return (month-start)%frequency == 0
}

// ExtraPrincipalForMonth calculates the total extra principal payment for a
// given month.
func ExtraPrincipalForMonth(extras []ExtraPayment, month int) float64 {
	amount := 0.00
	for _, event := range extras {
		if event.Amount > 0 && event.AppliesTo(month) {
			amount += event.Amount
		}
	}
	return amount
}

// ScheduleGenerator produces amortization schedules and logs the notable
// events along the way (extra principal, overpayment capping, early payoff).
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance.
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Points returns the schedule for loan as a lazy sequence running from month
// 0 through min(TermMonths, horizonMonths). Extra principal is added to the
// fixed payment; the loan is never re-amortized. Each iteration starts over
// from the original principal.
func (g *ScheduleGenerator) Points(loan LoanTerms, horizonMonths int, extras ...ExtraPayment) iter.Seq[SchedulePoint] {
	return func(yield func(SchedulePoint) bool) {
		if horizonMonths < 0 {
			return
		}
		last := min(horizonMonths, max(loan.TermMonths, 0))

		rate := loan.MonthlyRate()
		payment := loan.Payment()
		balance := loan.Principal
		cumulative := 0.0

		if !yield(SchedulePoint{Month: 0, Balance: balance}) {
			return
		}

		for month := 1; month <= last; month++ {
			point := SchedulePoint{Month: month}
			if balance > 0 {
				extra := ExtraPrincipalForMonth(extras, month)
				step := AmortizationStep(balance, rate, payment+extra)
				// Only what the balance can absorb counts as principal paid.
				step.Principal = balance - step.Balance

				regular := min(max(payment-step.Interest, 0), balance)
				applied := max(step.Principal-regular, 0)
				if applied > 0 {
					g.logger.Debug(fmt.Sprintf("month %d: applying extra principal payment %.2f", month, applied),
						zap.String("op", "amortization.Points"),
					)
				}
				if extra-applied > constants.CurrencyTolerance {
					g.logger.Debug("Capping extra principal payment to prevent overpayment",
						zap.String("op", "amortization.Points"),
						zap.Int("month", month),
						zap.Float64("requested", extra),
						zap.Float64("capped_to_balance", applied),
					)
				}

				if month == loan.TermMonths && step.Balance > 0 {
					// Retire floating point residue on the final scheduled payment.
					step.Principal += step.Balance
					step.Balance = 0
				}

				cumulative += step.Principal
				point.Interest = step.Interest
				point.Principal = step.Principal
				point.Extra = applied
				balance = step.Balance

				if balance == 0 && month < loan.TermMonths {
					g.logger.Debug(fmt.Sprintf("loan retired early at month %d of %d", month, loan.TermMonths),
						zap.String("op", "amortization.Points"),
					)
				}
			}
			point.Balance = balance
			point.CumulativePrincipalPaid = cumulative
			if !yield(point) {
				return
			}
		}
	}
}

// Generate collects Points into a slice.
func (g *ScheduleGenerator) Generate(loan LoanTerms, horizonMonths int, extras ...ExtraPayment) []SchedulePoint {
	return slices.Collect(g.Points(loan, horizonMonths, extras...))
}

// Points is ScheduleGenerator.Points without logging.
func Points(loan LoanTerms, horizonMonths int, extras ...ExtraPayment) iter.Seq[SchedulePoint] {
	return NewScheduleGenerator(nil).Points(loan, horizonMonths, extras...)
}

// Schedule is ScheduleGenerator.Generate without logging.
func Schedule(loan LoanTerms, horizonMonths int, extras ...ExtraPayment) []SchedulePoint {
	return NewScheduleGenerator(nil).Generate(loan, horizonMonths, extras...)
}

// TotalInterest sums the interest paid across a schedule.
func TotalInterest(schedule []SchedulePoint) float64 {
	total := 0.0
	for _, point := range schedule {
		total += point.Interest
	}
	return total
}

// PayoffMonth returns the first month at which the balance reaches zero.
func PayoffMonth(schedule []SchedulePoint) (int, bool) {
	for _, point := range schedule {
		if point.Balance <= 0 {
			return point.Month, true
		}
	}
	return 0, false
}

// Savings compares a loan paid on schedule against the same loan with extra
// principal payments.
type Savings struct {
	BaselineInterest     float64 `json:"baselineInterest"`
	InterestWithExtra    float64 `json:"interestWithExtra"`
	InterestSaved        float64 `json:"interestSaved"`
	BaselinePayoffMonth  int     `json:"baselinePayoffMonth"`
	PayoffMonthWithExtra int     `json:"payoffMonthWithExtra"`
	MonthsSaved          int     `json:"monthsSaved"`
}

// CompareExtraPayments runs the full term with and without extras.
func (g *ScheduleGenerator) CompareExtraPayments(loan LoanTerms, extras ...ExtraPayment) Savings {
	baseline := Schedule(loan, loan.TermMonths)
	withExtra := g.Generate(loan, loan.TermMonths, extras...)

	var savings Savings
	savings.BaselineInterest = TotalInterest(baseline)
	savings.InterestWithExtra = TotalInterest(withExtra)
	savings.InterestSaved = savings.BaselineInterest - savings.InterestWithExtra
	savings.BaselinePayoffMonth, _ = PayoffMonth(baseline)
	savings.PayoffMonthWithExtra, _ = PayoffMonth(withExtra)
	savings.MonthsSaved = savings.BaselinePayoffMonth - savings.PayoffMonthWithExtra
	return savings
}
