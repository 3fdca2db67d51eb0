// Package equity projects home value, loan balance and equity month by month
// on top of the amortization engine.
package equity

import (
	"iter"
	"math"
	"slices"

	"github.com/iwvelando/milcalc/pkg/amortization"
	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/mathutil"
	"go.uber.org/zap"
)

// Snapshot is the state of a home purchase at a given month.
type Snapshot struct {
	Month                  int     `json:"month"`
	HomeValue              float64 `json:"homeValue"`
	LoanBalance            float64 `json:"loanBalance"`
	Equity                 float64 `json:"equity"`
	AppreciationSinceStart float64 `json:"appreciationSinceStart"`
}

// Options holds optional prepayment behavior for a projection.
type Options struct {
	// ExtraMonthlyPayment is added to every scheduled payment.
	ExtraMonthlyPayment float64
	// Extras are additional one-time or recurring principal payments.
	Extras []amortization.ExtraPayment
}

// HomeValue compounds homeValue0 monthly at annualAppreciationPercent/12.
func HomeValue(homeValue0, annualAppreciationPercent float64, month int) float64 {
	return homeValue0 * math.Pow(1+mathutil.MonthlyFraction(annualAppreciationPercent), float64(month))
}

// Projector produces equity projections.
type Projector struct {
	logger    *zap.Logger
	generator *amortization.ScheduleGenerator
	opts      Options
}

// NewProjector creates a projector using opts for every projection.
func NewProjector(logger *zap.Logger, opts Options) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Projector{
		logger:    logger,
		generator: amortization.NewScheduleGenerator(logger),
		opts:      opts,
	}
}

// ExtraPayments returns every prepayment, with ExtraMonthlyPayment expressed
// as a recurring extra from the first payment.
func (o Options) ExtraPayments() []amortization.ExtraPayment {
	extras := slices.Clone(o.Extras)
	if o.ExtraMonthlyPayment > 0 {
		extras = append(extras, amortization.ExtraPayment{
			Name:       "Additional monthly payment",
			Amount:     o.ExtraMonthlyPayment,
			StartMonth: 1,
			Frequency:  constants.DefaultFrequency,
		})
	}
	return extras
}

// Project returns horizonMonths+1 snapshots (months 0 through horizonMonths).
// The sequence is lazy and can be ranged over any number of times with the
// same result. Past the loan term the balance stays at zero. Equity is never
// clamped and goes negative when the home is underwater.
func (p *Projector) Project(loan amortization.LoanTerms, homeValue0, annualAppreciationPercent float64, horizonMonths int) iter.Seq[Snapshot] {
	extras := p.opts.ExtraPayments()
	return func(yield func(Snapshot) bool) {
		if horizonMonths < 0 {
			return
		}

		snapshot := func(month int, balance float64) Snapshot {
			value := HomeValue(homeValue0, annualAppreciationPercent, month)
			return Snapshot{
				Month:                  month,
				HomeValue:              value,
				LoanBalance:            balance,
				Equity:                 value - balance,
				AppreciationSinceStart: value - homeValue0,
			}
		}

		next := 0
		for point := range p.generator.Points(loan, horizonMonths, extras...) {
			if !yield(snapshot(point.Month, point.Balance)) {
				return
			}
			next = point.Month + 1
		}
		for month := next; month <= horizonMonths; month++ {
			if !yield(snapshot(month, 0)) {
				return
			}
		}
	}
}

// Series collects Project into a slice.
func (p *Projector) Series(loan amortization.LoanTerms, homeValue0, annualAppreciationPercent float64, horizonMonths int) []Snapshot {
	return slices.Collect(p.Project(loan, homeValue0, annualAppreciationPercent, horizonMonths))
}

// Project is Projector.Project with no prepayments and no logging.
func Project(loan amortization.LoanTerms, homeValue0, annualAppreciationPercent float64, horizonMonths int) iter.Seq[Snapshot] {
	return NewProjector(nil, Options{}).Project(loan, homeValue0, annualAppreciationPercent, horizonMonths)
}

// Series is Projector.Series with no prepayments and no logging.
func Series(loan amortization.LoanTerms, homeValue0, annualAppreciationPercent float64, horizonMonths int) []Snapshot {
	return NewProjector(nil, Options{}).Series(loan, homeValue0, annualAppreciationPercent, horizonMonths)
}

// MonthReachingEquityPercent returns the first month where equity is at least
// percent of the home value.
func MonthReachingEquityPercent(snapshots iter.Seq[Snapshot], percent float64) (int, bool) {
	for snapshot := range snapshots {
		if snapshot.HomeValue <= 0 {
			continue
		}
		if mathutil.CalculatePercentage(snapshot.Equity, snapshot.HomeValue) >= percent {
			return snapshot.Month, true
		}
	}
	return 0, false
}
