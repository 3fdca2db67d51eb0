// Package calculator runs configured scenarios through the loan, equity and
// cost engines and gathers everything a calculator page displays.
package calculator

import (
	"fmt"

	"github.com/iwvelando/milcalc/internal/config"
	"github.com/iwvelando/milcalc/pkg/amortization"
	"github.com/iwvelando/milcalc/pkg/costs"
	"github.com/iwvelando/milcalc/pkg/datetime"
	"github.com/iwvelando/milcalc/pkg/equity"
	"github.com/iwvelando/milcalc/pkg/format"
	"github.com/iwvelando/milcalc/pkg/refdata"
	"go.uber.org/zap"
)

// Result holds all information related to one calculated scenario.
type Result struct {
	Name        string                       `json:"name"`
	Calculator  string                       `json:"calculator"`
	Loan        amortization.LoanTerms       `json:"loan"` // financed, including any funding fee
	DownPayment float64                      `json:"downPayment"`
	HomePrice   float64                      `json:"homePrice"`
	Breakdown   costs.Breakdown              `json:"breakdown"`
	Schedule    []amortization.SchedulePoint `json:"schedule"`
	Equity      []equity.Snapshot            `json:"equity"`
	Projection  costs.Projection             `json:"projection"`
	Savings     *amortization.Savings        `json:"savings,omitempty"`
	BAH         *BAHCoverage                 `json:"bah,omitempty"`
	RentVsBuy   *RentVsBuy                   `json:"rentVsBuy,omitempty"`
	Summary     Summary                      `json:"summary"`
	// Labels has one entry per equity snapshot, month 0 through the horizon.
	Labels []string            `json:"labels"`
	Notes  map[string][]string `json:"notes,omitempty"`
}

// Summary is the headline figures of a result.
type Summary struct {
	MonthlyPayment       float64 `json:"monthlyPayment"`
	MonthlyTotal         float64 `json:"monthlyTotal"`
	TotalInterest        float64 `json:"totalInterest"`
	PayoffMonth          int     `json:"payoffMonth"`
	PayoffDate           string  `json:"payoffDate,omitempty"` // set when the scenario has a start date
	PMICancellationMonth int     `json:"pmiCancellationMonth,omitempty"`
	HorizonMonths        int     `json:"horizonMonths"`
	HomeValueAtHorizon   float64 `json:"homeValueAtHorizon"`
	BalanceAtHorizon     float64 `json:"balanceAtHorizon"`
	EquityAtHorizon      float64 `json:"equityAtHorizon"`
	CostOverHorizon      float64 `json:"costOverHorizon"`
}

// GetResults calculates every active scenario.
func GetResults(logger *zap.Logger, conf config.Configuration, tables *refdata.Tables) ([]Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var results []Result
	for _, scenario := range conf.Scenarios {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping scenario %s because it is inactive", scenario.Name),
				zap.String("op", "calculator.GetResults"),
			)
			continue
		}
		result, err := Calculate(logger, scenario, tables)
		if err != nil {
			return results, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		results = append(results, result)
	}
	return results, nil
}

// Calculate sanitizes a copy of the scenario and runs it through the engines.
func Calculate(logger *zap.Logger, scenario config.Scenario, tables *refdata.Tables) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tables == nil {
		tables = refdata.Default()
	}

	scenario = scenario.Clone()
	scenario.Sanitize()
	if err := scenario.Validate(); err != nil {
		return Result{}, err
	}

	opts, err := scenario.CostOptions(tables)
	if err != nil {
		return Result{}, err
	}
	equityOpts, err := scenario.EquityOptions()
	if err != nil {
		return Result{}, err
	}
	labels, err := datetime.MonthLabels(scenario.StartDate, scenario.HorizonMonths)
	if err != nil {
		return Result{}, err
	}

	loan := scenario.LoanTerms(tables)
	financed := costs.FinancedLoan(loan, opts)
	recurring := scenario.MonthlyCosts(tables)
	extras := equityOpts.ExtraPayments()
	appreciation := scenario.AppreciationPercent(tables)

	generator := amortization.NewScheduleGenerator(logger)
	result := Result{
		Name:        scenario.Name,
		Calculator:  scenario.Calculator,
		Loan:        financed,
		DownPayment: scenario.DownPayment(),
		HomePrice:   scenario.HomePrice,
		Breakdown:   costs.MonthlyAllInCost(loan, recurring, opts),
		Schedule:    generator.Generate(financed, financed.TermMonths, extras...),
		Equity:      equity.NewProjector(logger, equityOpts).Series(financed, scenario.HomePrice, appreciation, scenario.HorizonMonths),
		Projection:  costs.Project(loan, recurring, opts, scenario.HorizonMonths),
		Labels:      labels,
		Notes:       make(map[string][]string),
	}

	logger.Debug("calculated scenario",
		zap.String("op", "calculator.Calculate"),
		zap.String("scenario", scenario.Name),
		zap.Float64("principal", financed.Principal),
		zap.Float64("monthlyTotal", result.Breakdown.Total),
	)

	if len(extras) > 0 {
		savings := generator.CompareExtraPayments(financed, extras...)
		result.Savings = &savings
	}
	if scenario.BAH > 0 {
		coverage := NewBAHCoverage(scenario.BAH, result.Breakdown.Total)
		result.BAH = &coverage
	}
	if scenario.MonthlyRent > 0 {
		comparison := CompareRentVsBuy(scenario.MonthlyRent, scenario.RentIncreasePercent,
			result.DownPayment, result.cashFlow(), result.Equity)
		result.RentVsBuy = &comparison
		if comparison.BreakevenMonth > 0 {
			result.note(comparison.BreakevenMonth, "Buying overtakes renting")
		}
	}

	if err := result.summarize(opts, scenario.StartDate); err != nil {
		return Result{}, err
	}
	return result, nil
}

func (r *Result) summarize(opts costs.Options, startDate string) error {
	horizon := len(r.Equity) - 1
	r.Summary = Summary{
		MonthlyPayment:  r.Breakdown.BasePayment,
		MonthlyTotal:    r.Breakdown.Total,
		TotalInterest:   amortization.TotalInterest(r.Schedule),
		HorizonMonths:   horizon,
		CostOverHorizon: r.Projection.Total,
	}
	if horizon >= 0 {
		last := r.Equity[horizon]
		r.Summary.HomeValueAtHorizon = last.HomeValue
		r.Summary.BalanceAtHorizon = last.LoanBalance
		r.Summary.EquityAtHorizon = last.Equity
	}

	if month, ok := amortization.PayoffMonth(r.Schedule); ok && month > 0 {
		r.Summary.PayoffMonth = month
		r.note(month, "Loan paid off")
		if startDate != "" {
			date, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, month)
			if err != nil {
				return err
			}
			r.Summary.PayoffDate = date
		}
	}
	if r.Breakdown.PMI > 0 {
		if month, ok := costs.PMICancellationMonth(r.Loan, r.HomePrice, opts.PMICutoff()); ok {
			r.Summary.PMICancellationMonth = month
			r.note(month, "PMI cancelled")
		}
	}
	for _, point := range r.Schedule {
		if point.Extra > 0 {
			r.note(point.Month, "Extra principal "+format.Currency(point.Extra))
		}
	}
	return nil
}

// cashFlow is the cash paid for ownership in months 1..horizon. It follows
// the actual schedule, so extra principal and early payoff are reflected.
func (r *Result) cashFlow() []float64 {
	flow := make([]float64, len(r.Projection.Monthly))
	for i, cost := range r.Projection.Monthly {
		month := i + 1
		if month <= r.Loan.TermMonths {
			cost -= r.Breakdown.BasePayment
		}
		if month < len(r.Schedule) {
			cost += r.Schedule[month].Interest + r.Schedule[month].Principal
		}
		flow[i] = cost
	}
	return flow
}

// note records a message against the label of month. Months past the
// horizon have no label and are dropped.
func (r *Result) note(month int, message string) {
	if month < 0 || month >= len(r.Labels) {
		return
	}
	label := r.Labels[month]
	r.Notes[label] = append(r.Notes[label], message)
}
