package output

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/iwvelando/milcalc/internal/calculator"
	"github.com/iwvelando/milcalc/pkg/format"
)

// Dataset is one named numeric series.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// Chart is chart-ready data: one label per point and any number of series
// aligned with the labels.
type Chart struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// BuildChart returns the month-by-month line chart of a result: home value,
// loan balance, equity and cumulative interest. Values are rounded to cents.
func BuildChart(result calculator.Result) Chart {
	n := len(result.Equity)
	chart := Chart{Labels: make([]string, n)}

	homeValue := make([]float64, n)
	balance := make([]float64, n)
	equity := make([]float64, n)
	interest := make([]float64, n)

	cumulative := 0.0
	for month, snapshot := range result.Equity {
		chart.Labels[month] = labelFor(result, month)
		homeValue[month] = format.Cents(snapshot.HomeValue)
		balance[month] = format.Cents(snapshot.LoanBalance)
		equity[month] = format.Cents(snapshot.Equity)
		if month < len(result.Schedule) {
			cumulative += result.Schedule[month].Interest
		}
		interest[month] = format.Cents(cumulative)
	}

	chart.Datasets = []Dataset{
		{Label: "Home Value", Data: homeValue},
		{Label: "Loan Balance", Data: balance},
		{Label: "Equity", Data: equity},
		{Label: "Cumulative Interest", Data: interest},
	}
	return chart
}

// BuildCostChart returns the monthly cost breakdown as a single series for
// pie or doughnut charts. Principal and interest comes first, followed by
// the other costs in label order.
func BuildCostChart(result calculator.Result) Chart {
	b := result.Breakdown
	labels := make([]string, 0, len(b.CostsByLabel))
	for label := range b.CostsByLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	chart := Chart{Labels: append([]string{"Principal & Interest"}, labels...)}
	data := []float64{format.Cents(b.BasePayment)}
	for _, label := range labels {
		data = append(data, format.Cents(b.CostsByLabel[label]))
	}
	chart.Datasets = []Dataset{{Label: "Monthly Cost", Data: data}}
	return chart
}

// Report is the JSON document for one result.
type Report struct {
	calculator.Result
	Chart     Chart `json:"chart"`
	CostChart Chart `json:"costChart"`
}

// BuildReports pairs every result with its charts.
func BuildReports(results []calculator.Result) []Report {
	reports := make([]Report, 0, len(results))
	for _, result := range results {
		reports = append(reports, Report{
			Result:    result,
			Chart:     BuildChart(result),
			CostChart: BuildCostChart(result),
		})
	}
	return reports
}

// JSONFormat writes the results and their charts as indented JSON.
func JSONFormat(w io.Writer, results []calculator.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildReports(results))
}
