// Package output provides utilities for formatting and displaying calculator
// results.
package output

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iwvelando/milcalc/internal/calculator"
	"github.com/iwvelando/milcalc/pkg/format"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results []calculator.Result) {
	for i, result := range results {
		fmt.Fprintf(w, "--- Results for scenario %s ---\n", result.Name)
		writeBreakdown(w, result)
		writeSummary(w, result)

		fmt.Fprintf(w, "Date    | Home Value | Loan Balance | Equity | Notes\n")
		fmt.Fprintf(w, "____    | __________ | ____________ | ______ | _____\n")
		for month, snapshot := range result.Equity {
			label := labelFor(result, month)
			fmt.Fprintf(w, "%s | %s | %s | %s | %s\n", label,
				format.Currency(snapshot.HomeValue),
				format.Currency(snapshot.LoanBalance),
				format.Currency(snapshot.Equity),
				strings.Join(result.Notes[label], ","))
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func writeBreakdown(w io.Writer, result calculator.Result) {
	b := result.Breakdown
	fmt.Fprintf(w, "Loan: %s at %s for %d months\n",
		format.Currency(result.Loan.Principal), format.Percent(result.Loan.AnnualRatePercent), result.Loan.TermMonths)
	if b.FundingFee > 0 {
		fmt.Fprintf(w, "Financed funding fee: %s\n", format.Currency(b.FundingFee))
	}
	fmt.Fprintf(w, "Principal & interest: %s\n", format.Currency(b.BasePayment))

	labels := make([]string, 0, len(b.CostsByLabel))
	for label := range b.CostsByLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		fmt.Fprintf(w, "%s: %s\n", label, format.Currency(b.CostsByLabel[label]))
	}
	fmt.Fprintf(w, "Total monthly cost: %s\n", format.Currency(b.Total))
}

func writeSummary(w io.Writer, result calculator.Result) {
	s := result.Summary
	fmt.Fprintf(w, "Total interest over the loan: %s\n", format.Currency(s.TotalInterest))
	if s.PayoffDate != "" {
		fmt.Fprintf(w, "Loan paid off in %s\n", s.PayoffDate)
	}
	fmt.Fprintf(w, "Cost over %d months: %s\n", s.HorizonMonths, format.Currency(s.CostOverHorizon))
	if s.PMICancellationMonth > 0 {
		fmt.Fprintf(w, "PMI cancels after payment %d\n", s.PMICancellationMonth)
	}
	if savings := result.Savings; savings != nil {
		fmt.Fprintf(w, "Extra principal saves %s in interest and %d months\n",
			format.Currency(savings.InterestSaved), savings.MonthsSaved)
	}
	if bah := result.BAH; bah != nil {
		status := "Surplus"
		if !bah.Covered {
			status = "Shortfall"
		}
		fmt.Fprintf(w, "BAH %s covers %s of the monthly cost. %s: %s\n",
			format.Currency(bah.MonthlyBAH), format.Percent(bah.CoveragePercent), status, format.Currency(bah.Surplus))
	}
	if rent := result.RentVsBuy; rent != nil {
		fmt.Fprintf(w, "Rent over %d months: %s. Net cost of owning: %s\n",
			rent.Months, format.Currency(rent.TotalRent), format.Currency(rent.OwningNetCost))
		if rent.BreakevenMonth > 0 {
			fmt.Fprintf(w, "Buying overtakes renting after %d months\n", rent.BreakevenMonth)
		}
	}
}

func labelFor(result calculator.Result, month int) string {
	if month < len(result.Labels) {
		return result.Labels[month]
	}
	return fmt.Sprintf("M%d", month)
}

// CsvFormat outputs the equity series in comma-separated value format, one
// group of columns per scenario.
func CsvFormat(w io.Writer, results []calculator.Result) {
	rows := 0
	for _, result := range results {
		rows = max(rows, len(result.Equity))
	}

	fmt.Fprintf(w, `"month"`)
	for _, result := range results {
		name := csvEscape(result.Name)
		fmt.Fprintf(w, `,"date (%s)","home value (%s)","loan balance (%s)","equity (%s)","notes (%s)"`,
			name, name, name, name, name)
	}
	fmt.Fprintf(w, "\n")

	for month := 0; month < rows; month++ {
		fmt.Fprintf(w, `"%d"`, month)
		for _, result := range results {
			if month >= len(result.Equity) {
				fmt.Fprintf(w, `,"","","","",""`)
				continue
			}
			snapshot := result.Equity[month]
			label := labelFor(result, month)
			fmt.Fprintf(w, `,"%s"`, label)
			fmt.Fprintf(w, `,"%.2f","%.2f","%.2f"`,
				format.Cents(snapshot.HomeValue), format.Cents(snapshot.LoanBalance), format.Cents(snapshot.Equity))
			fmt.Fprintf(w, `,"%s"`, csvEscape(strings.Join(result.Notes[label], ",")))
		}
		fmt.Fprintf(w, "\n")
	}
}

// CsvString returns the CsvFormat output as a string.
func CsvString(results []calculator.Result) string {
	var buf bytes.Buffer
	CsvFormat(&buf, results)
	return buf.String()
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}
