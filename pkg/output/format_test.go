package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/milcalc/internal/calculator"
	"github.com/iwvelando/milcalc/internal/config"
	"github.com/iwvelando/milcalc/pkg/refdata"
	"github.com/iwvelando/milcalc/pkg/testutil"
)

func testResult(t *testing.T, name string, horizon int) calculator.Result {
	t.Helper()
	result, err := calculator.Calculate(nil, config.Scenario{
		Name:               name,
		StartDate:          "2025-01",
		HomePrice:          400000,
		DownPaymentPercent: 5,
		InterestRate:       testutil.FloatPtr(6.5),
		PMIRate:            testutil.FloatPtr(0.5),
		HOA:                50,
		BAH:                3000,
		MonthlyRent:        2800,
		HorizonMonths:      horizon,
	}, refdata.Default())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}
	return result
}

func TestPrettyFormat(t *testing.T) {
	results := []calculator.Result{testResult(t, "Test Scenario", 12)}

	var buf bytes.Buffer
	PrettyFormat(&buf, results)
	output := buf.String()

	expected := []string{
		"--- Results for scenario Test Scenario ---",
		"Loan: $380,000.00 at 6.50% for 360 months",
		"PMI: $158.33",
		"HOA: $50.00",
		"Total monthly cost:",
		"Loan paid off in 2055-01",
		"BAH $3,000.00 covers",
		"Rent over 12 months:",
		"Date    | Home Value | Loan Balance | Equity | Notes",
		"____    | __________ | ____________ | ______ | _____",
		"2025-01 | $400,000.00 | $380,000.00 | $20,000.00 |",
		"2026-01 |",
	}
	for _, fragment := range expected {
		if !strings.Contains(output, fragment) {
			t.Errorf("PrettyFormat missing %q in:\n%s", fragment, output)
		}
	}
}

func TestPrettyFormatEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestCsvFormat(t *testing.T) {
	results := []calculator.Result{
		testResult(t, "Short", 12),
		testResult(t, `Say "hi"`, 24),
	}

	output := CsvString(results)
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	if len(lines) != 26 {
		t.Fatalf("expected header plus 25 rows, got %d lines", len(lines))
	}
	header := lines[0]
	for _, element := range []string{`"month"`, `"date (Short)"`, `"equity (Short)"`, `"notes (Say ""hi"")"`} {
		if !strings.Contains(header, element) {
			t.Errorf("header missing %s: %s", element, header)
		}
	}
	if !strings.HasPrefix(lines[1], `"0","2025-01","400000.00","380000.00","20000.00"`) {
		t.Errorf("unexpected first row: %s", lines[1])
	}
	if !strings.Contains(lines[20], `"19",""`) {
		t.Errorf("expected empty cells once the short scenario ends: %s", lines[20])
	}
}

func TestCsvStringMatchesCsvFormat(t *testing.T) {
	results := []calculator.Result{testResult(t, "Match", 6)}

	var buf bytes.Buffer
	CsvFormat(&buf, results)
	if buf.String() != CsvString(results) {
		t.Fatalf("CsvString and CsvFormat output mismatch\nCsvString:\n%s\nCsvFormat:\n%s", CsvString(results), buf.String())
	}
}
