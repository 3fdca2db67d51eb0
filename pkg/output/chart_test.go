package output

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/iwvelando/milcalc/internal/calculator"
)

func TestBuildChart(t *testing.T) {
	result := testResult(t, "Chart", 36)
	chart := BuildChart(result)

	if len(chart.Labels) != 37 {
		t.Fatalf("expected 37 labels, got %d", len(chart.Labels))
	}
	if chart.Labels[0] != "2025-01" || chart.Labels[36] != "2028-01" {
		t.Errorf("unexpected labels %s..%s", chart.Labels[0], chart.Labels[36])
	}

	expected := []string{"Home Value", "Loan Balance", "Equity", "Cumulative Interest"}
	if len(chart.Datasets) != len(expected) {
		t.Fatalf("expected %d datasets, got %d", len(expected), len(chart.Datasets))
	}
	for i, dataset := range chart.Datasets {
		if dataset.Label != expected[i] {
			t.Errorf("dataset %d = %s, expected %s", i, dataset.Label, expected[i])
		}
		if len(dataset.Data) != len(chart.Labels) {
			t.Errorf("dataset %s has %d points for %d labels", dataset.Label, len(dataset.Data), len(chart.Labels))
		}
	}

	interest := chart.Datasets[3].Data
	if interest[0] != 0 {
		t.Errorf("cumulative interest at month 0 = %v, expected 0", interest[0])
	}
	for i := 1; i < len(interest); i++ {
		if interest[i] < interest[i-1] {
			t.Fatalf("cumulative interest decreased at month %d", i)
		}
	}
	if chart.Datasets[2].Data[0] != 20000 {
		t.Errorf("equity[0] = %v, expected 20000", chart.Datasets[2].Data[0])
	}
}

func TestBuildCostChart(t *testing.T) {
	result := testResult(t, "Costs", 12)
	chart := BuildCostChart(result)

	if chart.Labels[0] != "Principal & Interest" {
		t.Errorf("first label = %q", chart.Labels[0])
	}
	if len(chart.Labels) != len(result.Breakdown.CostsByLabel)+1 {
		t.Errorf("expected one label per cost plus principal and interest, got %d", len(chart.Labels))
	}
	sum := 0.0
	for _, value := range chart.Datasets[0].Data {
		sum += value
	}
	if math.Abs(sum-result.Breakdown.Total) > 0.01*float64(len(chart.Labels)) {
		t.Errorf("slices sum to %.2f, expected about %.2f", sum, result.Breakdown.Total)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := JSONFormat(&buf, []calculator.Result{testResult(t, "Json", 12)}); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected one report, got %d", len(decoded))
	}
	for _, key := range []string{"name", "breakdown", "equity", "summary", "chart", "costChart", "bah", "rentVsBuy"} {
		if _, ok := decoded[0][key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
	if decoded[0]["name"] != "Json" {
		t.Errorf("name = %v", decoded[0]["name"])
	}
}
