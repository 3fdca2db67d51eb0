package calculator

import (
	"math"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/equity"
	"github.com/iwvelando/milcalc/pkg/mathutil"
	"github.com/iwvelando/milcalc/pkg/validation"
)

// BAHCoverage compares the housing allowance to the all-in monthly cost.
type BAHCoverage struct {
	MonthlyBAH      float64 `json:"monthlyBah"`
	MonthlyCost     float64 `json:"monthlyCost"`
	Surplus         float64 `json:"surplus"` // negative when BAH falls short
	CoveragePercent float64 `json:"coveragePercent"`
	Covered         bool    `json:"covered"`
}

// NewBAHCoverage compares bah to monthlyCost.
func NewBAHCoverage(bah, monthlyCost float64) BAHCoverage {
	return BAHCoverage{
		MonthlyBAH:      bah,
		MonthlyCost:     monthlyCost,
		Surplus:         bah - monthlyCost,
		CoveragePercent: mathutil.CalculatePercentage(bah, monthlyCost),
		Covered:         bah >= monthlyCost,
	}
}

// RentVsBuy compares renting to owning over the projection horizon. The net
// cost of owning is all cash paid (down payment plus monthly costs) less the
// equity held.
type RentVsBuy struct {
	Months          int     `json:"months"`
	TotalRent       float64 `json:"totalRent"`
	OwningCashOut   float64 `json:"owningCashOut"`
	EquityAtHorizon float64 `json:"equityAtHorizon"`
	OwningNetCost   float64 `json:"owningNetCost"`
	// Advantage is positive when buying is cheaper than renting.
	Advantage      float64 `json:"advantage"`
	BreakevenMonth int     `json:"breakevenMonth,omitempty"`
	// Cumulative series for months 0 through Months.
	CumulativeRent      []float64 `json:"cumulativeRent"`
	CumulativeOwningNet []float64 `json:"cumulativeOwningNet"`
}

// RentForMonth is the rent due in payment month (1-based). Rent steps up by
// increasePercent at the start of each lease year. Negative rent counts as
// none.
func RentForMonth(rent, increasePercent float64, month int) float64 {
	if month < 1 {
		return 0
	}
	years := (month - 1) / constants.MonthsPerYear
	return validation.NonNegative(rent) * math.Pow(1+increasePercent/constants.PercentageMultiplier, float64(years))
}

// CompareRentVsBuy walks both options month by month. monthlyOwning holds the
// all-in ownership cost for months 1..n and snapshots the equity for months
// 0..n.
func CompareRentVsBuy(rent, increasePercent, downPayment float64, monthlyOwning []float64, snapshots []equity.Snapshot) RentVsBuy {
	if len(snapshots) == 0 {
		return RentVsBuy{}
	}
	months := min(len(monthlyOwning), len(snapshots)-1)

	comparison := RentVsBuy{
		Months:              months,
		CumulativeRent:      make([]float64, months+1),
		CumulativeOwningNet: make([]float64, months+1),
	}

	totalRent := 0.0
	cashOut := downPayment
	comparison.CumulativeOwningNet[0] = cashOut - snapshots[0].Equity
	for month := 1; month <= months; month++ {
		totalRent += RentForMonth(rent, increasePercent, month)
		cashOut += monthlyOwning[month-1]
		comparison.CumulativeRent[month] = totalRent
		comparison.CumulativeOwningNet[month] = cashOut - snapshots[month].Equity
		if comparison.BreakevenMonth == 0 && comparison.CumulativeOwningNet[month] <= totalRent {
			comparison.BreakevenMonth = month
		}
	}

	comparison.TotalRent = totalRent
	comparison.OwningCashOut = cashOut
	comparison.EquityAtHorizon = snapshots[months].Equity
	comparison.OwningNetCost = comparison.CumulativeOwningNet[months]
	comparison.Advantage = totalRent - comparison.OwningNetCost
	return comparison
}
