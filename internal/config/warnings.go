package config

import (
	"fmt"

	"github.com/iwvelando/milcalc/pkg/constants"
	"github.com/iwvelando/milcalc/pkg/refdata"
)

// ValidateConfiguration performs general validation of the configuration and
// returns warnings. Warnings never stop a calculation.
func (conf *Configuration) ValidateConfiguration(tables *refdata.Tables) []string {
	var warnings []string

	if len(conf.ActiveScenarios()) == 0 {
		warnings = append(warnings, "No active scenarios; nothing will be calculated")
	}
	for i := range conf.Scenarios {
		scenario := &conf.Scenarios[i]
		if !scenario.Active {
			continue
		}
		for _, warning := range scenario.warnings(tables) {
			warnings = append(warnings, fmt.Sprintf("Scenario '%s': %s", scenario.Name, warning))
		}
	}
	return warnings
}

func (s *Scenario) warnings(tables *refdata.Tables) []string {
	var warnings []string

	if s.State != "" {
		if _, ok := tables.State(s.State); !ok {
			warnings = append(warnings, fmt.Sprintf("state %s not found in reference data, using national averages", s.State))
		}
	}
	if s.HomePrice == 0 {
		warnings = append(warnings, "home price is zero")
	}
	if s.DownPaymentPercent >= constants.PercentageMultiplier {
		warnings = append(warnings, "down payment covers the full price, there is no loan")
	}
	if s.LoanType == constants.LoanTypeVA && s.PMIRate != nil && *s.PMIRate > 0 {
		warnings = append(warnings, "PMI rate is ignored for VA loans")
	}
	if s.LoanType != constants.LoanTypeVA && (s.VASubsequentUse || s.DisabledVeteran) {
		warnings = append(warnings, "VA funding fee settings are ignored for conventional loans")
	}
	if s.Calculator == constants.CalculatorRentVsBuy && s.MonthlyRent == 0 {
		warnings = append(warnings, "rent vs buy comparison needs a monthly rent")
	}
	if s.Calculator == constants.CalculatorBAH && s.BAH == 0 {
		warnings = append(warnings, "BAH coverage needs a BAH amount")
	}
	if s.HorizonMonths > s.TermMonths {
		warnings = append(warnings, fmt.Sprintf("horizon of %d months runs past the %d month term", s.HorizonMonths, s.TermMonths))
	}

	for _, extra := range s.ExtraPrincipalPayments {
		if extra.StartDate != "" && s.StartDate != "" {
			if month, err := s.monthIndex(extra.StartDate); err == nil && month < 1 {
				warnings = append(warnings, fmt.Sprintf("extra principal payment '%s' starts before the first payment (%s <= %s)",
					extra.Name, extra.StartDate, s.StartDate))
			}
		}
		if extra.EndDate != "" && s.StartDate != "" {
			if month, err := s.monthIndex(extra.EndDate); err == nil {
				if month < 1 {
					warnings = append(warnings, fmt.Sprintf("extra principal payment '%s' ends before the first payment and is ignored", extra.Name))
				} else if month > s.TermMonths {
					warnings = append(warnings, fmt.Sprintf("extra principal payment '%s' ends after the loan matures", extra.Name))
				}
			}
		}
	}
	return warnings
}
