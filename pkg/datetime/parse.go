// Package datetime provides date and time utility functions.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/milcalc/pkg/constants"
)

const (
	// DateTimeLayout is the format expected in config files and is also the output
	// date format.
	DateTimeLayout = constants.DateTimeLayout
)

// OffsetDate returns the string-formatted date offset by the given number of
// months relative to the given date.
func OffsetDate(date, layout string, months int) (string, error) {
	t, err := time.Parse(layout, date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(layout), nil
}

// MonthsBetween returns the number of whole months from start to end. The
// result is negative when end precedes start.
func MonthsBetween(start, end string) (int, error) {
	startT, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return 0, err
	}
	endT, err := time.Parse(DateTimeLayout, end)
	if err != nil {
		return 0, err
	}
	return (endT.Year()-startT.Year())*constants.MonthsPerYear + int(endT.Month()-startT.Month()), nil
}

// MonthLabels produces count+1 labels starting at start, one per month. Index
// 0 is the start month itself. An empty start falls back to "M0".."Mn".
func MonthLabels(start string, count int) ([]string, error) {
	if count < 0 {
		return nil, nil
	}
	labels := make([]string, count+1)
	if start == "" {
		for i := range labels {
			labels[i] = fmt.Sprintf("M%d", i)
		}
		return labels, nil
	}

	startT, err := time.Parse(DateTimeLayout, start)
	if err != nil {
		return nil, err
	}
	for i := range labels {
		labels[i] = startT.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return labels, nil
}
