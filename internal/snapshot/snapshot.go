// Package snapshot saves calculator inputs together with their headline
// results so a user can come back to a scenario later.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/milcalc/internal/calculator"
	"github.com/iwvelando/milcalc/internal/config"
)

// ErrNotFound is returned when no snapshot matches the calculator and id.
var ErrNotFound = errors.New("snapshot not found")

// Snapshot is one saved scenario.
type Snapshot struct {
	ID           string             `json:"id"`
	Calculator   string             `json:"calculator"`
	Inputs       config.Scenario    `json:"inputs"`
	Calculations calculator.Summary `json:"calculations"`
	Timestamp    time.Time          `json:"timestamp"`
}

// Store persists snapshots per calculator.
type Store interface {
	// Save assigns an ID and timestamp when missing and stores the snapshot.
	Save(ctx context.Context, snapshot Snapshot) (Snapshot, error)
	Get(ctx context.Context, calculatorKey, id string) (Snapshot, error)
	// List returns the calculator's snapshots, newest first.
	List(ctx context.Context, calculatorKey string) ([]Snapshot, error)
	Delete(ctx context.Context, calculatorKey, id string) error
}

// FromResult builds an unsaved snapshot of a calculated scenario.
func FromResult(scenario config.Scenario, result calculator.Result) Snapshot {
	return Snapshot{
		Calculator:   result.Calculator,
		Inputs:       scenario,
		Calculations: result.Summary,
	}
}

func prepare(snapshot Snapshot, now time.Time) (Snapshot, error) {
	if !config.ValidCalculator(snapshot.Calculator) {
		return Snapshot{}, fmt.Errorf("unknown calculator %q", snapshot.Calculator)
	}
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	} else if _, err := uuid.Parse(snapshot.ID); err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot id %q: %w", snapshot.ID, err)
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = now.UTC()
	}
	return snapshot, nil
}

func sortNewestFirst(snapshots []Snapshot) {
	sort.SliceStable(snapshots, func(i, j int) bool {
		if snapshots[i].Timestamp.Equal(snapshots[j].Timestamp) {
			return snapshots[i].ID < snapshots[j].ID
		}
		return snapshots[i].Timestamp.After(snapshots[j].Timestamp)
	})
}
