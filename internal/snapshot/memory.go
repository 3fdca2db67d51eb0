package snapshot

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps snapshots in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Snapshot
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]map[string]Snapshot),
		now:  time.Now,
	}
}

// Save stores the snapshot in memory.
func (m *MemoryStore) Save(_ context.Context, snapshot Snapshot) (Snapshot, error) {
	snapshot, err := prepare(snapshot, m.now())
	if err != nil {
		return Snapshot{}, err
	}
	snapshot = snapshot.detached()

	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.data[snapshot.Calculator]
	if !ok {
		byID = make(map[string]Snapshot)
		m.data[snapshot.Calculator] = byID
	}
	byID[snapshot.ID] = snapshot
	return snapshot.detached(), nil
}

// Get returns one snapshot.
func (m *MemoryStore) Get(_ context.Context, calculatorKey, id string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.data[calculatorKey][id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return snapshot.detached(), nil
}

// List returns the calculator's snapshots, newest first.
func (m *MemoryStore) List(_ context.Context, calculatorKey string) ([]Snapshot, error) {
	m.mu.RLock()
	snapshots := make([]Snapshot, 0, len(m.data[calculatorKey]))
	for _, snapshot := range m.data[calculatorKey] {
		snapshots = append(snapshots, snapshot.detached())
	}
	m.mu.RUnlock()

	sortNewestFirst(snapshots)
	return snapshots, nil
}

// Delete removes one snapshot.
func (m *MemoryStore) Delete(_ context.Context, calculatorKey, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[calculatorKey][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[calculatorKey], id)
	return nil
}

// detached copies the snapshot so callers never share pointers with the store.
func (s Snapshot) detached() Snapshot {
	s.Inputs = s.Inputs.Clone()
	return s
}
