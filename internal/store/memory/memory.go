// Package memory provides an in-memory RunStore. It is the default backend
// when no PostgreSQL DSN is configured and backs the store tests.
package memory

import (
	"context"
	"sync"
	"time"

	"storage-arbitrage/internal/store"
)

// Store is an in-memory implementation of store.RunStore. Runs are kept in
// insertion order so listings are stable without relying on the clock.
type Store struct {
	mu    sync.RWMutex
	runs  map[string]*store.Run
	order []string // run ids, oldest first
}

// New creates an empty in-memory run store.
func New() *Store {
	return &Store{runs: make(map[string]*store.Run)}
}

var _ store.RunStore = (*Store)(nil)

// SaveRun stores a deep copy of run. A zero CreatedAt is stamped with the
// current time.
func (s *Store) SaveRun(_ context.Context, run *store.Run) error {
	if run == nil || run.ID == "" {
		return store.ErrInvalidRun
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[run.ID]; exists {
		return store.ErrDuplicateID
	}

	cp := cloneRun(run)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.runs[cp.ID] = cp
	s.order = append(s.order, cp.ID)
	return nil
}

// GetRun returns a copy of the stored run, or ErrNotFound.
func (s *Store) GetRun(_ context.Context, id string) (*store.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneRun(run), nil
}

// ListRuns returns run summaries newest first.
func (s *Store) ListRuns(_ context.Context, limit int) ([]store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.order)
	if limit > 0 && limit < n {
		n = limit
	}

	records := make([]store.RunRecord, 0, n)
	for i := len(s.order) - 1; i >= 0 && len(records) < n; i-- {
		records = append(records, s.runs[s.order[i]].RunRecord)
	}
	return records, nil
}

// DeleteRun removes a run, or returns ErrNotFound.
func (s *Store) DeleteRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.runs, id)
	for i, other := range s.order {
		if other == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func cloneRun(run *store.Run) *store.Run {
	cp := *run
	cp.Days = append([]store.DayRecord(nil), run.Days...)
	cp.Trades = append([]store.TradeRecord(nil), run.Trades...)
	if run.NPV != nil {
		npv := *run.NPV
		cp.NPV = &npv
	}
	return &cp
}
