package memory

import (
	"context"
	"sync"

	"ore/internal/core"
	"ore/internal/sheets"
)

var (
	_ sheets.HistoryStore  = (*Store)(nil)
	_ sheets.MonthRenderer = (*Store)(nil)
	_ sheets.DataWriter    = (*Store)(nil)
)

// Store keeps the history in process memory. Saved values are deep copies, so
// later changes to the caller's history do not leak in.
type Store struct {
	mu      sync.Mutex
	history *core.History
	saves   int
	failErr error

	rendered map[core.MonthID]core.MonthView
	data     *core.History
}

func New() *Store {
	return &Store{}
}

// NewWith seeds the store with an existing history.
func NewWith(h *core.History) *Store {
	return &Store{history: h.Clone()}
}

// Load returns a copy of the stored history, or an empty one before the first save.
func (s *Store) Load(_ context.Context) (*core.History, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		return core.NewHistory(), nil
	}
	return s.history.Clone(), nil
}

// Save replaces the stored history.
func (s *Store) Save(_ context.Context, h *core.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return &core.PersistenceError{Path: s.Location(), Err: s.failErr}
	}
	s.history = h.Clone()
	s.saves++
	return nil
}

func (s *Store) Location() string {
	return "memory"
}

// Saves returns how many saves succeeded.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// FailSaves makes every following Save fail with err; nil restores normal saves.
func (s *Store) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// RenderMonth keeps the last view rendered for each month.
func (s *Store) RenderMonth(_ context.Context, v core.MonthView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return &core.PersistenceError{Path: s.Location(), Err: s.failErr}
	}
	if s.rendered == nil {
		s.rendered = map[core.MonthID]core.MonthView{}
	}
	s.rendered[v.Month] = v
	return nil
}

// Rendered returns the last view rendered for id.
func (s *Store) Rendered(id core.MonthID) (core.MonthView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.rendered[id]
	return v, ok
}

// WriteData keeps a copy of the last Data table source.
func (s *Store) WriteData(_ context.Context, h *core.History) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return &core.PersistenceError{Path: s.Location(), Err: s.failErr}
	}
	s.data = h.Clone()
	return nil
}

// Data returns the history last passed to WriteData, or nil.
func (s *Store) Data() *core.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	return s.data.Clone()
}
