package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ore/internal/core"
	"ore/internal/sheets"
)

// Aggregator owns the working history of a session. Days are calculated and
// upserted here; loading and saving go through the injected ports.
type Aggregator struct {
	calc    core.Calculator
	history *core.History
}

func NewAggregator(calc core.Calculator) *Aggregator {
	return &Aggregator{calc: calc, history: core.NewHistory()}
}

// Load replaces the working history with the persisted one. On error the
// working history is left as it was and the error is returned unchanged, so a
// *core.CorruptHistoryError reaches the caller.
func (a *Aggregator) Load(ctx context.Context, loader sheets.HistoryLoader) error {
	h, err := loader.Load(ctx)
	if err != nil {
		return err
	}
	a.history = h
	slog.InfoContext(ctx, "History loaded", "months", h.Len())
	return nil
}

// StartFresh discards the working history.
func (a *Aggregator) StartFresh() {
	a.history = core.NewHistory()
}

// Record calculates a day from its punches and upserts it. An ordering error
// leaves the history untouched.
func (a *Aggregator) Record(date core.Date, punches []core.Punch) (core.DayRecord, core.Warning, error) {
	rec, warn, err := a.calc.Calculate(date, punches)
	if err != nil {
		return core.DayRecord{}, "", err
	}
	if err := a.Upsert(rec); err != nil {
		return core.DayRecord{}, "", err
	}
	return rec, warn, nil
}

// Upsert replaces the record for its date.
func (a *Aggregator) Upsert(rec core.DayRecord) error {
	if err := a.history.Upsert(rec); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Date, err)
	}
	return nil
}

func (a *Aggregator) MonthView(id core.MonthID) core.MonthView {
	return a.history.MonthView(id)
}

func (a *Aggregator) Months() []core.MonthID {
	return a.history.Months()
}

func (a *Aggregator) Day(d core.Date) (core.DayRecord, bool) {
	return a.history.Day(d)
}

// History returns a copy of the working history.
func (a *Aggregator) History() *core.History {
	return a.history.Clone()
}

// Save persists the working history. Failures come back as
// *core.PersistenceError and the working history is kept for a retry.
func (a *Aggregator) Save(ctx context.Context, saver sheets.HistorySaver) error {
	err := saver.Save(ctx, a.history.Clone())
	if err == nil {
		slog.InfoContext(ctx, "History saved", "months", a.history.Len())
		return nil
	}
	var pe *core.PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &core.PersistenceError{Path: location(saver), Err: err}
}

func location(v any) string {
	if l, ok := v.(interface{ Location() string }); ok {
		return l.Location()
	}
	return "history store"
}
