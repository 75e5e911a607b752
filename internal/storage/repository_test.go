package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ore/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "db", "ore.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func record(t *testing.T, date core.Date, tokens string) core.DayRecord {
	t.Helper()
	p, err := core.ParsePunches(tokens)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	rec, _, err := core.NewCalculator(core.DefaultStandardDay).Calculate(date, p)
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return rec
}

func historyOf(t *testing.T, recs ...core.DayRecord) *core.History {
	t.Helper()
	h := core.NewHistory()
	for _, r := range recs {
		if err := h.Upsert(r); err != nil {
			t.Fatalf("fixture: %v", err)
		}
	}
	return h
}

func TestLoadEmptyDatabase(t *testing.T) {
	repo := newTestRepo(t)
	h, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h.Len() != 0 {
		t.Fatalf("expected no months, got %d", h.Len())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	h := historyOf(t,
		record(t, core.NewDate(2025, 3, 10), "08.00 12.00 13.00 17.30"),
		record(t, core.NewDate(2025, 3, 15), "10.00 12.00 13.00"),
		record(t, core.NewDate(2025, 4, 1), "09.00 17.00"),
	)

	changed, err := repo.SaveChanged(ctx, h)
	if err != nil {
		t.Fatalf("SaveChanged: %v", err)
	}
	want := []core.MonthID{{Year: 2025, Month: 3}, {Year: 2025, Month: 4}}
	if len(changed) != len(want) || changed[0] != want[0] || changed[1] != want[1] {
		t.Fatalf("changed months: expected %v, got %v", want, changed)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, w := range h.Records() {
		r, ok := got.Day(w.Date)
		if !ok {
			t.Fatalf("missing %s", w.Date)
		}
		if r.Worked != w.Worked || r.Overtime != w.Overtime || r.Type != w.Type || r.PunchTokens() != w.PunchTokens() {
			t.Fatalf("%s: expected %+v, got %+v", w.Date, w, r)
		}
	}
	march, _ := got.Month(core.MonthID{Year: 2025, Month: 3})
	if march.TotalWorked != 510+120 || march.TotalOvertime != 30 {
		t.Fatalf("unexpected march totals %+v", march)
	}
}

func TestSaveChangedReportsOnlyTouchedMonths(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	march := record(t, core.NewDate(2025, 3, 10), "08.00 16.00")
	april := record(t, core.NewDate(2025, 4, 1), "09.00 17.00")

	if _, err := repo.SaveChanged(ctx, historyOf(t, march, april)); err != nil {
		t.Fatalf("SaveChanged: %v", err)
	}

	// Unchanged save.
	changed, err := repo.SaveChanged(ctx, historyOf(t, march, april))
	if err != nil {
		t.Fatalf("SaveChanged: %v", err)
	}
	if len(changed) != 0 {
		t.Fatalf("expected no changes, got %v", changed)
	}

	// Replace one April day, drop the March one.
	april2 := record(t, core.NewDate(2025, 4, 1), "09.00 18.00")
	changed, err = repo.SaveChanged(ctx, historyOf(t, april2))
	if err != nil {
		t.Fatalf("SaveChanged: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("expected March and April, got %v", changed)
	}
	got, _ := repo.Load(ctx)
	if _, ok := got.Day(march.Date); ok {
		t.Fatal("March record should have been deleted")
	}
	if r, _ := got.Day(april2.Date); r.Worked != 540 {
		t.Fatalf("April record not replaced: %+v", r)
	}
}

func TestPendingSyncMonths(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	h := historyOf(t,
		record(t, core.NewDate(2025, 4, 1), "09.00 17.00"),
		record(t, core.NewDate(2025, 3, 10), "08.00 16.00"),
	)
	if err := repo.Save(ctx, h); err != nil {
		t.Fatalf("Save: %v", err)
	}

	pending, err := repo.GetPendingSyncMonths(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSyncMonths: %v", err)
	}
	if len(pending) != 2 || pending[0] != (core.MonthID{Year: 2025, Month: 3}) {
		t.Fatalf("unexpected pending months %v", pending)
	}

	march := core.MonthID{Year: 2025, Month: 3}
	april := core.MonthID{Year: 2025, Month: 4}
	_, version, err := repo.LoadMonthForSync(ctx, march)
	if err != nil {
		t.Fatalf("LoadMonthForSync: %v", err)
	}
	if ok, err := repo.MarkMonthSynced(ctx, march, version); err != nil || !ok {
		t.Fatalf("MarkMonthSynced: ok=%v err=%v", ok, err)
	}
	if err := repo.MarkMonthSyncError(ctx, april); err != nil {
		t.Fatalf("MarkMonthSyncError: %v", err)
	}

	pending, _ = repo.GetPendingSyncMonths(ctx, 10)
	if len(pending) != 1 || pending[0] != april {
		t.Fatalf("expected only April (error) to remain, got %v", pending)
	}
	if status, ok, _ := repo.MonthSyncStatus(ctx, march); !ok || status != "synced" {
		t.Fatalf("unexpected March status %q %v", status, ok)
	}
	if _, ok, err := repo.MonthSyncStatus(ctx, core.MonthID{Year: 2020, Month: 1}); ok || err != nil {
		t.Fatalf("unknown month: ok=%v err=%v", ok, err)
	}

	if pending, _ := repo.GetPendingSyncMonths(ctx, 0); len(pending) != 0 {
		t.Fatalf("limit 0 should return nothing, got %v", pending)
	}
}

func TestMarkMonthSyncedStaleVersion(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	march := core.MonthID{Year: 2025, Month: 3}
	if err := repo.Save(ctx, historyOf(t, record(t, core.NewDate(2025, 3, 10), "08.00 16.00"))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_, stale, err := repo.LoadMonthForSync(ctx, march)
	if err != nil {
		t.Fatalf("LoadMonthForSync: %v", err)
	}

	// Saved again while the first snapshot is being rendered.
	if err := repo.Save(ctx, historyOf(t, record(t, core.NewDate(2025, 3, 10), "08.00 17.00"))); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ok, err := repo.MarkMonthSynced(ctx, march, stale)
	if err != nil || ok {
		t.Fatalf("stale version should not mark synced: ok=%v err=%v", ok, err)
	}
	if status, _, _ := repo.MonthSyncStatus(ctx, march); status != "pending" {
		t.Fatalf("March should stay pending, got %q", status)
	}

	v, current, err := repo.LoadMonthForSync(ctx, march)
	if err != nil {
		t.Fatalf("LoadMonthForSync: %v", err)
	}
	if current == stale || v.TotalWorked != 540 {
		t.Fatalf("expected a newer snapshot: version=%d worked=%s", current, v.TotalWorked)
	}
	if ok, err := repo.MarkMonthSynced(ctx, march, current); err != nil || !ok {
		t.Fatalf("current version should mark synced: ok=%v err=%v", ok, err)
	}

	if _, version, err := repo.LoadMonthForSync(ctx, core.MonthID{Year: 2020, Month: 1}); err != nil || version != 0 {
		t.Fatalf("unknown month: version=%d err=%v", version, err)
	}
}

func TestLoadMonth(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	h := historyOf(t,
		record(t, core.NewDate(2025, 3, 10), "08.00 12.00 13.00 17.30"),
		record(t, core.NewDate(2025, 4, 1), "09.00 17.00"),
	)
	if err := repo.Save(ctx, h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	v, err := repo.LoadMonth(ctx, core.MonthID{Year: 2025, Month: 3})
	if err != nil {
		t.Fatalf("LoadMonth: %v", err)
	}
	if len(v.Days) != 31 || v.TotalWorked != 510 || v.TotalOvertime != 30 {
		t.Fatalf("unexpected view: days=%d worked=%s overtime=%s", len(v.Days), v.TotalWorked, v.TotalOvertime)
	}
	if !v.Days[9].Recorded || v.Days[10].Recorded {
		t.Fatal("only March 10 should be recorded")
	}
}

func TestCorruptRowIsReported(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO day_records (date, year, month, worked_minutes, overtime_minutes, day_type, punches)
		 VALUES ('2025-03-10', 2025, 3, 60, 0, 'weekday', '8h')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_, err := repo.Load(ctx)
	var ce *core.CorruptHistoryError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CorruptHistoryError, got %v", err)
	}
	var pe *core.ParseError
	if !errors.As(err, &pe) || pe.Token != "8h" {
		t.Fatalf("expected wrapped *ParseError for the bad punch, got %v", err)
	}
}

func TestSaveAfterCloseIsPersistenceError(t *testing.T) {
	repo := newTestRepo(t)
	repo.Close()
	err := repo.Save(context.Background(), core.NewHistory())
	var pe *core.PersistenceError
	if !errors.As(err, &pe) || pe.Path != repo.Location() {
		t.Fatalf("expected *PersistenceError with path, got %v", err)
	}
}
