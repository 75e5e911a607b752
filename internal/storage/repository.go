package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"ore/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps the history as one row per recorded day and tracks
// which months still need to be rendered to the spreadsheet.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		path:    dbPath,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Location() string {
	return r.path
}

// Load reads every stored day. Rows that no longer decode are reported as a
// corrupt history rather than skipped.
func (r *SQLiteRepository) Load(ctx context.Context) (*core.History, error) {
	rows, err := r.queries.ListDayRecords(ctx)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: r.path, Err: fmt.Errorf("list day records: %w", err)}
	}
	h, err := historyFromRows(rows)
	if err != nil {
		return nil, &core.CorruptHistoryError{Source: r.path, Err: err}
	}
	slog.InfoContext(ctx, "History loaded from SQLite", "path", r.path, "months", h.Len(), "days", len(rows))
	return h, nil
}

// LoadMonth returns the view of a single month.
func (r *SQLiteRepository) LoadMonth(ctx context.Context, id core.MonthID) (core.MonthView, error) {
	rows, err := r.queries.ListDayRecordsByMonth(ctx, int64(id.Year), int64(id.Month))
	if err != nil {
		return core.MonthView{}, fmt.Errorf("list day records for %s: %w", id, err)
	}
	h, err := historyFromRows(rows)
	if err != nil {
		return core.MonthView{}, &core.CorruptHistoryError{Source: r.path, Err: err}
	}
	return h.MonthView(id), nil
}

// LoadMonthForSync reads a month and its sync version in one transaction.
// The version is passed back to MarkMonthSynced once the month is rendered.
func (r *SQLiteRepository) LoadMonthForSync(ctx context.Context, id core.MonthID) (core.MonthView, int64, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return core.MonthView{}, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	version, err := q.GetMonthSyncVersion(ctx, int64(id.Year), int64(id.Month))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return core.MonthView{}, 0, fmt.Errorf("get sync version for %s: %w", id, err)
	}
	rows, err := q.ListDayRecordsByMonth(ctx, int64(id.Year), int64(id.Month))
	if err != nil {
		return core.MonthView{}, 0, fmt.Errorf("list day records for %s: %w", id, err)
	}
	h, err := historyFromRows(rows)
	if err != nil {
		return core.MonthView{}, 0, &core.CorruptHistoryError{Source: r.path, Err: err}
	}
	return h.MonthView(id), version, nil
}

// Save replaces the stored history with h.
func (r *SQLiteRepository) Save(ctx context.Context, h *core.History) error {
	_, err := r.SaveChanged(ctx, h)
	return err
}

// SaveChanged replaces the stored history with h inside one transaction and
// returns the months whose content changed. Changed months are flagged as
// pending sync in the same transaction.
func (r *SQLiteRepository) SaveChanged(ctx context.Context, h *core.History) ([]core.MonthID, error) {
	changed, err := r.replace(ctx, h)
	if err != nil {
		return nil, &core.PersistenceError{Path: r.path, Err: err}
	}
	slog.InfoContext(ctx, "History saved to SQLite", "path", r.path, "changed_months", len(changed))
	return changed, nil
}

func (r *SQLiteRepository) replace(ctx context.Context, h *core.History) ([]core.MonthID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	q := r.queries.WithTx(tx)

	existing, err := q.ListDayRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list day records: %w", err)
	}
	stored := make(map[string]DayRecord, len(existing))
	for _, row := range existing {
		stored[row.Date] = row
	}

	touched := map[core.MonthID]bool{}
	for _, rec := range h.Records() {
		row := rowFromRecord(rec)
		if prev, ok := stored[row.Date]; ok {
			delete(stored, row.Date)
			if prev == row {
				continue
			}
		}
		if err := q.UpsertDayRecord(ctx, row); err != nil {
			return nil, fmt.Errorf("upsert %s: %w", row.Date, err)
		}
		touched[rec.Date.MonthID()] = true
	}
	for date, row := range stored {
		if err := q.DeleteDayRecord(ctx, date); err != nil {
			return nil, fmt.Errorf("delete %s: %w", date, err)
		}
		touched[core.MonthID{Year: int(row.Year), Month: int(row.Month)}] = true
	}

	changed := make([]core.MonthID, 0, len(touched))
	for id := range touched {
		changed = append(changed, id)
	}
	sort.Slice(changed, func(i, j int) bool { return changed[i].Before(changed[j]) })
	for _, id := range changed {
		if err := q.MarkMonthPending(ctx, int64(id.Year), int64(id.Month)); err != nil {
			return nil, fmt.Errorf("mark %s pending: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return changed, nil
}

// GetPendingSyncMonths returns months not yet rendered, oldest first.
func (r *SQLiteRepository) GetPendingSyncMonths(ctx context.Context, limit int) ([]core.MonthID, error) {
	keys, err := r.queries.GetPendingSyncMonths(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("get pending sync months: %w", err)
	}
	out := make([]core.MonthID, len(keys))
	for i, k := range keys {
		out[i] = core.MonthID{Year: int(k.Year), Month: int(k.Month)}
	}
	return out, nil
}

// MarkMonthSynced marks a month rendered from the snapshot taken at version.
// If the month was saved again since, it stays pending and ok is false.
func (r *SQLiteRepository) MarkMonthSynced(ctx context.Context, id core.MonthID, version int64) (ok bool, err error) {
	n, err := r.queries.MarkMonthSynced(ctx, int64(id.Year), int64(id.Month), version)
	if err != nil {
		return false, fmt.Errorf("mark month synced: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "Month changed during sync, left pending", "month", id.String(), "version", version)
		return false, nil
	}
	slog.InfoContext(ctx, "Month marked as synced", "month", id.String())
	return true, nil
}

// MarkMonthSyncError leaves a month queued for the next periodic pass.
func (r *SQLiteRepository) MarkMonthSyncError(ctx context.Context, id core.MonthID) error {
	if err := r.queries.MarkMonthSyncError(ctx, int64(id.Year), int64(id.Month)); err != nil {
		return fmt.Errorf("mark month sync error: %w", err)
	}
	slog.WarnContext(ctx, "Month marked with sync error", "month", id.String())
	return nil
}

// MonthSyncStatus returns "pending", "synced" or "error"; ok is false for a
// month that was never saved.
func (r *SQLiteRepository) MonthSyncStatus(ctx context.Context, id core.MonthID) (status string, ok bool, err error) {
	status, err = r.queries.GetMonthSyncStatus(ctx, int64(id.Year), int64(id.Month))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get month sync status: %w", err)
	}
	return status, true, nil
}

func rowFromRecord(rec core.DayRecord) DayRecord {
	return DayRecord{
		Date:            rec.Date.String(),
		Year:            int64(rec.Date.Year()),
		Month:           int64(rec.Date.Month()),
		WorkedMinutes:   int64(rec.Worked),
		OvertimeMinutes: int64(rec.Overtime),
		DayType:         string(rec.Type),
		Punches:         rec.PunchTokens(),
	}
}

func historyFromRows(rows []DayRecord) (*core.History, error) {
	h := core.NewHistory()
	for _, row := range rows {
		date, err := core.ParseDate(row.Date)
		if err != nil {
			return nil, fmt.Errorf("day %q: %w", row.Date, err)
		}
		punches, err := core.ParsePunches(row.Punches)
		if err != nil {
			return nil, fmt.Errorf("day %s punches: %w", row.Date, err)
		}
		rec := core.DayRecord{
			Date:     date,
			Punches:  punches,
			Worked:   core.Minutes(row.WorkedMinutes),
			Overtime: core.Minutes(row.OvertimeMinutes),
			Type:     date.Type(),
		}
		if err := h.Upsert(rec); err != nil {
			return nil, fmt.Errorf("day %s: %w", row.Date, err)
		}
	}
	return h, nil
}
