package storage

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// DayRecord is a row of day_records.
type DayRecord struct {
	Date            string
	Year            int64
	Month           int64
	WorkedMinutes   int64
	OvertimeMinutes int64
	DayType         string
	Punches         string
}

const listDayRecords = `-- name: ListDayRecords :many
SELECT date, year, month, worked_minutes, overtime_minutes, day_type, punches
FROM day_records
ORDER BY date
`

func (q *Queries) ListDayRecords(ctx context.Context) ([]DayRecord, error) {
	rows, err := q.db.QueryContext(ctx, listDayRecords)
	if err != nil {
		return nil, err
	}
	return scanDayRecords(rows)
}

const listDayRecordsByMonth = `-- name: ListDayRecordsByMonth :many
SELECT date, year, month, worked_minutes, overtime_minutes, day_type, punches
FROM day_records
WHERE year = ? AND month = ?
ORDER BY date
`

func (q *Queries) ListDayRecordsByMonth(ctx context.Context, year, month int64) ([]DayRecord, error) {
	rows, err := q.db.QueryContext(ctx, listDayRecordsByMonth, year, month)
	if err != nil {
		return nil, err
	}
	return scanDayRecords(rows)
}

func scanDayRecords(rows *sql.Rows) ([]DayRecord, error) {
	defer rows.Close()
	var items []DayRecord
	for rows.Next() {
		var i DayRecord
		if err := rows.Scan(
			&i.Date,
			&i.Year,
			&i.Month,
			&i.WorkedMinutes,
			&i.OvertimeMinutes,
			&i.DayType,
			&i.Punches,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertDayRecord = `-- name: UpsertDayRecord :exec
INSERT INTO day_records (date, year, month, worked_minutes, overtime_minutes, day_type, punches, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (date) DO UPDATE SET
    worked_minutes = excluded.worked_minutes,
    overtime_minutes = excluded.overtime_minutes,
    day_type = excluded.day_type,
    punches = excluded.punches,
    updated_at = CURRENT_TIMESTAMP
`

func (q *Queries) UpsertDayRecord(ctx context.Context, arg DayRecord) error {
	_, err := q.db.ExecContext(ctx, upsertDayRecord,
		arg.Date,
		arg.Year,
		arg.Month,
		arg.WorkedMinutes,
		arg.OvertimeMinutes,
		arg.DayType,
		arg.Punches,
	)
	return err
}

const deleteDayRecord = `-- name: DeleteDayRecord :exec
DELETE FROM day_records WHERE date = ?
`

func (q *Queries) DeleteDayRecord(ctx context.Context, date string) error {
	_, err := q.db.ExecContext(ctx, deleteDayRecord, date)
	return err
}

const markMonthPending = `-- name: MarkMonthPending :exec
INSERT INTO month_sync (year, month, sync_status, updated_at)
VALUES (?, ?, 'pending', CURRENT_TIMESTAMP)
ON CONFLICT (year, month) DO UPDATE SET
    sync_status = 'pending',
    updated_at = CURRENT_TIMESTAMP,
    version = month_sync.version + 1
`

func (q *Queries) MarkMonthPending(ctx context.Context, year, month int64) error {
	_, err := q.db.ExecContext(ctx, markMonthPending, year, month)
	return err
}

const markMonthSynced = `-- name: MarkMonthSynced :execrows
UPDATE month_sync
SET sync_status = 'synced', synced_at = CURRENT_TIMESTAMP
WHERE year = ? AND month = ? AND version = ?
`

// MarkMonthSynced only applies while the month is still at version; it
// returns the number of rows updated.
func (q *Queries) MarkMonthSynced(ctx context.Context, year, month, version int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, markMonthSynced, year, month, version)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getMonthSyncVersion = `-- name: GetMonthSyncVersion :one
SELECT version FROM month_sync WHERE year = ? AND month = ?
`

func (q *Queries) GetMonthSyncVersion(ctx context.Context, year, month int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, getMonthSyncVersion, year, month)
	var version int64
	err := row.Scan(&version)
	return version, err
}

const markMonthSyncError = `-- name: MarkMonthSyncError :exec
UPDATE month_sync
SET sync_status = 'error', updated_at = CURRENT_TIMESTAMP
WHERE year = ? AND month = ?
`

func (q *Queries) MarkMonthSyncError(ctx context.Context, year, month int64) error {
	_, err := q.db.ExecContext(ctx, markMonthSyncError, year, month)
	return err
}

type MonthKey struct {
	Year  int64
	Month int64
}

const getPendingSyncMonths = `-- name: GetPendingSyncMonths :many
SELECT year, month
FROM month_sync
WHERE sync_status IN ('pending', 'error')
ORDER BY year, month
LIMIT ?
`

func (q *Queries) GetPendingSyncMonths(ctx context.Context, limit int64) ([]MonthKey, error) {
	rows, err := q.db.QueryContext(ctx, getPendingSyncMonths, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthKey
	for rows.Next() {
		var i MonthKey
		if err := rows.Scan(&i.Year, &i.Month); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMonthSyncStatus = `-- name: GetMonthSyncStatus :one
SELECT sync_status FROM month_sync WHERE year = ? AND month = ?
`

func (q *Queries) GetMonthSyncStatus(ctx context.Context, year, month int64) (string, error) {
	row := q.db.QueryRowContext(ctx, getMonthSyncStatus, year, month)
	var status string
	err := row.Scan(&status)
	return status, err
}
