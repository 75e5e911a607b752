package adapters

import (
	"context"

	"ore/internal/core"
	"ore/internal/services"
	"ore/internal/sheets"
	"ore/internal/storage"
)

var _ sheets.HistoryStore = (*SQLiteAdapter)(nil)

// SQLiteAdapter makes the SQLite repository a history store for the console.
// Every save also announces the changed months to the sheets worker.
type SQLiteAdapter struct {
	storage   *storage.SQLiteRepository
	publisher *services.SyncPublisher
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, publisher *services.SyncPublisher) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage:   storage,
		publisher: publisher,
	}
}

// Load implements sheets.HistoryLoader
func (a *SQLiteAdapter) Load(ctx context.Context) (*core.History, error) {
	return a.storage.Load(ctx)
}

// Save implements sheets.HistorySaver. A failed publish does not fail the
// save: the months stay pending in the database.
func (a *SQLiteAdapter) Save(ctx context.Context, h *core.History) error {
	changed, err := a.storage.SaveChanged(ctx, h)
	if err != nil {
		return err
	}
	a.publisher.PublishMonths(ctx, changed)
	return nil
}

func (a *SQLiteAdapter) Location() string {
	return a.storage.Location()
}

// Close releases the database and the publisher connection.
func (a *SQLiteAdapter) Close() error {
	pubErr := a.publisher.Close()
	if err := a.storage.Close(); err != nil {
		return err
	}
	return pubErr
}
