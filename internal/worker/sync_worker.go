package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ore/internal/amqp"
	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/sheets"
	"ore/internal/storage"
)

// SheetsSyncWorker re-renders months from SQLite to the spreadsheet.
type SheetsSyncWorker struct {
	storage   *storage.SQLiteRepository
	renderer  sheets.MonthRenderer
	data      sheets.DataWriter
	batchSize int

	mu    sync.Mutex
	locks map[core.MonthID]*sync.Mutex
}

// NewSheetsSyncWorker creates a worker. data may be nil, in which case only
// the month tabs are kept up to date.
func NewSheetsSyncWorker(storage *storage.SQLiteRepository, renderer sheets.MonthRenderer, data sheets.DataWriter, batchSize int) *SheetsSyncWorker {
	if batchSize < 1 {
		batchSize = 10
	}
	return &SheetsSyncWorker{
		storage:   storage,
		renderer:  renderer,
		data:      data,
		batchSize: batchSize,
		locks:     make(map[core.MonthID]*sync.Mutex),
	}
}

// HandleMonthSync processes a single month sync message from AMQP
func (w *SheetsSyncWorker) HandleMonthSync(ctx context.Context, msg *amqp.MonthSyncMessage) error {
	id := msg.MonthID()
	slog.InfoContext(ctx, "Processing month sync message",
		"month", id.String(),
		"timestamp", msg.Timestamp)

	if err := w.syncMonths(ctx, []core.MonthID{id}); err != nil {
		return err
	}
	return nil
}

// ProcessPending renders months still flagged in the database. This is a
// backup for lost AMQP messages and for saves made while the broker was down.
func (w *SheetsSyncWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck drains a larger batch of pending months at startup.
func (w *SheetsSyncWorker) StartupSyncCheck(ctx context.Context) error {
	n, err := w.processPending(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}
	if n == 0 {
		slog.InfoContext(ctx, "No pending months found on startup")
		return nil
	}
	slog.InfoContext(ctx, "Startup sync completed", "synced", n)
	return nil
}

// Run calls ProcessPending every interval until ctx is done.
func (w *SheetsSyncWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ProcessPending(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic sync failed", "error", err)
			}
		}
	}
}

func (w *SheetsSyncWorker) processPending(ctx context.Context, limit int) (int, error) {
	pending, err := w.storage.GetPendingSyncMonths(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending months: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	slog.InfoContext(ctx, "Processing pending months", "count", len(pending))
	synced := 0
	for _, id := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.renderMonth(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync month",
				log.NewFields().WithOperation(log.OpSync).WithMonth(id).WithError(err).ToSlice()...)
			continue
		}
		synced++
	}
	if synced > 0 {
		if err := w.writeData(ctx); err != nil {
			return synced, err
		}
	}
	return synced, nil
}

func (w *SheetsSyncWorker) syncMonths(ctx context.Context, ids []core.MonthID) error {
	for _, id := range ids {
		if err := w.renderMonth(ctx, id); err != nil {
			return err
		}
	}
	return w.writeData(ctx)
}

// lockMonth serializes renders of the same month between the AMQP consumer
// and the periodic loop. The returned func releases the lock.
func (w *SheetsSyncWorker) lockMonth(id core.MonthID) func() {
	w.mu.Lock()
	l, ok := w.locks[id]
	if !ok {
		l = &sync.Mutex{}
		w.locks[id] = l
	}
	w.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// renderMonth renders one month and records the outcome in the database. A
// month saved again while it was rendering stays pending for the next pass.
func (w *SheetsSyncWorker) renderMonth(ctx context.Context, id core.MonthID) error {
	unlock := w.lockMonth(id)
	defer unlock()

	view, version, err := w.storage.LoadMonthForSync(ctx, id)
	if err != nil {
		return fmt.Errorf("load month %s: %w", id, err)
	}
	if err := w.renderer.RenderMonth(ctx, view); err != nil {
		if markErr := w.storage.MarkMonthSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "month", id.String(), "error", markErr)
		}
		return fmt.Errorf("render month %s: %w", id, err)
	}
	ok, err := w.storage.MarkMonthSynced(ctx, id, version)
	if err != nil {
		return err
	}
	fields := log.NewFields().WithOperation(log.OpSync).WithMonth(id)
	if !ok {
		slog.InfoContext(ctx, "Month rendered from a stale snapshot", fields.ToSlice()...)
		return nil
	}
	slog.InfoContext(ctx, "Month synced to spreadsheet",
		append(fields.ToSlice(),
			log.FieldWorked, view.TotalWorked.String(),
			log.FieldOvertime, view.TotalOvertime.String())...)
	return nil
}

func (w *SheetsSyncWorker) writeData(ctx context.Context) error {
	if w.data == nil {
		return nil
	}
	h, err := w.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("load history for data table: %w", err)
	}
	if err := w.data.WriteData(ctx, h); err != nil {
		return fmt.Errorf("write data table: %w", err)
	}
	return nil
}
