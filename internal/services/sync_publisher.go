package services

import (
	"context"
	"io"
	"log/slog"

	"ore/internal/core"
)

// MonthPublisher announces that a month changed.
type MonthPublisher interface {
	PublishMonthSync(ctx context.Context, id core.MonthID) error
}

// SyncPublisher tells the sheets worker which months to re-render after a
// local save. Publishing is best effort: the months stay flagged in the
// database and the worker's periodic pass picks up anything that was missed.
type SyncPublisher struct {
	publisher MonthPublisher
}

func NewSyncPublisher(publisher MonthPublisher) *SyncPublisher {
	return &SyncPublisher{publisher: publisher}
}

// PublishMonths publishes one message per month and returns how many went out.
func (s *SyncPublisher) PublishMonths(ctx context.Context, ids []core.MonthID) int {
	if s == nil || s.publisher == nil {
		if len(ids) > 0 {
			slog.WarnContext(ctx, "AMQP client not available, skipping sync messages", "months", len(ids))
		}
		return 0
	}
	sent := 0
	for _, id := range ids {
		if err := s.publisher.PublishMonthSync(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish sync message", "month", id.String(), "error", err)
			continue
		}
		sent++
	}
	return sent
}

// Close closes the underlying publisher when it holds a connection.
func (s *SyncPublisher) Close() error {
	if s == nil || s.publisher == nil {
		return nil
	}
	if c, ok := s.publisher.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
