package sheets

import (
	"context"

	"ore/internal/core"
)

// Ports for outbound adapters.
type (
	// HistoryLoader reads the persisted history. A missing or empty source
	// yields an empty history; an unreadable one yields *core.CorruptHistoryError.
	HistoryLoader interface {
		Load(ctx context.Context) (*core.History, error)
	}

	// HistorySaver replaces the persisted history with h as a whole.
	HistorySaver interface {
		Save(ctx context.Context, h *core.History) error
	}

	HistoryStore interface {
		HistoryLoader
		HistorySaver
		// Location names the backing resource for user-facing messages.
		Location() string
	}

	// MonthRenderer writes the report block of a single month.
	MonthRenderer interface {
		RenderMonth(ctx context.Context, v core.MonthView) error
	}

	// DataWriter rewrites the flat Data table from h.
	DataWriter interface {
		WriteData(ctx context.Context, h *core.History) error
	}
)
