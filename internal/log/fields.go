package log

import "ore/internal/core"

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldDate      = "date"
	FieldMonth     = "month"
	FieldWorked    = "worked"
	FieldOvertime  = "overtime"
	FieldPunches   = "punches"
	FieldBackend   = "backend"
	FieldLocation  = "location"
	FieldDuration  = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp        = "app"
	ComponentConsole    = "console"
	ComponentAggregator = "aggregator"
	ComponentStorage    = "storage"
	ComponentSheets     = "sheets"
	ComponentXLSX       = "xlsx"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentBackend    = "backend"
)

// Operations defines standard operation names
const (
	OpLoad     = "load"
	OpSave     = "save"
	OpRecord   = "record"
	OpRender   = "render"
	OpSync     = "sync"
	OpPublish  = "publish"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds the error text when err is non-nil.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithDay adds the figures of a recorded day.
func (f LogFields) WithDay(r core.DayRecord) LogFields {
	f[FieldDate] = r.Date.String()
	f[FieldWorked] = r.Worked.String()
	f[FieldOvertime] = r.Overtime.String()
	f[FieldPunches] = len(r.Punches)
	return f
}

func (f LogFields) WithMonth(id core.MonthID) LogFields {
	f[FieldMonth] = id.String()
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
