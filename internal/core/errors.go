package core

import "fmt"

// ParseError reports a time token that is not a valid HH.MM value.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time %q: %s", e.Token, e.Reason)
}

// OrderingError reports a clock-out earlier than its clock-in.
type OrderingError struct {
	Pair int // 1-based pair index within the day
	In   TimeOfDay
	Out  TimeOfDay
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("pair %d: clock-out %s is before clock-in %s", e.Pair, e.Out, e.In)
}

// CorruptHistoryError reports a storage source that exists but cannot be read as history.
type CorruptHistoryError struct {
	Source string
	Err    error
}

func (e *CorruptHistoryError) Error() string {
	return fmt.Sprintf("corrupt history in %s: %v", e.Source, e.Err)
}

func (e *CorruptHistoryError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write of the history to Path.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("save history to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
