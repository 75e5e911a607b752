package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ore/internal/core"
	"ore/internal/services"
	"ore/internal/sheets"
	"ore/internal/sheets/memory"
)

// Wednesday 12 March 2025.
var fixedNow = func() time.Time { return time.Date(2025, 3, 12, 15, 4, 0, 0, time.UTC) }

func run(t *testing.T, input string, store sheets.HistoryStore) (string, error) {
	t.Helper()
	var out bytes.Buffer
	agg := services.NewAggregator(core.NewCalculator(0))
	c := New(strings.NewReader(input), &out, agg, store, WithClock(fixedNow))
	err := c.Run(context.Background())
	return out.String(), err
}

func TestRunRecordsDay(t *testing.T) {
	store := memory.New()
	out, err := run(t, "1\n08.00\n12.00\n13.00\n17.30\ndone\n", store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, want := range []string{
		"Selected date: 2025-03-12 (Wednesday)",
		"Clock In at 08.00",
		"Clock Out at 17.30",
		"Hours worked: 08:30",
		"Extra hours: 00:30",
		"Data saved to 'memory'",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	h, _ := store.Load(context.Background())
	rec, ok := h.Day(core.NewDate(2025, 3, 12))
	if !ok || rec.Worked != 510 || rec.Overtime != 30 || rec.Type != core.Weekday {
		t.Fatalf("unexpected stored record %+v", rec)
	}
}

func TestRunNoEntries(t *testing.T) {
	store := memory.New()
	out, err := run(t, "2\ndone\n", store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "No time entries recorded.") {
		t.Fatalf("expected no entries message:\n%s", out)
	}
	if store.Saves() != 0 {
		t.Fatal("nothing should be saved")
	}
}

func TestRunMissingClockOutAndBadToken(t *testing.T) {
	store := memory.New()
	out, err := run(t, "1\n9:00\n09.00\nDONE\n", store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Use HH.MM (example: 07.30)") {
		t.Errorf("expected format hint:\n%s", out)
	}
	if strings.Count(out, "Time entry 1:") != 2 {
		t.Errorf("entry 1 should be asked again after a bad token:\n%s", out)
	}
	if !strings.Contains(out, "Hours worked: 00:00") || !strings.Contains(out, "missing clock-out") {
		t.Errorf("expected zero hours with warning:\n%s", out)
	}
}

func TestRunShowsParseReason(t *testing.T) {
	tests := []struct {
		token  string
		reason string
	}{
		{token: "24.00", reason: "invalid hour"},
		{token: "12.60", reason: "invalid minute"},
		{token: "12:30", reason: "missing '.' separator"},
		{token: "7.5", reason: "minute must be two digits"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			out, err := run(t, "1\n"+tt.token+"\ndone\n", memory.New())
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			want := "Invalid format (" + tt.reason
			if !strings.Contains(out, want) {
				t.Fatalf("expected %q in output:\n%s", want, out)
			}
		})
	}
}

func TestRunOrderingErrorRestartsDay(t *testing.T) {
	store := memory.New()
	out, err := run(t, "1\n10.00\n09.00\ndone\n09.00\n10.00\ndone\n", store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Please enter the day again") {
		t.Errorf("expected re-entry prompt:\n%s", out)
	}
	if !strings.Contains(out, "Hours worked: 01:00") {
		t.Errorf("second attempt should be recorded:\n%s", out)
	}
}

func TestSelectDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  core.Date
		msg   string
	}{
		{name: "today", input: "1\n", want: core.NewDate(2025, 3, 12)},
		{name: "yesterday", input: "2\n", want: core.NewDate(2025, 3, 11)},
		{name: "custom", input: "3\n2025-01-15\n", want: core.NewDate(2025, 1, 15)},
		{name: "custom retries bad format", input: "3\n15/01/2025\n2025-01-15\n", want: core.NewDate(2025, 1, 15), msg: "Invalid date format"},
		{name: "custom rejects future", input: "3\n2025-03-13\n2025-03-12\n", want: core.NewDate(2025, 3, 12), msg: "Cannot enter hours for future dates"},
		{name: "invalid choice", input: "7\n", want: core.NewDate(2025, 3, 12), msg: "Invalid choice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			c := New(strings.NewReader(tt.input), &out, nil, nil, WithClock(fixedNow))
			got, err := c.SelectDate()
			if err != nil {
				t.Fatalf("SelectDate: %v", err)
			}
			if !got.Equal(tt.want.Time) {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
			if tt.msg != "" && !strings.Contains(out.String(), tt.msg) {
				t.Fatalf("expected %q in output:\n%s", tt.msg, out.String())
			}
		})
	}
}

type corruptStore struct{ *memory.Store }

func (corruptStore) Load(context.Context) (*core.History, error) {
	return nil, &core.CorruptHistoryError{Source: "hours.xlsx", Err: errors.New("bad header")}
}

func TestRunCorruptHistory(t *testing.T) {
	out, err := run(t, "n\n", corruptStore{memory.New()})
	var corrupt *core.CorruptHistoryError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptHistoryError, got %v", err)
	}
	if !strings.Contains(out, "cannot be read") {
		t.Errorf("expected corrupt message:\n%s", out)
	}

	store := corruptStore{memory.New()}
	if _, err := run(t, "y\n1\n08.00\n09.00\ndone\n", store); err != nil {
		t.Fatalf("fresh start should succeed: %v", err)
	}
	if store.Saves() != 1 {
		t.Fatal("fresh history should be saved")
	}
}

type flakyStore struct {
	*memory.Store
	failures int
}

func (s *flakyStore) Save(ctx context.Context, h *core.History) error {
	if s.failures > 0 {
		s.failures--
		return &core.PersistenceError{Path: "hours.xlsx", Err: errors.New("file is locked")}
	}
	return s.Store.Save(ctx, h)
}

func TestRunSaveRetry(t *testing.T) {
	store := &flakyStore{Store: memory.New(), failures: 1}
	out, err := run(t, "1\n08.00\n16.00\ndone\ny\n", store)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Could not save to 'hours.xlsx': file is locked") {
		t.Errorf("expected failure with path:\n%s", out)
	}
	if store.Saves() != 1 {
		t.Fatal("retry should have saved")
	}

	store = &flakyStore{Store: memory.New(), failures: 1}
	_, err = run(t, "1\n08.00\n16.00\ndone\nn\n", store)
	var perr *core.PersistenceError
	if !errors.As(err, &perr) || perr.Path != "hours.xlsx" {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
}
