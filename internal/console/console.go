// Package console runs the interactive day entry: pick a date, type the
// punches, see the totals and save the history.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"ore/internal/core"
	"ore/internal/log"
	"ore/internal/services"
	"ore/internal/sheets"
)

// Console talks to the user over a line-oriented reader and a writer.
type Console struct {
	in    *bufio.Scanner
	out   io.Writer
	now   func() time.Time
	agg   *services.Aggregator
	store sheets.HistoryStore
}

type Option func(*Console)

// WithClock replaces time.Now, which decides "today" and rejects future dates.
func WithClock(now func() time.Time) Option {
	return func(c *Console) {
		c.now = now
	}
}

func New(in io.Reader, out io.Writer, agg *services.Aggregator, store sheets.HistoryStore, opts ...Option) *Console {
	c := &Console{
		in:    bufio.NewScanner(in),
		out:   out,
		now:   time.Now,
		agg:   agg,
		store: store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run performs one complete session. It returns nil after a successful save
// or when no entries were typed.
func (c *Console) Run(ctx context.Context) error {
	if err := c.loadHistory(ctx); err != nil {
		return err
	}

	date, err := c.SelectDate()
	if err != nil {
		return err
	}

	rec, warn, err := c.recordDay(date)
	if err != nil {
		return err
	}
	if rec == nil {
		c.println("⚠ No time entries recorded.")
		return nil
	}

	c.printf("\n📊 RESULTS\n")
	c.printf("Hours worked: %s\n", rec.Worked)
	c.printf("Extra hours: %s\n", rec.Overtime)
	if warn != "" {
		c.printf("⚠ Warning: %s\n", warn)
	}
	slog.InfoContext(ctx, "Day recorded", log.NewFields().WithOperation(log.OpRecord).WithDay(*rec).ToSlice()...)

	return c.save(ctx)
}

// loadHistory loads the stored history. A corrupt source is shown to the user
// who can abort or continue with an empty history.
func (c *Console) loadHistory(ctx context.Context) error {
	err := c.agg.Load(ctx, c.store)
	if err == nil {
		return nil
	}
	var corrupt *core.CorruptHistoryError
	if !errors.As(err, &corrupt) {
		return err
	}
	slog.Error("History is corrupt", log.FieldLocation, corrupt.Source, log.FieldError, corrupt.Err)
	c.printf("⚠ The history in %s cannot be read: %v\n", corrupt.Source, corrupt.Err)
	ok, askErr := c.confirm("Start with an empty history? Saving will overwrite it (y/N): ")
	if askErr != nil || !ok {
		return err
	}
	c.agg.StartFresh()
	return nil
}

// SelectDate shows the date menu and returns the chosen day.
func (c *Console) SelectDate() (core.Date, error) {
	today := core.DateOf(c.now())

	c.println("📅 DATE SELECTION")
	c.println("1. Use today's date")
	c.println("2. Yesterday")
	c.println("3. Enter custom date")
	choice, err := c.ask("Choose option (1, 2, or 3): ")
	if err != nil {
		return core.Date{}, err
	}

	switch choice {
	case "1":
		return today, nil
	case "2":
		return core.DateOf(today.AddDate(0, 0, -1)), nil
	case "3":
		return c.customDate(today)
	default:
		c.println("⚠ Invalid choice. Using today's date as default.")
		return today, nil
	}
}

func (c *Console) customDate(today core.Date) (core.Date, error) {
	for {
		raw, err := c.ask("Enter date (YYYY-MM-DD format, example: 2025-01-15): ")
		if err != nil {
			return core.Date{}, err
		}
		d, err := core.ParseDate(raw)
		if err != nil {
			c.println("⚠ Invalid date format. Please use YYYY-MM-DD (example: 2025-01-15)")
			continue
		}
		if d.After(today.Time) {
			c.println("⚠ Cannot enter hours for future dates. Please select today or a past date.")
			continue
		}
		return d, nil
	}
}

// recordDay collects punches until the terminator and records the day. A
// clock-out before its clock-in discards the punches and starts the day over.
// A nil record means nothing was typed.
func (c *Console) recordDay(date core.Date) (*core.DayRecord, core.Warning, error) {
	session := services.NewEntrySession()
	for {
		if err := c.collect(date, session); err != nil {
			return nil, "", err
		}
		punches := session.Punches()
		if len(punches) == 0 {
			return nil, "", nil
		}

		rec, warn, err := c.agg.Record(date, punches)
		var ordering *core.OrderingError
		if errors.As(err, &ordering) {
			c.printf("⚠ Entry %d (%s) is before entry %d (%s). Please enter the day again.\n",
				ordering.Pair*2, ordering.Out, ordering.Pair*2-1, ordering.In)
			session.Reset()
			continue
		}
		if err != nil {
			return nil, "", err
		}
		return &rec, warn, nil
	}
}

// collect reads tokens into session until "done" or end of input.
func (c *Console) collect(date core.Date, session *services.EntrySession) error {
	c.printf("\n📅 Selected date: %s (%s)\n", date, date.Weekday())
	c.println("Enter your time entries in HH.MM format (example: 08.42).")
	c.println("Type 'done' when finished.")
	c.println("")

	for !session.Done() {
		raw, err := c.ask(fmt.Sprintf("Time entry %d: ", session.Next()))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		fb, err := session.Feed(raw)
		var perr *core.ParseError
		if errors.As(err, &perr) {
			c.printf("⚠ Invalid format (%s). Use HH.MM (example: 07.30)\n", perr.Reason)
			continue
		}
		if err != nil {
			return err
		}
		if !fb.Done {
			c.printf("  %s at %s\n", fb.Punch.Kind(), fb.Punch.Time)
		}
	}
	return nil
}

// save persists the history, offering a retry while it fails.
func (c *Console) save(ctx context.Context) error {
	for {
		err := c.agg.Save(ctx, c.store)
		if err == nil {
			c.printf("\n✅ Data saved to '%s' in calendar format.\n", c.store.Location())
			return nil
		}
		var perr *core.PersistenceError
		if !errors.As(err, &perr) {
			return err
		}
		slog.Error("Save failed", log.FieldLocation, perr.Path, log.FieldError, perr.Err)
		c.printf("⚠ Could not save to '%s': %v\n", perr.Path, perr.Err)
		retry, askErr := c.confirm("Retry? (y/N): ")
		if askErr != nil || !retry {
			return err
		}
	}
}

func (c *Console) confirm(prompt string) (bool, error) {
	answer, err := c.ask(prompt)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ask prints prompt and reads one trimmed line. End of input is io.EOF.
func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.out, s)
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}
