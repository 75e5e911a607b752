package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Weekday DayType = "weekday"
	Weekend DayType = "weekend"
)

const (
	ClockIn  PunchKind = "Clock In"
	ClockOut PunchKind = "Clock Out"
)

// DateLayout is the textual form of a Date in storage and on the console.
const DateLayout = "2006-01-02"

type (
	DayType string

	PunchKind string

	Date struct {
		time.Time
	}

	// MonthID identifies a calendar month.
	MonthID struct {
		Year  int
		Month int // 1-12
	}

	// TimeOfDay is a wall-clock time with minute precision.
	TimeOfDay struct {
		Hour   int
		Minute int
	}

	// Punch is one clock-in or clock-out; Ordinal is 1-based within the day.
	Punch struct {
		Time    TimeOfDay
		Ordinal int
	}

	DayRecord struct {
		Date     Date
		Punches  []Punch // empty for records restored from legacy storage
		Worked   Minutes
		Overtime Minutes
		Type     DayType
	}
)

var (
	ErrInvalidDay    = errors.New("invalid day")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidHour   = errors.New("invalid hour")
	ErrInvalidMinute = errors.New("invalid minute")
	ErrZeroDate      = errors.New("date cannot be zero")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrZeroDate
	}
	return MonthID{Year: d.Year(), Month: d.Month()}.Validate()
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// MonthID returns the month the date belongs to.
func (d Date) MonthID() MonthID {
	return MonthID{Year: d.Year(), Month: d.Month()}
}

// Type classifies the date by weekday only: Saturday and Sunday are weekend.
func (d Date) Type() DayType {
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return Weekend
	default:
		return Weekday
	}
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. Out-of-range components are rejected
// rather than normalised (2025-02-30 is an error).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

func (m MonthID) Validate() error {
	if m.Year < 1 || m.Year > 9999 {
		return ErrInvalidYear
	}
	if m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// First returns the first day of the month.
func (m MonthID) First() Date {
	return NewDate(m.Year, m.Month, 1)
}

// DaysIn returns the number of days in the month.
func (m MonthID) DaysIn() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// Before reports whether m is earlier than o.
func (m MonthID) Before(o MonthID) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Title is the human name used for report blocks, e.g. "March 2025".
func (m MonthID) Title() string {
	return fmt.Sprintf("%s %d", time.Month(m.Month), m.Year)
}

// String returns the YYYY-MM key form.
func (m MonthID) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// ParseMonthID parses a YYYY-MM key.
func ParseMonthID(s string) (MonthID, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return MonthID{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return MonthID{Year: t.Year(), Month: int(t.Month())}, nil
}

// NewTimeOfDay validates the components.
func NewTimeOfDay(hour, minute int) (TimeOfDay, error) {
	t := TimeOfDay{Hour: hour, Minute: minute}
	if err := t.Validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

func (t TimeOfDay) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return ErrInvalidHour
	}
	if t.Minute < 0 || t.Minute > 59 {
		return ErrInvalidMinute
	}
	return nil
}

// Minutes returns the minutes elapsed since midnight.
func (t TimeOfDay) Minutes() Minutes {
	return Minutes(t.Hour*60 + t.Minute)
}

// String renders the token form, e.g. "08.05".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d.%02d", t.Hour, t.Minute)
}

// Kind is derived from the ordinal: odd positions clock in, even clock out.
func (p Punch) Kind() PunchKind {
	if p.Ordinal%2 == 1 {
		return ClockIn
	}
	return ClockOut
}

// MissingClockOut reports an unmatched trailing clock-in.
func (r DayRecord) MissingClockOut() bool {
	return len(r.Punches)%2 == 1
}

func (r DayRecord) Validate() error {
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if r.Worked < 0 || r.Overtime < 0 {
		return errors.New("durations cannot be negative")
	}
	for i, p := range r.Punches {
		if err := p.Time.Validate(); err != nil {
			return fmt.Errorf("punch %d: %w", i+1, err)
		}
	}
	return nil
}

// PunchTokens renders the punches in token form, space separated.
func (r DayRecord) PunchTokens() string {
	parts := make([]string, len(r.Punches))
	for i, p := range r.Punches {
		parts[i] = p.Time.String()
	}
	return strings.Join(parts, " ")
}
