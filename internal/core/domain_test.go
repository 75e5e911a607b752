package core

import (
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDateType(t *testing.T) {
	cases := []struct {
		d    Date
		want DayType
	}{
		{NewDate(2025, 1, 13), Weekday}, // Monday
		{NewDate(2025, 1, 17), Weekday}, // Friday
		{NewDate(2025, 1, 18), Weekend}, // Saturday
		{NewDate(2025, 1, 19), Weekend}, // Sunday
	}
	for _, tc := range cases {
		if got := tc.d.Type(); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.d, tc.want, got)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate(" 2025-01-15 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != NewDate(2025, 1, 15) {
		t.Fatalf("unexpected date: %v", d)
	}
	for _, bad := range []string{"", "2025-02-30", "15/01/2025", "2025-13-01"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("%q expected error", bad)
		}
	}
}

func TestMonthID(t *testing.T) {
	m := NewDate(2024, 2, 10).MonthID()
	if m != (MonthID{Year: 2024, Month: 2}) {
		t.Fatalf("unexpected month id: %+v", m)
	}
	if m.DaysIn() != 29 {
		t.Fatalf("expected 29 days in Feb 2024, got %d", m.DaysIn())
	}
	if m.String() != "2024-02" || m.Title() != "February 2024" {
		t.Fatalf("unexpected formatting: %s / %s", m.String(), m.Title())
	}
	parsed, err := ParseMonthID("2024-02")
	if err != nil || parsed != m {
		t.Fatalf("parse month: got %+v err=%v", parsed, err)
	}
	if !m.Before(MonthID{Year: 2024, Month: 3}) || !m.Before(MonthID{Year: 2025, Month: 1}) {
		t.Fatalf("ordering broken")
	}
	if (MonthID{Year: 2024, Month: 13}).Validate() == nil {
		t.Fatalf("expected invalid month")
	}
}

func TestPunchKind(t *testing.T) {
	if (Punch{Ordinal: 1}).Kind() != ClockIn || (Punch{Ordinal: 3}).Kind() != ClockIn {
		t.Fatalf("odd ordinals must clock in")
	}
	if (Punch{Ordinal: 2}).Kind() != ClockOut || (Punch{Ordinal: 4}).Kind() != ClockOut {
		t.Fatalf("even ordinals must clock out")
	}
}
