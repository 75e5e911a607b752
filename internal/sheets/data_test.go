package sheets

import (
	"strings"
	"testing"

	"ore/internal/core"
)

func TestDataRowsRoundTrip(t *testing.T) {
	h := core.NewHistory()
	calc := core.NewCalculator(core.DefaultStandardDay)
	p, _ := core.ParsePunches("08.00 12.00 13.00 17.30")
	rec, _, err := calc.Calculate(core.NewDate(2025, 1, 15), p)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	_ = h.Upsert(rec)
	p, _ = core.ParsePunches("09.00")
	rec, _, _ = calc.Calculate(core.NewDate(2024, 12, 31), p)
	_ = h.Upsert(rec)

	rows := DataRows(h)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2024-12-31" || rows[2][1] != "08:30" || rows[2][2] != "00:30" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[2][5] != 8.5 {
		t.Fatalf("decimal hours: %v", rows[2][5])
	}

	values := make([][]string, len(rows))
	for i, r := range rows {
		values[i] = ToStrings(r)
	}
	back, err := ParseDataRows(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if back.Len() != 2 {
		t.Fatalf("expected 2 months, got %d", back.Len())
	}
	got, ok := back.Day(core.NewDate(2025, 1, 15))
	if !ok || got.Worked != 510 || got.Overtime != 30 || len(got.Punches) != 4 || got.Type != core.Weekday {
		t.Fatalf("unexpected restored record: %+v", got)
	}
	if open, _ := back.Day(core.NewDate(2024, 12, 31)); !open.MissingClockOut() {
		t.Fatalf("unmatched punch lost in round trip: %+v", open)
	}
}

func TestParseDataRows_Legacy(t *testing.T) {
	values := [][]string{
		{"Date", "Hours Worked", "Extra Hours"},
		{"2025-01-15", "09:00", "01:00"},
		{"2025-01-16 00:00:00", "04:00", "-4:00"},
		{"", "", ""},
		{"2025-01-15", "07:00", "00:00"}, // later row wins
	}
	h, err := ParseDataRows(values)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, ok := h.Month(core.MonthID{Year: 2025, Month: 1})
	if !ok || len(g.Days) != 2 {
		t.Fatalf("unexpected grid: %+v", g)
	}
	if g.TotalWorked != 660 || g.TotalOvertime != 0 {
		t.Fatalf("unexpected totals %d/%d", g.TotalWorked, g.TotalOvertime)
	}
}

func TestParseDataRows_Errors(t *testing.T) {
	if h, err := ParseDataRows(nil); err != nil || h.Len() != 0 {
		t.Fatalf("empty table must give empty history: %v", err)
	}
	_, err := ParseDataRows([][]string{{"Foo", "Bar"}})
	if err == nil || !strings.Contains(err.Error(), "unexpected data header") {
		t.Fatalf("expected header error, got %v", err)
	}
	bads := [][][]string{
		{{"Date", "Hours Worked", "Extra Hours"}, {"yesterday", "01:00", "00:00"}},
		{{"Date", "Hours Worked", "Extra Hours"}, {"2025-01-01", "lots", "00:00"}},
		{{"Date", "Hours Worked", "Extra Hours", "Punches"}, {"2025-01-01", "01:00", "00:00", "8 to 9"}},
	}
	for i, v := range bads {
		if _, err := ParseDataRows(v); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}
