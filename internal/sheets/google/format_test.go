package google

import (
	"math"
	"testing"

	"ore/internal/core"
	ports "ore/internal/sheets"
)

func februaryBlock(t *testing.T) ports.Block {
	t.Helper()
	h := core.NewHistory()
	rec := core.DayRecord{Date: core.NewDate(2025, 2, 3), Worked: 510, Overtime: 30}
	if err := h.Upsert(rec); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return ports.LayoutMonth(h.MonthView(core.MonthID{Year: 2025, Month: 2}))
}

func TestBlockValues(t *testing.T) {
	b := februaryBlock(t)
	m := blockValues(b)
	if len(m) != b.TotalRow {
		t.Fatalf("expected %d rows, got %d", b.TotalRow, len(m))
	}
	for i, row := range m {
		if len(row) != ports.TitleLastCol {
			t.Fatalf("row %d: expected %d columns, got %d", i+1, ports.TitleLastCol, len(row))
		}
	}
	if m[0][0] != "February 2025" {
		t.Fatalf("unexpected title %v", m[0][0])
	}
	if m[ports.HeaderRow-1][0] != "Monday" {
		t.Fatalf("unexpected header %v", m[ports.HeaderRow-1][0])
	}
	// Feb 1 2025 is a Saturday, so Monday Feb 3 opens the second week (rows 7-9).
	if m[6][0] != 3 || m[7][0] != "W: 08:30" || m[8][0] != "E: 00:30" {
		t.Fatalf("unexpected day block %v / %v / %v", m[6][0], m[7][0], m[8][0])
	}
	if m[b.TotalRow-1][ports.WorkedTotCol-1] != "Worked: 08:30" {
		t.Fatalf("unexpected total %v", m[b.TotalRow-1][ports.WorkedTotCol-1])
	}
	if m[1][0] != "" {
		t.Fatalf("empty cells should be blank strings, got %v", m[1][0])
	}
}

func TestFormatRequests(t *testing.T) {
	b := februaryBlock(t)
	reqs := formatRequests(b, 0, ports.DefaultStyle())
	if len(reqs) != len(b.Cells)+len(b.Merges) {
		t.Fatalf("expected %d requests, got %d", len(b.Cells)+len(b.Merges), len(reqs))
	}

	title := reqs[0].RepeatCell
	if title == nil || title.Range.StartRowIndex != 0 || title.Range.EndRowIndex != 1 || title.Range.EndColumnIndex != 1 {
		t.Fatalf("unexpected title range %+v", title)
	}
	if !title.Cell.UserEnteredFormat.TextFormat.Bold {
		t.Fatal("title should be bold")
	}

	merge := reqs[len(reqs)-1].MergeCells
	if merge == nil || merge.MergeType != "MERGE_ALL" {
		t.Fatalf("expected trailing merge request, got %+v", reqs[len(reqs)-1])
	}
	if merge.Range.StartRowIndex != int64(b.TotalRow-1) || merge.Range.EndColumnIndex != 2 {
		t.Fatalf("unexpected totals merge %+v", merge.Range)
	}
	if merge.Range.ForceSendFields[0] != "SheetId" {
		t.Fatal("sheet id 0 must be sent explicitly")
	}
}

func TestColor(t *testing.T) {
	c := color("366092")
	near := func(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
	if !near(c.Red, 0x36/255.0) || !near(c.Green, 0x60/255.0) || !near(c.Blue, 0x92/255.0) {
		t.Fatalf("unexpected colour %+v", c)
	}
	if w := color("nope"); w.Red != 1 || w.Green != 1 || w.Blue != 1 {
		t.Fatalf("invalid colour should fall back to white, got %+v", w)
	}
}

func TestParseDataValues(t *testing.T) {
	h, err := parseDataValues([][]interface{}{
		{"Date", "Hours Worked", "Extra Hours", "Day Type"},
		{"2025-03-10", "08:30", "00:30", "Weekday"},
		{},
	})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r, ok := h.Day(core.NewDate(2025, 3, 10))
	if !ok || r.Worked != 510 || r.Overtime != 30 {
		t.Fatalf("unexpected record %+v", r)
	}

	if _, err := parseDataValues([][]interface{}{{"Name", "Amount"}}); err == nil {
		t.Fatal("expected header error")
	}
}
