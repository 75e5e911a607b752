package sheets

import (
	"fmt"
	"time"

	"ore/internal/core"
)

// CellKind tells a renderer how to format a cell.
type CellKind int

const (
	KindTitle CellKind = iota
	KindHeader
	KindDayNumber
	KindWorked
	KindOvertime
	KindTotalLabel
	KindWorkedTotal
	KindOvertimeTotal
)

// Grid geometry of a month block. Rows and columns are 1-based.
const (
	TitleRow       = 1
	HeaderRow      = 3
	FirstWeekRow   = 4
	RowsPerWeek    = 3 // day number, worked, overtime
	TitleLastCol   = 8
	WorkedTotCol   = 3
	OvertimeTotCol = 5
)

// DayNames is the header row, Monday first.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Cell is a positioned value. DayType is set for cells inside a day block so
// the renderer can pick the weekday or weekend fill.
type Cell struct {
	Row, Col  int
	Value     any
	Kind      CellKind
	DayType   core.DayType
	Highlight bool // overtime cell with a non-zero value
}

// Merge spans a rectangular range.
type Merge struct {
	FromRow, FromCol, ToRow, ToCol int
}

// Block is the laid out report of a single month.
type Block struct {
	Month    core.MonthID
	Title    string
	Cells    []Cell
	Merges   []Merge
	Weeks    int
	TotalRow int
}

// LayoutMonth places a month view on a calendar grid: a merged title, the
// weekday header, one three-row block per calendar day and a totals row after
// the last week. Worked and overtime text is taken from the view unchanged.
func LayoutMonth(v core.MonthView) Block {
	b := Block{Month: v.Month, Title: v.Month.Title()}
	b.Cells = append(b.Cells, Cell{Row: TitleRow, Col: 1, Value: b.Title, Kind: KindTitle})
	b.Merges = append(b.Merges, Merge{FromRow: TitleRow, FromCol: 1, ToRow: TitleRow, ToCol: TitleLastCol})

	for i, name := range DayNames {
		b.Cells = append(b.Cells, Cell{Row: HeaderRow, Col: i + 1, Value: name, Kind: KindHeader})
	}

	week := 0
	for _, day := range v.Days {
		col := weekdayColumn(day.Date.Weekday())
		if col == 1 && day.Date.Day() != 1 {
			week++
		}
		row := FirstWeekRow + week*RowsPerWeek
		b.Cells = append(b.Cells, Cell{Row: row, Col: col, Value: day.Date.Day(), Kind: KindDayNumber, DayType: day.Type})

		worked := Cell{Row: row + 1, Col: col, Value: "", Kind: KindWorked, DayType: day.Type}
		overtime := Cell{Row: row + 2, Col: col, Value: "", Kind: KindOvertime, DayType: day.Type}
		if day.Recorded {
			worked.Value = "W: " + day.Record.Worked.String()
			if day.Record.Overtime > 0 {
				overtime.Value = "E: " + day.Record.Overtime.String()
				overtime.Highlight = true
			}
		}
		b.Cells = append(b.Cells, worked, overtime)
	}
	if len(v.Days) > 0 {
		b.Weeks = week + 1
	}

	b.TotalRow = FirstWeekRow + b.Weeks*RowsPerWeek + 1
	b.Cells = append(b.Cells,
		Cell{Row: b.TotalRow, Col: 1, Value: "MONTHLY TOTAL:", Kind: KindTotalLabel},
		Cell{Row: b.TotalRow, Col: WorkedTotCol, Value: "Worked: " + v.TotalWorked.String(), Kind: KindWorkedTotal},
		Cell{Row: b.TotalRow, Col: OvertimeTotCol, Value: "Extra: " + v.TotalOvertime.String(), Kind: KindOvertimeTotal},
	)
	b.Merges = append(b.Merges, Merge{FromRow: b.TotalRow, FromCol: 1, ToRow: b.TotalRow, ToCol: 2})
	return b
}

// weekdayColumn maps Monday..Sunday to columns 1..7.
func weekdayColumn(d time.Weekday) int {
	if d == time.Sunday {
		return 7
	}
	return int(d)
}

// ColumnName converts a 1-based column index to its letters (1 -> A, 27 -> AA).
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// A1 returns the A1 reference of a cell.
func A1(row, col int) string {
	return fmt.Sprintf("%s%d", ColumnName(col), row)
}
