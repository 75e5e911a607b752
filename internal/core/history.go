package core

import (
	"fmt"
	"sort"
)

// MonthGrid holds the day records of one month. Totals are derived from Days
// and recomputed on every change.
type MonthGrid struct {
	Month         MonthID
	Days          map[int]DayRecord // keyed by day of month
	TotalWorked   Minutes
	TotalOvertime Minutes
}

// DayCell is one calendar day of a MonthView. Recorded distinguishes
// "nothing entered" from an entry of zero hours.
type DayCell struct {
	Date     Date
	Type     DayType
	Recorded bool
	Record   DayRecord
}

// MonthView is a full calendar month ready for rendering.
type MonthView struct {
	Month         MonthID
	Days          []DayCell // one per calendar day, in order
	TotalWorked   Minutes
	TotalOvertime Minutes
}

// History is every recorded month, keyed by MonthID.
type History struct {
	months map[MonthID]*MonthGrid
}

func NewHistory() *History {
	return &History{months: make(map[MonthID]*MonthGrid)}
}

func newMonthGrid(id MonthID) *MonthGrid {
	return &MonthGrid{Month: id, Days: make(map[int]DayRecord)}
}

func (g *MonthGrid) recompute() {
	g.TotalWorked, g.TotalOvertime = 0, 0
	for _, r := range g.Days {
		g.TotalWorked += r.Worked
		g.TotalOvertime += r.Overtime
	}
}

func (g *MonthGrid) clone() MonthGrid {
	out := MonthGrid{
		Month:         g.Month,
		Days:          make(map[int]DayRecord, len(g.Days)),
		TotalWorked:   g.TotalWorked,
		TotalOvertime: g.TotalOvertime,
	}
	for d, r := range g.Days {
		r.Punches = append([]Punch(nil), r.Punches...)
		out.Days[d] = r
	}
	return out
}

// Upsert inserts or fully replaces the record for rec.Date and recomputes the
// owning month's totals. Repeating the same record leaves the history unchanged.
func (h *History) Upsert(rec DayRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("upsert %s: %w", rec.Date, err)
	}
	if h.months == nil {
		h.months = make(map[MonthID]*MonthGrid)
	}
	id := rec.Date.MonthID()
	g, ok := h.months[id]
	if !ok {
		g = newMonthGrid(id)
		h.months[id] = g
	}
	rec.Punches = append([]Punch(nil), rec.Punches...)
	rec.Type = rec.Date.Type()
	g.Days[rec.Date.Day()] = rec
	g.recompute()
	return nil
}

// Len returns the number of months held.
func (h *History) Len() int {
	return len(h.months)
}

// Months returns the month identifiers in chronological order.
func (h *History) Months() []MonthID {
	ids := make([]MonthID, 0, len(h.months))
	for id := range h.months {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Before(ids[j]) })
	return ids
}

// Month returns a copy of the grid for id.
func (h *History) Month(id MonthID) (MonthGrid, bool) {
	g, ok := h.months[id]
	if !ok {
		return MonthGrid{}, false
	}
	return g.clone(), true
}

// Day returns the record for a date, if any.
func (h *History) Day(d Date) (DayRecord, bool) {
	g, ok := h.months[d.MonthID()]
	if !ok {
		return DayRecord{}, false
	}
	r, ok := g.Days[d.Day()]
	return r, ok
}

// Records returns every day record in date order.
func (h *History) Records() []DayRecord {
	var out []DayRecord
	for _, id := range h.Months() {
		g := h.months[id]
		days := make([]int, 0, len(g.Days))
		for d := range g.Days {
			days = append(days, d)
		}
		sort.Ints(days)
		for _, d := range days {
			out = append(out, g.Days[d])
		}
	}
	return out
}

// MonthView lists every day of the month, recorded or not, with the grid totals.
// A month with no records yields blank cells and zero totals.
func (h *History) MonthView(id MonthID) MonthView {
	v := MonthView{Month: id}
	g, ok := h.months[id]
	if ok {
		v.TotalWorked, v.TotalOvertime = g.TotalWorked, g.TotalOvertime
	}
	if id.Validate() != nil {
		return v
	}
	n := id.DaysIn()
	v.Days = make([]DayCell, 0, n)
	for d := 1; d <= n; d++ {
		date := NewDate(id.Year, id.Month, d)
		cell := DayCell{Date: date, Type: date.Type()}
		if ok {
			if r, found := g.Days[d]; found {
				cell.Recorded = true
				cell.Record = r
			}
		}
		v.Days = append(v.Days, cell)
	}
	return v
}

// Clone returns a deep copy.
func (h *History) Clone() *History {
	out := NewHistory()
	for id, g := range h.months {
		c := g.clone()
		out.months[id] = &c
	}
	return out
}
