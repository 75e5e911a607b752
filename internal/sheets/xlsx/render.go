package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"ore/internal/core"
	"ore/internal/sheets"
)

const (
	calendarColWidth = 14
	dataColWidth     = 14
)

// Render builds the workbook for h: a calendar sheet per month in
// chronological order followed by the Data sheet.
func Render(h *core.History, style sheets.Style) (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	r := &renderer{f: f, style: style, ids: map[styleKey]int{}}

	for _, id := range h.Months() {
		block := sheets.LayoutMonth(h.MonthView(id))
		if err := r.month(block); err != nil {
			f.Close()
			return nil, fmt.Errorf("render %s: %w", id, err)
		}
	}
	if err := r.data(h); err != nil {
		f.Close()
		return nil, fmt.Errorf("render data sheet: %w", err)
	}

	if defaultSheet != sheets.DataSheet {
		if err := f.DeleteSheet(defaultSheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("delete %s: %w", defaultSheet, err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

type styleKey struct {
	kind sheets.CellKind
	fill string
}

type renderer struct {
	f     *excelize.File
	style sheets.Style
	ids   map[styleKey]int
}

func (r *renderer) month(b sheets.Block) error {
	name := b.Title
	if _, err := r.f.NewSheet(name); err != nil {
		return err
	}
	for _, c := range b.Cells {
		ref, err := excelize.CoordinatesToCellName(c.Col, c.Row)
		if err != nil {
			return err
		}
		if err := r.f.SetCellValue(name, ref, c.Value); err != nil {
			return err
		}
		id, err := r.styleFor(c)
		if err != nil {
			return err
		}
		if err := r.f.SetCellStyle(name, ref, ref, id); err != nil {
			return err
		}
	}
	for _, m := range b.Merges {
		from, _ := excelize.CoordinatesToCellName(m.FromCol, m.FromRow)
		to, _ := excelize.CoordinatesToCellName(m.ToCol, m.ToRow)
		if err := r.f.MergeCell(name, from, to); err != nil {
			return err
		}
	}
	last := sheets.ColumnName(sheets.TitleLastCol)
	return r.f.SetColWidth(name, "A", last, calendarColWidth)
}

func (r *renderer) data(h *core.History) error {
	name := sheets.DataSheet
	if _, err := r.f.NewSheet(name); err != nil {
		return err
	}
	for i, row := range sheets.DataRows(h) {
		ref, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := r.f.SetSheetRow(name, ref, &row); err != nil {
			return err
		}
	}
	last := sheets.ColumnName(len(sheets.DataHeader))
	return r.f.SetColWidth(name, "A", last, dataColWidth)
}

func (r *renderer) styleFor(c sheets.Cell) (int, error) {
	key := styleKey{kind: c.Kind, fill: r.style.CellFill(c)}
	if id, ok := r.ids[key]; ok {
		return id, nil
	}
	id, err := r.f.NewStyle(cellStyle(key))
	if err != nil {
		return 0, err
	}
	r.ids[key] = id
	return id, nil
}

func cellStyle(k styleKey) *excelize.Style {
	s := &excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}
	if k.fill != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#" + k.fill}}
	}
	switch k.kind {
	case sheets.KindTitle:
		s.Font = &excelize.Font{Bold: true, Size: 16}
	case sheets.KindHeader:
		s.Font = &excelize.Font{Bold: true, Color: "#FFFFFF"}
		s.Border = thinBorder()
	case sheets.KindDayNumber:
		s.Font = &excelize.Font{Bold: true}
		s.Border = thinBorder()
	case sheets.KindWorked, sheets.KindOvertime:
		s.Border = thinBorder()
	case sheets.KindTotalLabel, sheets.KindWorkedTotal, sheets.KindOvertimeTotal:
		s.Font = &excelize.Font{Bold: true}
		s.Alignment = nil
	}
	return s
}

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	out := make([]excelize.Border, len(sides))
	for i, side := range sides {
		out[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return out
}
