package google

import (
	gsheet "google.golang.org/api/sheets/v4"

	"ore/internal/core"
	ports "ore/internal/sheets"
)

const formatFields = "userEnteredFormat(backgroundColor,textFormat,horizontalAlignment)"

// parseDataValues reads the Data tab as returned by the values API.
func parseDataValues(values [][]interface{}) (*core.History, error) {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = ports.ToStrings(row)
	}
	return ports.ParseDataRows(rows)
}

// blockValues turns a laid out block into the dense matrix written from A1.
func blockValues(b ports.Block) [][]interface{} {
	rows, cols := b.TotalRow, ports.TitleLastCol
	for _, c := range b.Cells {
		if c.Row > rows {
			rows = c.Row
		}
		if c.Col > cols {
			cols = c.Col
		}
	}
	out := make([][]interface{}, rows)
	for i := range out {
		out[i] = make([]interface{}, cols)
		for j := range out[i] {
			out[i][j] = ""
		}
	}
	for _, c := range b.Cells {
		out[c.Row-1][c.Col-1] = c.Value
	}
	return out
}

// resetRequests drops merges and formatting left by a previous render.
func resetRequests(sheetID int64) []*gsheet.Request {
	whole := sheetRange(sheetID)
	return []*gsheet.Request{
		{UnmergeCells: &gsheet.UnmergeCellsRequest{Range: whole}},
		{RepeatCell: &gsheet.RepeatCellRequest{
			Range:  whole,
			Cell:   &gsheet.CellData{UserEnteredFormat: &gsheet.CellFormat{}},
			Fields: "userEnteredFormat",
		}},
	}
}

// formatRequests colours every cell of the block and applies its merges.
func formatRequests(b ports.Block, sheetID int64, style ports.Style) []*gsheet.Request {
	reqs := make([]*gsheet.Request, 0, len(b.Cells)+len(b.Merges))
	for _, c := range b.Cells {
		reqs = append(reqs, &gsheet.Request{RepeatCell: &gsheet.RepeatCellRequest{
			Range:  cellRange(sheetID, c.Row, c.Col, c.Row, c.Col),
			Cell:   &gsheet.CellData{UserEnteredFormat: cellFormat(c, style)},
			Fields: formatFields,
		}})
	}
	for _, m := range b.Merges {
		reqs = append(reqs, &gsheet.Request{MergeCells: &gsheet.MergeCellsRequest{
			Range:     cellRange(sheetID, m.FromRow, m.FromCol, m.ToRow, m.ToCol),
			MergeType: "MERGE_ALL",
		}})
	}
	return reqs
}

func cellFormat(c ports.Cell, style ports.Style) *gsheet.CellFormat {
	f := &gsheet.CellFormat{HorizontalAlignment: "CENTER"}
	if fill := style.CellFill(c); fill != "" {
		f.BackgroundColor = color(fill)
	}
	switch c.Kind {
	case ports.KindTitle:
		f.TextFormat = &gsheet.TextFormat{Bold: true, FontSize: 16}
	case ports.KindHeader:
		f.TextFormat = &gsheet.TextFormat{Bold: true, ForegroundColor: &gsheet.Color{Red: 1, Green: 1, Blue: 1}}
	case ports.KindDayNumber:
		f.TextFormat = &gsheet.TextFormat{Bold: true}
	case ports.KindTotalLabel, ports.KindWorkedTotal, ports.KindOvertimeTotal:
		f.TextFormat = &gsheet.TextFormat{Bold: true}
		f.HorizontalAlignment = "LEFT"
	}
	return f
}

// color converts an RRGGBB hex string; invalid input falls back to white.
func color(hex string) *gsheet.Color {
	r, g, b, err := ports.RGB(hex)
	if err != nil {
		return &gsheet.Color{Red: 1, Green: 1, Blue: 1}
	}
	return &gsheet.Color{
		Red:   float64(r) / 255,
		Green: float64(g) / 255,
		Blue:  float64(b) / 255,
	}
}

// sheetRange covers a whole tab. SheetId 0 is a valid id, so it is always sent.
func sheetRange(sheetID int64) *gsheet.GridRange {
	return &gsheet.GridRange{SheetId: sheetID, ForceSendFields: []string{"SheetId"}}
}

// cellRange converts a 1-based inclusive rectangle to a half-open grid range.
func cellRange(sheetID int64, fromRow, fromCol, toRow, toCol int) *gsheet.GridRange {
	return &gsheet.GridRange{
		SheetId:          sheetID,
		StartRowIndex:    int64(fromRow - 1),
		EndRowIndex:      int64(toRow),
		StartColumnIndex: int64(fromCol - 1),
		EndColumnIndex:   int64(toCol),
		ForceSendFields:  []string{"SheetId", "StartRowIndex", "StartColumnIndex"},
	}
}
