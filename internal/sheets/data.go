package sheets

import (
	"fmt"
	"strings"
	"time"

	"ore/internal/core"
)

// DataSheet is the name of the flat table every store keeps next to the calendar blocks.
const DataSheet = "Data"

const (
	ColDate          = "Date"
	ColHoursWorked   = "Hours Worked"
	ColExtraHours    = "Extra Hours"
	ColDayType       = "Day Type"
	ColPunches       = "Punches"
	ColWorkedDecimal = "Worked (h)"
	ColExtraDecimal  = "Extra (h)"
)

// DataHeader is the header row of the Data table. Only the first three
// columns are required when reading.
var DataHeader = []string{ColDate, ColHoursWorked, ColExtraHours, ColDayType, ColPunches, ColWorkedDecimal, ColExtraDecimal}

// DataRows flattens the history into Data table rows, header first.
func DataRows(h *core.History) [][]any {
	rows := [][]any{toAny(DataHeader)}
	for _, r := range h.Records() {
		rows = append(rows, []any{
			r.Date.String(),
			r.Worked.String(),
			r.Overtime.String(),
			string(r.Type),
			r.PunchTokens(),
			r.Worked.DecimalHours().InexactFloat64(),
			r.Overtime.DecimalHours().InexactFloat64(),
		})
	}
	return rows
}

// ParseDataRows rebuilds a history from a Data table (header first).
//
// An empty table is an empty history. A table without the Date, Hours Worked
// and Extra Hours headers, or with a row that cannot be read, is an error; the
// caller reports it as corrupt. Negative extra hours written by older versions
// are clamped to zero.
func ParseDataRows(values [][]string) (*core.History, error) {
	h := core.NewHistory()
	if len(values) == 0 {
		return h, nil
	}
	headers := values[0]
	colDate := indexOf(headers, ColDate)
	colWorked := indexOf(headers, ColHoursWorked)
	colExtra := indexOf(headers, ColExtraHours)
	colPunches := indexOf(headers, ColPunches)
	if colDate == -1 || colWorked == -1 || colExtra == -1 {
		missing := make([]string, 0, 3)
		if colDate == -1 {
			missing = append(missing, ColDate)
		}
		if colWorked == -1 {
			missing = append(missing, ColHoursWorked)
		}
		if colExtra == -1 {
			missing = append(missing, ColExtraHours)
		}
		return nil, fmt.Errorf("unexpected data header: missing %s; got headers=%v", strings.Join(missing, ","), headers)
	}

	for i := 1; i < len(values); i++ {
		row := values[i]
		if blank(row) {
			continue
		}
		date, err := parseStoredDate(safeGet(row, colDate))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		worked, err := core.ParseHHMM(safeGet(row, colWorked))
		if err != nil {
			return nil, fmt.Errorf("row %d: hours worked: %w", i+1, err)
		}
		extra, err := core.ParseHHMM(safeGet(row, colExtra))
		if err != nil {
			return nil, fmt.Errorf("row %d: extra hours: %w", i+1, err)
		}
		var punches []core.Punch
		if colPunches != -1 {
			punches, err = core.ParsePunches(safeGet(row, colPunches))
			if err != nil {
				return nil, fmt.Errorf("row %d: punches: %w", i+1, err)
			}
		}
		rec := core.DayRecord{
			Date:     date,
			Punches:  punches,
			Worked:   worked.Max(0),
			Overtime: extra.Max(0),
			Type:     date.Type(),
		}
		if err := h.Upsert(rec); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return h, nil
}

// parseStoredDate accepts the plain date form and the datetime form that
// spreadsheet tools produce when a date column is re-typed.
func parseStoredDate(s string) (core.Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{core.DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return core.DateOf(t), nil
		}
	}
	return core.Date{}, fmt.Errorf("invalid date %q", s)
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// ToStrings flattens a row of arbitrary cell values to trimmed text.
func ToStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
