package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"ore/internal/core"
)

// Style is the colour policy of a rendered report. Colours are 6-digit RGB hex
// strings without the leading '#'.
type Style struct {
	Weekday      string
	Weekend      string
	MonthlyTotal string
	Overtime     string
	Header       string
}

// DefaultStyle returns the report's stock palette.
func DefaultStyle() Style {
	return Style{
		Weekday:      "E6F3FF",
		Weekend:      "FFE6E6",
		MonthlyTotal: "90EE90",
		Overtime:     "FFD700",
		Header:       "366092",
	}
}

// CellFill returns the background colour for a laid out cell, or "" for none.
func (s Style) CellFill(c Cell) string {
	switch c.Kind {
	case KindHeader:
		return s.Header
	case KindWorkedTotal:
		return s.MonthlyTotal
	case KindOvertimeTotal:
		return s.Overtime
	case KindOvertime:
		if c.Highlight {
			return s.Overtime
		}
	case KindDayNumber, KindWorked:
	default:
		return ""
	}
	if c.DayType == core.Weekend {
		return s.Weekend
	}
	return s.Weekday
}

// WithOverrides replaces every non-empty override colour.
func (s Style) WithOverrides(o Style) Style {
	pick := func(cur, over string) string {
		if strings.TrimSpace(over) != "" {
			return normalizeHex(over)
		}
		return cur
	}
	return Style{
		Weekday:      pick(s.Weekday, o.Weekday),
		Weekend:      pick(s.Weekend, o.Weekend),
		MonthlyTotal: pick(s.MonthlyTotal, o.MonthlyTotal),
		Overtime:     pick(s.Overtime, o.Overtime),
		Header:       pick(s.Header, o.Header),
	}
}

func (s Style) Validate() error {
	for name, c := range map[string]string{
		"weekday":       s.Weekday,
		"weekend":       s.Weekend,
		"monthly total": s.MonthlyTotal,
		"overtime":      s.Overtime,
		"header":        s.Header,
	} {
		if _, _, _, err := RGB(c); err != nil {
			return fmt.Errorf("%s colour: %w", name, err)
		}
	}
	return nil
}

// RGB splits a hex colour into its 0-255 components.
func RGB(hex string) (r, g, b uint8, err error) {
	hex = normalizeHex(hex)
	if len(hex) != 6 {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: want RRGGBB", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

func normalizeHex(s string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(s), "#"))
}
