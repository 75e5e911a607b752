// Package core provides duration handling for worked hours.
//
// This file contains the Minutes type used for every worked/overtime figure
// and the conversions between minutes, "HH:MM" strings and decimal hours.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Minutes is a duration with minute precision.
type Minutes int64

// Hours builds a Minutes value from whole hours.
func Hours(h int) Minutes {
	return Minutes(h * 60)
}

// String formats the duration as HH:MM, e.g. 510 -> "08:30".
// Negative values keep a leading minus sign.
func (m Minutes) String() string {
	sign := ""
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}

// DecimalHours returns the duration in hours rounded to two places,
// e.g. 510 -> 8.5. Used for numeric spreadsheet columns.
func (m Minutes) DecimalHours() decimal.Decimal {
	return decimal.NewFromInt(int64(m)).Div(decimal.NewFromInt(60)).Round(2)
}

// Max returns the larger of m and o.
func (m Minutes) Max(o Minutes) Minutes {
	if m > o {
		return m
	}
	return o
}

// ParseHHMM parses a stored duration in HH:MM form.
//
// The hour part may exceed 23 (monthly totals) and may carry a leading minus.
// Examples:
//
//	ParseHHMM("08:30") -> 510, nil
//	ParseHHMM("123:05") -> 7385, nil
//	ParseHHMM("-1:30") -> -90, nil
func ParseHHMM(s string) (Minutes, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || hh == "" || len(mm) != 2 || !digits(hh) || !digits(mm) {
		return 0, fmt.Errorf("invalid duration %q: want HH:MM", s)
	}
	h, err := strconv.ParseInt(hh, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	m, _ := strconv.ParseInt(mm, 10, 64)
	if m > 59 {
		return 0, fmt.Errorf("invalid duration %q: minutes out of range", s)
	}
	total := Minutes(h*60 + m)
	if neg {
		total = -total
	}
	return total, nil
}

func digits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
