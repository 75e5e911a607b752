package core

import (
	"strconv"
	"strings"
)

// DoneToken ends a day's entry session. It is matched case-insensitively.
const DoneToken = "done"

// Token is the result of parsing one raw console entry: either a time or the
// end-of-entries signal.
type Token struct {
	Time TimeOfDay
	Done bool
}

// ParseToken converts a raw entry into a Token.
//
// Accepted forms are "HH.MM" (hour may be a single digit, minutes always two
// digits) and the terminator "done" in any case. Surrounding whitespace is
// ignored. Anything else fails with *ParseError.
//
// Examples:
//
//	ParseToken("08.42") -> {Time: 08:42}
//	ParseToken(" 7.05 ") -> {Time: 07:05}
//	ParseToken("DONE") -> {Done: true}
//	ParseToken("24.00") -> *ParseError
func ParseToken(raw string) (Token, error) {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, DoneToken) {
		return Token{Done: true}, nil
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return Token{}, err
	}
	return Token{Time: t}, nil
}

// ParseTimeOfDay parses an "HH.MM" value without the terminator handling.
func ParseTimeOfDay(raw string) (TimeOfDay, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return TimeOfDay{}, &ParseError{Token: raw, Reason: "empty entry"}
	}
	hh, mm, ok := strings.Cut(s, ".")
	if !ok {
		return TimeOfDay{}, &ParseError{Token: raw, Reason: "missing '.' separator, use HH.MM"}
	}
	if len(hh) < 1 || len(hh) > 2 || !digits(hh) {
		return TimeOfDay{}, &ParseError{Token: raw, Reason: "hour must be one or two digits"}
	}
	if len(mm) != 2 || !digits(mm) {
		return TimeOfDay{}, &ParseError{Token: raw, Reason: "minute must be two digits"}
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	t, err := NewTimeOfDay(h, m)
	if err != nil {
		return TimeOfDay{}, &ParseError{Token: raw, Reason: err.Error()}
	}
	return t, nil
}

// ParsePunches parses space separated time tokens as stored alongside a day
// record, assigning ordinals in order.
func ParsePunches(s string) ([]Punch, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, nil
	}
	punches := make([]Punch, 0, len(fields))
	for i, f := range fields {
		t, err := ParseTimeOfDay(f)
		if err != nil {
			return nil, err
		}
		punches = append(punches, Punch{Time: t, Ordinal: i + 1})
	}
	return punches, nil
}
