package services

import "ore/internal/core"

// Feedback describes an accepted token: a punch with its clock-in/clock-out
// classification, or the terminator.
type Feedback struct {
	Punch core.Punch
	Done  bool
}

// EntrySession collects the punches of one day token by token.
type EntrySession struct {
	punches []core.Punch
	done    bool
}

func NewEntrySession() *EntrySession {
	return &EntrySession{}
}

// Feed parses one raw token. A *core.ParseError leaves the session unchanged
// so the caller can prompt for the same entry again. Tokens after the
// terminator are ignored.
func (s *EntrySession) Feed(raw string) (Feedback, error) {
	if s.done {
		return Feedback{Done: true}, nil
	}
	tok, err := core.ParseToken(raw)
	if err != nil {
		return Feedback{}, err
	}
	if tok.Done {
		s.done = true
		return Feedback{Done: true}, nil
	}
	p := core.Punch{Time: tok.Time, Ordinal: len(s.punches) + 1}
	s.punches = append(s.punches, p)
	return Feedback{Punch: p}, nil
}

// Next is the ordinal the next accepted punch will get.
func (s *EntrySession) Next() int {
	return len(s.punches) + 1
}

func (s *EntrySession) Done() bool {
	return s.done
}

// Punches returns the accepted punches in entry order.
func (s *EntrySession) Punches() []core.Punch {
	out := make([]core.Punch, len(s.punches))
	copy(out, s.punches)
	return out
}

func (s *EntrySession) Reset() {
	s.punches = nil
	s.done = false
}
