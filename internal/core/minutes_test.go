package core

import "testing"

func TestMinutesString(t *testing.T) {
	cases := []struct {
		in  Minutes
		out string
	}{
		{0, "00:00"},
		{510, "08:30"},
		{30, "00:30"},
		{7385, "123:05"},
		{-90, "-01:30"},
	}
	for _, tc := range cases {
		if got := tc.in.String(); got != tc.out {
			t.Fatalf("%d: expected %q, got %q", tc.in, tc.out, got)
		}
	}
}

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in  string
		out Minutes
		ok  bool
	}{
		{"08:30", 510, true},
		{" 00:00 ", 0, true},
		{"123:05", 7385, true},
		{"-1:30", -90, true},
		{"8:3", 0, false},
		{"08.30", 0, false},
		{"08:75", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseHHMM(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDecimalHours(t *testing.T) {
	cases := []struct {
		in  Minutes
		out string
	}{
		{510, "8.5"},
		{20, "0.33"},
		{0, "0"},
		{485, "8.08"},
	}
	for _, tc := range cases {
		if got := tc.in.DecimalHours().String(); got != tc.out {
			t.Fatalf("%d: expected %s, got %s", tc.in, tc.out, got)
		}
	}
}
