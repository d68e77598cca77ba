package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1000", 100000, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{100000, "1000"},
		{150000, "1500"},
		{1234, "12.34"},
		{1205, "12.05"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).String(); got != tc.out {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

func TestMoneyJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 100000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "1000" {
		t.Fatalf("expected 1000, got %s", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("12.34"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Cents != 1234 {
		t.Fatalf("expected 1234 cents, got %d", m.Cents)
	}

	// Zero round-trips (aggregated cross-tab cells can be zero)
	if err := json.Unmarshal([]byte("0"), &m); err != nil || m.Cents != 0 {
		t.Fatalf("expected zero accepted, got cents=%d err=%v", m.Cents, err)
	}

	if err := json.Unmarshal([]byte("-5"), &m); err == nil {
		t.Fatalf("expected error for negative amount")
	}
}
