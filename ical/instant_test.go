package ical

import (
	"testing"
	"time"
)

func TestParseInstantLineUTC(t *testing.T) {
	line := NewContentLine("DTSTART", "20240101T100000Z")
	instant, precision, err := parseInstantLine(line, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Errorf("got %v, want %v", instant, want)
	}
	if precision != PrecisionSecond {
		t.Errorf("expected second precision")
	}
}

func TestParseInstantLineDateOnly(t *testing.T) {
	line := NewContentLine("DTSTART", "20240101")
	line.AddParam("VALUE", "DATE")
	instant, precision, err := parseInstantLine(line, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Errorf("got %v, want %v", instant, want)
	}
	if precision != PrecisionDay {
		t.Errorf("expected day precision")
	}
}

func TestParseInstantLineZoned(t *testing.T) {
	zone := time.FixedZone("Test/East", 2*60*60)
	line := NewContentLine("DTSTART", "20240101T120000")
	line.AddParam("TZID", "Test/East")

	instant, _, err := parseInstantLine(line, map[string]*time.Location{"Test/East": zone})
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !instant.Equal(want) {
		t.Errorf("got %v, want %v", instant, want)
	}
}

func TestParseInstantLineErrors(t *testing.T) {
	for _, value := range []string{"", "not-a-date", "20241301T000000Z", "99999999"} {
		line := NewContentLine("DTSTART", value)
		if _, _, err := parseInstantLine(line, nil); !IsKind(err, KindParse) {
			t.Errorf("value %q: expected a parse error, got %v", value, err)
		}
	}
}

func TestParseInstantString(t *testing.T) {
	instant, err := ParseInstant("2024-01-01T10:00:00Z")
	if err != nil {
		t.Fatal(err)
	}
	if !instant.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("got %v", instant)
	}
	if _, err := ParseInstant("tuesday-ish"); !IsKind(err, KindParse) {
		t.Errorf("expected a parse error, got %v", err)
	}
}

func TestParseICalDuration(t *testing.T) {
	cases := []struct {
		value string
		want  time.Duration
	}{
		{"PT15M", 15 * time.Minute},
		{"P1DT2H3M4S", 26*time.Hour + 3*time.Minute + 4*time.Second},
		{"P2W", 14 * 24 * time.Hour},
		{"-PT5S", -5 * time.Second},
		{"P1D", 24 * time.Hour},
	}
	for _, tc := range cases {
		got, err := ParseICalDuration(tc.value)
		if err != nil {
			t.Errorf("%s: %v", tc.value, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.value, got, tc.want)
		}
	}

	for _, value := range []string{"", "P", "15M", "P1X", "PT", "P1"} {
		if _, err := ParseICalDuration(value); !IsKind(err, KindParse) {
			t.Errorf("%q: expected a parse error, got %v", value, err)
		}
	}
}

func TestFormatICalDuration(t *testing.T) {
	cases := []struct {
		value time.Duration
		want  string
	}{
		{15 * time.Minute, "PT15M"},
		{26*time.Hour + 3*time.Minute + 4*time.Second, "P1DT2H3M4S"},
		{24 * time.Hour, "P1D"},
		{-5 * time.Second, "-PT5S"},
		{0, "PT0S"},
	}
	for _, tc := range cases {
		if got := FormatICalDuration(tc.value); got != tc.want {
			t.Errorf("%v: got %s, want %s", tc.value, got, tc.want)
		}
	}
}

func TestShiftApply(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	shifted := Shift{Weeks: 1, Days: 2, Hours: 3, Minutes: 4, Seconds: 5}.Apply(base)
	want := time.Date(2024, 1, 10, 13, 4, 5, 0, time.UTC)
	if !shifted.Equal(want) {
		t.Errorf("got %v, want %v", shifted, want)
	}
}
