package ical

import (
	"strings"
	"testing"
)

func TestParseSimpleCalendar(t *testing.T) {
	text := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:test",
		"BEGIN:VEVENT",
		"SUMMARY:Standup",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	containers, err := ParseString(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(containers) != 1 {
		t.Fatalf("expected 1 top-level container, got %d", len(containers))
	}
	root := containers[0]
	if root.Name != "VCALENDAR" {
		t.Errorf("expected VCALENDAR, got %s", root.Name)
	}
	if root.Len() != 3 {
		t.Fatalf("expected 3 children, got %d", root.Len())
	}
	if line := root.Line("VERSION"); line == nil || line.Value != "2.0" {
		t.Errorf("VERSION not parsed: %+v", line)
	}
	events := root.Containers("VEVENT")
	if len(events) != 1 {
		t.Fatalf("expected 1 VEVENT, got %d", len(events))
	}
	if line := events[0].Line("SUMMARY"); line == nil || line.Value != "Standup" {
		t.Errorf("SUMMARY not parsed: %+v", line)
	}
}

func TestParseUnfolding(t *testing.T) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:test",
		"BEGIN:VEVENT",
		"SUMMARY:This summary is spread over",
		"  several physical lines and",
		"\tcontinues with a tab",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	containers, err := ParseLines(lines)
	if err != nil {
		t.Fatal(err)
	}
	summary := containers[0].Containers("VEVENT")[0].Line("SUMMARY")
	want := "This summary is spread over several physical lines and continues with a tab"
	if summary == nil || summary.Value != want {
		t.Errorf("unfolding failed: got %q", summary.Value)
	}
}

func TestParseParameters(t *testing.T) {
	line, err := parseContentLine(`DTSTART;TZID=Europe/Paris;X-LIST=a,b,"c:d":20240101T100000`)
	if err != nil {
		t.Fatal(err)
	}
	if line.Name != "DTSTART" {
		t.Errorf("name: got %s", line.Name)
	}
	if line.Value != "20240101T100000" {
		t.Errorf("value: got %s", line.Value)
	}
	if tzid := line.ParamValue("tzid"); tzid != "Europe/Paris" {
		t.Errorf("TZID lookup should be case-insensitive, got %q", tzid)
	}
	values, ok := line.Param("X-LIST")
	if !ok || len(values) != 3 {
		t.Fatalf("X-LIST values: %v", values)
	}
	if values[2] != "c:d" {
		t.Errorf("quoted param value mangled: %q", values[2])
	}
}

func TestParseEscapedValue(t *testing.T) {
	line, err := parseContentLine(`DESCRIPTION:line one\nline two\, with comma\; and semicolon\\`)
	if err != nil {
		t.Fatal(err)
	}
	want := "line one\nline two, with comma; and semicolon\\"
	if line.Value != want {
		t.Errorf("unescape: got %q, want %q", line.Value, want)
	}
}

func TestParseStructuralErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"unterminated", "BEGIN:VCALENDAR\r\nVERSION:2.0"},
		{"mismatched end", "BEGIN:VCALENDAR\r\nEND:VEVENT"},
		{"end without begin", "END:VCALENDAR"},
		{"stray line", "VERSION:2.0"},
		{"no colon", "BEGIN:VCALENDAR\r\nJUNKLINE\r\nEND:VCALENDAR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseString(tc.text); !IsKind(err, KindStructural) {
				t.Errorf("expected a structural error, got %v", err)
			}
		})
	}
}

func TestSerializeFoldsLongLines(t *testing.T) {
	container := NewContainer("VCALENDAR")
	container.AppendLine("DESCRIPTION", strings.Repeat("word ", 60))

	serialized := Serialize(container)
	for _, physical := range strings.Split(serialized, "\r\n") {
		if len(physical) > foldWidth {
			t.Errorf("physical line exceeds %d octets: %q", foldWidth, physical)
		}
	}

	reparsed, err := ParseString(serialized)
	if err != nil {
		t.Fatal(err)
	}
	if !container.Equal(reparsed[0]) {
		t.Error("folding broke the round trip")
	}
}

func TestSerializeFoldsOnRuneBoundaries(t *testing.T) {
	container := NewContainer("VCALENDAR")
	container.AppendLine("DESCRIPTION", strings.Repeat("é", 100))

	serialized := Serialize(container)
	for _, physical := range strings.Split(serialized, "\r\n") {
		if len(physical) > foldWidth {
			t.Errorf("physical line exceeds %d octets: %q", foldWidth, physical)
		}
	}
	reparsed, err := ParseString(serialized)
	if err != nil {
		t.Fatal(err)
	}
	if !container.Equal(reparsed[0]) {
		t.Error("multi-byte folding broke the round trip")
	}
}

func TestRoundTrip(t *testing.T) {
	text := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"X-WR-CALNAME:team calendar",
		"BEGIN:VEVENT",
		"UID:roundtrip-1",
		"DTSTART:20240101T100000Z",
		"DTEND:20240101T110000Z",
		"SUMMARY:Planning\\, part one",
		"X-CUSTOM;ROLE=chair:kept verbatim",
		"BEGIN:VALARM",
		"TRIGGER:-PT5M",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	first, err := ParseString(text)
	if err != nil {
		t.Fatal(err)
	}
	second, err := ParseString(Serialize(first[0]))
	if err != nil {
		t.Fatal(err)
	}
	if !first[0].Equal(second[0]) {
		t.Error("parse(serialize(container)) differs from container")
	}
}

func TestContainerCloneIndependence(t *testing.T) {
	container := NewContainer("VCALENDAR")
	container.AppendLine("PRODID", "original")
	nested := NewContainer("VEVENT")
	nested.AppendLine("SUMMARY", "nested")
	container.Append(nested)

	clone := container.Clone()
	if !container.Equal(clone) {
		t.Fatal("clone should equal its source")
	}

	nested.Items[0].(*ContentLine).Value = "mutated"
	if clone.Containers("VEVENT")[0].Line("SUMMARY").Value != "nested" {
		t.Error("mutating the source leaked into the clone")
	}
}
