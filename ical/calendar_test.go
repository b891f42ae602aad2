package ical

import (
	"strings"
	"testing"
	"time"
)

const sampleCalendar = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//vcal test//EN\r\n" +
	"METHOD:publish\r\n" +
	"X-WR-CALNAME:team calendar\r\n" +
	"BEGIN:VTIMEZONE\r\n" +
	"TZID:Test/East\r\n" +
	"END:VTIMEZONE\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:event-1\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DTSTART;TZID=Test/East:20240101T120000\r\n" +
	"DTEND;TZID=Test/East:20240101T140000\r\n" +
	"SUMMARY:Planning\r\n" +
	"LOCATION:Room 1\r\n" +
	"X-ROOMID:128-132P\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VTODO\r\n" +
	"UID:todo-1\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"DUE:20240102T100000Z\r\n" +
	"SUMMARY:Write minutes\r\n" +
	"PRIORITY:3\r\n" +
	"CATEGORIES:work,notes\r\n" +
	"END:VTODO\r\n" +
	"END:VCALENDAR\r\n"

// Maps TZIDs to fixed offsets without touching the IANA database.
type fixedResolver map[string]int

func (r fixedResolver) Resolve(block *Container) (map[string]*time.Location, error) {
	line := block.Line("TZID")
	if line == nil {
		return nil, NewSchemaError("VTIMEZONE without TZID", nil)
	}
	offset, ok := r[line.Value]
	if !ok {
		return nil, NewParseError("unknown test TZID", map[string]any{"tzid": line.Value})
	}
	return map[string]*time.Location{
		line.Value: time.FixedZone(line.Value, offset),
	}, nil
}

func parseSample(t *testing.T) *Calendar {
	t.Helper()
	cal, err := FromStringWithResolver(sampleCalendar, fixedResolver{"Test/East": 2 * 60 * 60})
	if err != nil {
		t.Fatal(err)
	}
	return cal
}

func TestCalendarPopulate(t *testing.T) {
	cal := parseSample(t)

	if cal.Creator() != "-//vcal test//EN" {
		t.Errorf("creator: got %q", cal.Creator())
	}
	if cal.Version() != "2.0" {
		t.Errorf("version: got %q", cal.Version())
	}
	if cal.Scale() != "georgian" {
		t.Errorf("absent CALSCALE must default, got %q", cal.Scale())
	}
	if cal.Method() != "publish" {
		t.Errorf("method: got %q", cal.Method())
	}
	if _, ok := cal.Timezones()["Test/East"]; !ok {
		t.Error("timezone table missing the resolved TZID")
	}

	if cal.Events().Len() != 1 {
		t.Fatalf("events: got %d", cal.Events().Len())
	}
	event := cal.Events().Get(0)
	if event.UID() != "event-1" {
		t.Errorf("event uid: got %q", event.UID())
	}
	// 12:00 at +02:00 is 10:00 UTC
	if !event.Begin().Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("zoned begin: got %v", event.Begin())
	}
	if !event.End().Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("zoned end: got %v", event.End())
	}

	if cal.Todos().Len() != 1 {
		t.Fatalf("todos: got %d", cal.Todos().Len())
	}
	todo := cal.Todos().Get(0)
	if todo.Priority() != 3 {
		t.Errorf("priority: got %d", todo.Priority())
	}
	if categories := todo.Categories(); len(categories) != 2 || categories[0] != "work" {
		t.Errorf("categories: got %v", categories)
	}
}

func TestCalendarUnusedRoundTrip(t *testing.T) {
	cal := parseSample(t)

	if cal.unused.Line("X-WR-CALNAME") == nil {
		t.Fatal("unrecognized calendar property not retained")
	}
	event := cal.Events().Get(0)
	if event.unused.Line("X-ROOMID") == nil {
		t.Fatal("unrecognized event property not retained")
	}

	serialized := cal.ToIcal()
	if !strings.Contains(serialized, "X-WR-CALNAME:team calendar") {
		t.Error("unrecognized calendar property not re-emitted")
	}
	if !strings.Contains(serialized, "X-ROOMID:128-132P") {
		t.Error("unrecognized event property not re-emitted")
	}
}

func TestCalendarNameCollidingNodesRetained(t *testing.T) {
	text := "BEGIN:VCALENDAR\r\n" +
		"VERSION:2.0\r\n" +
		"PRODID:-//vcal test//EN\r\n" +
		"VEVENT:a line, not a component\r\n" +
		"BEGIN:VEVENT\r\n" +
		"UID:event-1\r\n" +
		"DTSTAMP:20240101T000000Z\r\n" +
		"DTSTART:20240101T120000Z\r\n" +
		"SUMMARY:Planning\r\n" +
		"BEGIN:SUMMARY\r\n" +
		"X-NOTE:odd but well-formed\r\n" +
		"END:SUMMARY\r\n" +
		"END:VEVENT\r\n" +
		"END:VCALENDAR\r\n"

	cal, err := FromString(text)
	if err != nil {
		t.Fatal(err)
	}

	// the content line still feeds the declared property
	if cal.Events().Len() != 1 || cal.Events().Get(0).Name() != "Planning" {
		t.Fatal("SUMMARY line not extracted next to the colliding container")
	}

	// nodes of the wrong type are retained, not claimed and dropped
	serialized := cal.ToIcal()
	if !strings.Contains(serialized, "BEGIN:SUMMARY") {
		t.Error("container named after a property must survive the round trip")
	}
	if !strings.Contains(serialized, "X-NOTE:odd but well-formed") {
		t.Error("contents of the retained container must survive the round trip")
	}
	if !strings.Contains(serialized, "VEVENT:a line") {
		t.Error("content line named after a component must survive the round trip")
	}
}

func TestCalendarSerializeReparse(t *testing.T) {
	cal := parseSample(t)

	reparsed, err := FromString(cal.ToIcal())
	if err != nil {
		t.Fatal(err)
	}
	if !cal.Equal(reparsed) {
		t.Error("serialize/reparse must preserve calendar equality")
	}
}

func TestCalendarMissingRequiredProperty(t *testing.T) {
	noVersion := strings.ReplaceAll(sampleCalendar, "VERSION:2.0\r\n", "")
	if _, err := FromString(noVersion); !IsKind(err, KindSchema) {
		t.Errorf("missing VERSION: expected a schema error, got %v", err)
	}

	noProdID := strings.ReplaceAll(sampleCalendar, "PRODID:-//vcal test//EN\r\n", "")
	if _, err := FromString(noProdID); !IsKind(err, KindSchema) {
		t.Errorf("missing PRODID: expected a schema error, got %v", err)
	}
}

func TestCalendarSingleTopLevel(t *testing.T) {
	doubled := sampleCalendar + sampleCalendar
	if _, err := FromStringWithResolver(doubled, fixedResolver{"Test/East": 2 * 60 * 60}); !IsKind(err, KindSchema) {
		t.Errorf("two calendars: expected a schema error, got %v", err)
	}
}

func TestCalendarEndDurationConflict(t *testing.T) {
	conflicting := strings.Replace(sampleCalendar,
		"DTEND;TZID=Test/East:20240101T140000\r\n",
		"DTEND;TZID=Test/East:20240101T140000\r\nDURATION:PT1H\r\n", 1)
	if _, err := FromStringWithResolver(conflicting, fixedResolver{"Test/East": 2 * 60 * 60}); !IsKind(err, KindValidation) {
		t.Errorf("DTEND+DURATION: expected a validation error, got %v", err)
	}
}

func TestCalendarMerge(t *testing.T) {
	left := NewCalendar()
	shared := NewEvent().SetUID("shared").SetName("left wins")
	left.AddEvent(shared)
	left.AddTodo(NewTodo().SetUID("todo-left"))

	right := NewCalendar()
	right.AddEvent(NewEvent().SetUID("shared").SetName("right loses"))
	right.AddEvent(NewEvent().SetUID("only-right"))
	right.AddTodo(NewTodo().SetUID("todo-right"))

	merged := left.Merge(right)
	if merged.Events().Len() != 2 {
		t.Errorf("merged events: got %d", merged.Events().Len())
	}
	if merged.Events().Get(0).Name() != "left wins" {
		t.Error("merge must favor the receiver's duplicate")
	}
	if merged.Todos().Len() != 2 {
		t.Errorf("merged todos: got %d", merged.Todos().Len())
	}
}

func TestCalendarCloneIndependence(t *testing.T) {
	cal := parseSample(t)
	clone := cal.Clone()

	if !cal.Equal(clone) {
		t.Fatal("clone must equal its source")
	}

	clone.Events().Get(0).SetName("mutated")
	clone.unused.AppendLine("X-ADDED", "only in clone")
	clone.SetMethod("request")

	if cal.Events().Get(0).Name() != "Planning" {
		t.Error("mutating the clone's events changed the source")
	}
	if cal.unused.Line("X-ADDED") != nil {
		t.Error("the clone shares its unused container with the source")
	}
	if cal.Method() != "publish" {
		t.Error("mutating the clone's scalars changed the source")
	}
}

func TestCalendarLines(t *testing.T) {
	cal := parseSample(t)
	lines := cal.Lines()
	if len(lines) == 0 {
		t.Fatal("no lines")
	}
	if lines[0] != "BEGIN:VCALENDAR\r\n" {
		t.Errorf("first line: %q", lines[0])
	}
	if lines[len(lines)-1] != "END:VCALENDAR\r\n" {
		t.Errorf("last line: %q", lines[len(lines)-1])
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "\r\n") {
			t.Errorf("line without CRLF: %q", line)
		}
	}
}

func TestCalendarDefaultProdID(t *testing.T) {
	cal := NewCalendar()
	serialized := cal.ToIcal()
	if !strings.Contains(serialized, "PRODID:"+defaultProdID) {
		t.Error("empty creator must fall back to the default PRODID")
	}
	if !strings.Contains(serialized, "VERSION:2.0") {
		t.Error("VERSION must always be emitted")
	}
}
