// The `ical` package parses and serializes iCalendar (RFC 5545) text.
//
// # References:
// - RFC5545: https://datatracker.ietf.org/doc/html/rfc5545
//
// # Notes:
// - Parsing is lossless: properties without a declared extractor are kept
//   verbatim in the owning component's unused container and re-emitted on
//   serialization.
// - VTIMEZONE blocks are handed to a TimezoneResolver; the codec only
//   consumes the resulting TZID -> *time.Location table. All stored
//   instants are UTC.
//
// # Example usage:
//
// Parse from a string
//	calendar, _ := ical.FromString(text)
//
// Parse from a file
//	calendar, _ := ical.FromFile("path/to/input/calendar.ics")
//
// Parse from an URL
//	calendar, _ := ical.FromURL("https://example.com/calendar.ics")
//
// Marshal to a string -> file
//	output := calendar.ToIcal()
//	_ = os.WriteFile("path/to/output/calendar.ics", []byte(output), 0644)
//
// Create a new Calendar struct
//	calendar := ical.NewCalendar()
package ical

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// PRODID emitted for calendars whose creator was never set.
const defaultProdID = "vcal - an RFC 5545 codec for Go"

// The main struct of the package: one VCALENDAR document.
type Calendar struct {
	timezones map[string]*time.Location
	events    *EventList
	todos     *TodoList

	creator string
	version string
	scale   string
	method  string

	unused *Container
}

// Initialize an empty Calendar{} struct.
func NewCalendar() *Calendar {
	return &Calendar{
		timezones: make(map[string]*time.Location),
		events:    NewEventList(),
		todos:     NewTodoList(),
		unused:    NewContainer("VCALENDAR"),
	}
}

// Unmarshal iCalendar text into a Calendar{} struct using the default
// timezone resolver. The text must hold exactly one top-level calendar.
func FromString(text string) (*Calendar, error) {
	return FromStringWithResolver(text, nil)
}

// Same as FromString with an explicit VTIMEZONE resolver.
func FromStringWithResolver(text string, resolver TimezoneResolver) (*Calendar, error) {
	containers, err := ParseString(text)
	if err != nil {
		return nil, err
	}
	return fromContainers(containers, resolver)
}

// Unmarshal pre-split physical lines into a Calendar{} struct.
func FromLines(lines []string) (*Calendar, error) {
	containers, err := ParseLines(lines)
	if err != nil {
		return nil, err
	}
	return fromContainers(containers, nil)
}

// Unmarshal an iCalendar file into a Calendar{} struct.
func FromFile(path string) (*Calendar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("FromFile: can't open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("FromFile: can't read %s: %w", path, err)
	}
	return FromLines(lines)
}

// Unmarshal an iCalendar URL into a Calendar{} struct.
func FromURL(rawURL string) (*Calendar, error) {
	validURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return nil, fmt.Errorf("FromURL: can't parse URL %s: %w", rawURL, err)
	}

	resp, err := http.Get(validURL.String())
	if err != nil {
		return nil, fmt.Errorf("FromURL: can't fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FromURL: %s answered %s", rawURL, resp.Status)
	}

	var lines []string
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("FromURL: can't read %s: %w", rawURL, err)
	}
	return FromLines(lines)
}

func fromContainers(containers []*Container, resolver TimezoneResolver) (*Calendar, error) {
	if len(containers) != 1 {
		return nil, NewSchemaError("expecting exactly one top-level calendar", map[string]any{
			"count": len(containers),
		})
	}
	root := containers[0]
	if !strings.EqualFold(root.Name, "VCALENDAR") {
		return nil, NewSchemaError("top-level container is not a VCALENDAR", map[string]any{
			"name": root.Name,
		})
	}

	cal := NewCalendar()
	ctx := newParseContext(resolver)
	if err := calendarSchema.populate(cal, root, ctx, cal.unused); err != nil {
		return nil, err
	}
	return cal, nil
}

// Get the calendar's events.
func (c *Calendar) Events() *EventList {
	return c.events
}

// Replace the calendar's events.
func (c *Calendar) SetEvents(events *EventList) {
	if events == nil {
		events = NewEventList()
	}
	c.events = events
}

// Get the calendar's todos.
func (c *Calendar) Todos() *TodoList {
	return c.todos
}

// Replace the calendar's todos.
func (c *Calendar) SetTodos(todos *TodoList) {
	if todos == nil {
		todos = NewTodoList()
	}
	c.todos = todos
}

// Append an event.
func (c *Calendar) AddEvent(event *Event) {
	c.events.Append(event)
}

// Append a todo.
func (c *Calendar) AddTodo(todo *Todo) {
	c.todos.Append(todo)
}

// Get the calendar creator (the PRODID property).
func (c *Calendar) Creator() string {
	return c.creator
}

// Set the calendar creator.
func (c *Calendar) SetCreator(creator string) {
	c.creator = creator
}

// Get the calendar version (the VERSION property).
func (c *Calendar) Version() string {
	return c.version
}

// Get the calendar scale (the CALSCALE property).
func (c *Calendar) Scale() string {
	return c.scale
}

// Set the calendar scale.
func (c *Calendar) SetScale(scale string) {
	c.scale = strings.ToLower(scale)
}

// Get the calendar method (the METHOD property).
func (c *Calendar) Method() string {
	return c.method
}

// Set the calendar method.
func (c *Calendar) SetMethod(method string) {
	c.method = strings.ToLower(method)
}

// The timezone table collected from the calendar's VTIMEZONE blocks,
// keyed by TZID. The returned map is a copy.
func (c *Calendar) Timezones() map[string]*time.Location {
	timezones := make(map[string]*time.Location, len(c.timezones))
	for tzid, location := range c.timezones {
		timezones[tzid] = location
	}
	return timezones
}

// Marshal the Calendar{} struct into an iCalendar string.
func (c *Calendar) ToIcal() string {
	return Serialize(calendarSchema.serialize(c, c.unused))
}

// The serialized calendar as logical lines, CRLF endings included. Suitable
// for writing to a stream line by line.
func (c *Calendar) Lines() []string {
	serialized := c.ToIcal()
	var lines []string
	for _, line := range strings.SplitAfter(serialized, "\r\n") {
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Marshal the calendar into a file.
func (c *Calendar) MarshalToFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("MarshalToFile: can't create %s: %w", path, err)
	}
	defer file.Close()

	if _, err := file.WriteString(c.ToIcal()); err != nil {
		return fmt.Errorf("MarshalToFile: can't write %s: %w", path, err)
	}
	return nil
}

// Structural equality: same events and todos (by identity, pairwise in
// order), same scalar properties, same unused lines.
func (c *Calendar) Equal(other *Calendar) bool {
	if c == nil || other == nil {
		return c == other
	}
	if c.events.Len() != other.events.Len() || c.todos.Len() != other.todos.Len() {
		return false
	}
	for i := 0; i < c.events.Len(); i++ {
		if !c.events.Get(i).Equal(other.events.Get(i)) {
			return false
		}
	}
	for i := 0; i < c.todos.Len(); i++ {
		if !c.todos.Get(i).Equal(other.todos.Get(i)) {
			return false
		}
	}
	if c.creator != other.creator || c.scale != other.scale || c.method != other.method {
		return false
	}
	return c.unused.Equal(other.unused)
}

// The union of two calendars: a new calendar holding both event lists and
// both todo lists, duplicates (by UID) discarded in favor of the receiver's.
func (c *Calendar) Merge(other *Calendar) *Calendar {
	merged := NewCalendar()
	merged.creator = c.creator
	merged.scale = c.scale
	merged.method = c.method
	merged.version = c.version
	for tzid, location := range c.timezones {
		merged.timezones[tzid] = location
	}
	if other != nil {
		for tzid, location := range other.timezones {
			if _, ok := merged.timezones[tzid]; !ok {
				merged.timezones[tzid] = location
			}
		}
		merged.events = c.events.Concat(other.events)
		merged.todos = c.todos.Concat(other.todos)
	} else {
		merged.events = c.events.Concat(nil)
		merged.todos = c.todos.Concat(nil)
	}
	return merged
}

// An exact deep copy of the calendar. Mutating the clone, its lists, or its
// unused lines never affects the source.
func (c *Calendar) Clone() *Calendar {
	clone := NewCalendar()
	clone.creator = c.creator
	clone.version = c.version
	clone.scale = c.scale
	clone.method = c.method
	for tzid, location := range c.timezones {
		clone.timezones[tzid] = location
	}
	clone.events = c.events.Clone()
	clone.todos = c.todos.Clone()
	clone.unused = c.unused.Clone()
	return clone
}

var calendarSchema = &schema[*Calendar]{
	typeName: "VCALENDAR",
	extractors: []extractorRule[*Calendar]{
		{name: "PRODID", required: true, extract: singleLine(func(c *Calendar, _ *parseContext, line *ContentLine) error {
			if line == nil {
				return NewSchemaError("PRODID must be a content line", nil)
			}
			c.creator = line.Value
			return nil
		})},
		{name: "VERSION", required: true, extract: singleLine(func(c *Calendar, _ *parseContext, line *ContentLine) error {
			if line == nil {
				return NewSchemaError("VERSION must be a content line", nil)
			}
			// a "minver;maxver" pair keeps its max version
			if _, maxVersion, found := strings.Cut(line.Value, ";"); found {
				c.version = maxVersion
				return nil
			}
			c.version = line.Value
			return nil
		})},
		{name: "CALSCALE", extract: singleLine(func(c *Calendar, _ *parseContext, line *ContentLine) error {
			if line == nil {
				c.scale = "georgian"
				return nil
			}
			c.scale = strings.ToLower(line.Value)
			return nil
		})},
		{name: "METHOD", extract: singleLine(func(c *Calendar, _ *parseContext, line *ContentLine) error {
			if line != nil {
				c.method = strings.ToLower(line.Value)
			}
			return nil
		})},
		{name: "VTIMEZONE", multiple: true, container: true, extract: func(c *Calendar, ctx *parseContext, nodes []Node) error {
			for _, node := range nodes {
				block, ok := node.(*Container)
				if !ok {
					continue
				}
				resolved, err := ctx.resolver.Resolve(block)
				if err != nil {
					return err
				}
				for tzid, location := range resolved {
					ctx.timezones[tzid] = location
					c.timezones[tzid] = location
				}
			}
			return nil
		}},
		{name: "VEVENT", multiple: true, container: true, extract: func(c *Calendar, ctx *parseContext, nodes []Node) error {
			for _, node := range nodes {
				block, ok := node.(*Container)
				if !ok {
					continue
				}
				event, err := eventFromContainer(block, ctx)
				if err != nil {
					return err
				}
				c.events.Append(event)
			}
			return nil
		}},
		{name: "VTODO", multiple: true, container: true, extract: func(c *Calendar, ctx *parseContext, nodes []Node) error {
			for _, node := range nodes {
				block, ok := node.(*Container)
				if !ok {
					continue
				}
				todo, err := todoFromContainer(block, ctx)
				if err != nil {
					return err
				}
				c.todos.Append(todo)
			}
			return nil
		}},
	},
	emitters: []func(c *Calendar, out *Container){
		func(c *Calendar, out *Container) {
			creator := c.creator
			if creator == "" {
				creator = defaultProdID
			}
			out.AppendLine("PRODID", creator)
		},
		func(c *Calendar, out *Container) {
			out.AppendLine("VERSION", "2.0")
		},
		func(c *Calendar, out *Container) {
			if c.scale != "" {
				out.AppendLine("CALSCALE", strings.ToUpper(c.scale))
			}
		},
		func(c *Calendar, out *Container) {
			if c.method != "" {
				out.AppendLine("METHOD", strings.ToUpper(c.method))
			}
		},
		func(c *Calendar, out *Container) {
			for _, event := range c.events.items {
				out.Append(event.ToContainer())
			}
		},
		func(c *Calendar, out *Container) {
			for _, todo := range c.todos.items {
				out.Append(todo.ToContainer())
			}
		},
	},
}
