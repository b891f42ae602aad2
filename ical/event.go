package ical

import (
	"time"
)

// A calendar event. Its temporal state is one of three mutually exclusive
// representations: an explicit end, a stored duration, or neither (in which
// case the effective end is the begin advanced by one unit of the begin's
// precision).
type Event struct {
	uid         string
	name        string
	description string
	location    string
	created     time.Time

	begin          time.Time
	beginPrecision Precision
	endTime        time.Time
	duration       time.Duration
	hasDuration    bool

	unused *Container
}

// Create an empty event with a fresh UID.
func NewEvent() *Event {
	return &Event{
		uid:    uidGen(),
		unused: NewContainer("VEVENT"),
	}
}

// Get the event UID
func (e *Event) UID() string {
	return e.uid
}

// Set the event UID. Identity-changing: equality and hashing key on it.
func (e *Event) SetUID(uid string) *Event {
	e.uid = uid
	return e
}

// Get the event summary
func (e *Event) Name() string {
	return e.name
}

// Set the event summary
func (e *Event) SetName(name string) *Event {
	e.name = name
	return e
}

// Get the event description
func (e *Event) Description() string {
	return e.description
}

// Set the event description
func (e *Event) SetDescription(description string) *Event {
	e.description = description
	return e
}

// Get the event location
func (e *Event) Location() string {
	return e.location
}

// Set the event location
func (e *Event) SetLocation(location string) *Event {
	e.location = location
	return e
}

// Get the creation stamp (DTSTAMP)
func (e *Event) Created() time.Time {
	return e.created
}

// Set the creation stamp
func (e *Event) SetCreated(created time.Time) *Event {
	e.created = created.UTC()
	return e
}

// Get the beginning of the event. Zero when unset.
func (e *Event) Begin() time.Time {
	return e.begin
}

// Set the beginning of the event with second precision. Fails when an
// explicit end is already stored and the new begin would pass it; the event
// is left unchanged in that case.
func (e *Event) SetBegin(begin time.Time) error {
	begin = begin.UTC()
	if !e.endTime.IsZero() && begin.After(e.endTime) {
		return NewValidationError("begin must not be after end", map[string]any{
			"begin": begin,
			"end":   e.endTime,
		})
	}
	e.begin = begin
	e.beginPrecision = PrecisionSecond
	return nil
}

// Get the effective end of the event: the stored end, or begin plus the
// stored duration, or begin advanced by one unit of its precision when
// neither is stored. Zero when even begin is unset.
func (e *Event) End() time.Time {
	switch {
	case e.hasDuration:
		return e.begin.Add(e.duration)
	case !e.endTime.IsZero():
		return e.endTime
	case !e.begin.IsZero():
		return e.beginPrecision.unit(e.begin)
	default:
		return time.Time{}
	}
}

// Store an explicit end, discarding any stored duration. Fails when the new
// end precedes the current begin; the event is left unchanged in that case.
// A zero end unsets the stored end.
func (e *Event) SetEnd(end time.Time) error {
	end = end.UTC()
	if !end.IsZero() && end.Before(e.begin) {
		return NewValidationError("end must not be before begin", map[string]any{
			"begin": e.begin,
			"end":   end,
		})
	}
	e.endTime = end
	if !end.IsZero() {
		e.hasDuration = false
		e.duration = 0
	}
	return nil
}

// Store a duration, discarding any stored end.
func (e *Event) SetDuration(duration time.Duration) error {
	if duration < 0 {
		return NewValidationError("duration must not be negative", map[string]any{
			"duration": duration,
		})
	}
	e.duration = duration
	e.hasDuration = true
	e.endTime = time.Time{}
	return nil
}

// Get the duration of the event: the stored duration, or the distance from
// begin to the effective end. Zero when the event has no begin.
func (e *Event) Duration() time.Duration {
	switch {
	case e.hasDuration:
		return e.duration
	case !e.begin.IsZero():
		return e.End().Sub(e.begin)
	default:
		return 0
	}
}

// True iff an explicit end or a duration is stored. An event with only a
// begin still computes an effective End but does not "have" one.
func (e *Event) HasEnd() bool {
	return !e.endTime.IsZero() || e.hasDuration
}

// True iff the begin has day precision and no end or duration is stored.
func (e *Event) AllDay() bool {
	return e.beginPrecision == PrecisionDay && !e.HasEnd()
}

// Turn the event into an all-day one: begin is truncated to its day, stored
// end and duration are discarded, so the effective end becomes begin + 1 day.
func (e *Event) MakeAllDay() {
	e.beginPrecision = PrecisionDay
	if !e.begin.IsZero() {
		e.begin = floorDay(e.begin)
	}
	e.endTime = time.Time{}
	e.duration = 0
	e.hasDuration = false
}

// Ordering: by begin ascending; events with no begin at all compare by name.
func (e *Event) Less(other *Event) bool {
	if e.begin.IsZero() && other.begin.IsZero() {
		return e.name < other.name
	}
	return e.begin.Before(other.begin)
}

// Identity equality: same UID, nothing else.
func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.uid == other.uid
}

// Hash consistent with Equal, derived from the UID alone.
func (e *Event) Hash() uint64 {
	return hashUID(e.uid)
}

// The overlap window of two events: (max of begins, min of effective ends)
// when both events are bounded and the window is non-empty.
func (e *Event) Intersect(other *Event) (time.Time, time.Time, bool) {
	if e.begin.IsZero() || other.begin.IsZero() {
		return time.Time{}, time.Time{}, false
	}
	begin := e.begin
	if other.begin.After(begin) {
		begin = other.begin
	}
	end := e.End()
	if otherEnd := other.End(); otherEnd.Before(end) {
		end = otherEnd
	}
	if end.IsZero() || !begin.Before(end) {
		return time.Time{}, time.Time{}, false
	}
	return begin, end, true
}

// Shift the event in time: begin and any stored end move by delta. A stored
// duration is untouched, so duration-defined events keep their length.
func (e *Event) Bump(delta Shift) {
	if !e.begin.IsZero() {
		e.begin = delta.Apply(e.begin)
	}
	if !e.endTime.IsZero() {
		e.endTime = delta.Apply(e.endTime)
	}
}

// Deep copy, fully independent of the source, unused lines included.
func (e *Event) Clone() *Event {
	clone := *e
	clone.unused = e.unused.Clone()
	return &clone
}

// Render the event as a VEVENT container.
func (e *Event) ToContainer() *Container {
	return eventSchema.serialize(e, e.unused)
}

// Build an event from a parsed VEVENT container.
func eventFromContainer(src *Container, ctx *parseContext) (*Event, error) {
	event := NewEvent()
	if err := eventSchema.populate(event, src, ctx, event.unused); err != nil {
		return nil, err
	}
	return event, nil
}

var eventSchema = &schema[*Event]{
	typeName: "VEVENT",
	extractors: []extractorRule[*Event]{
		{name: "DTSTAMP", extract: singleLine(func(e *Event, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			created, _, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			e.created = created
			return nil
		})},
		{name: "DTSTART", extract: singleLine(func(e *Event, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			begin, precision, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			e.begin = begin
			e.beginPrecision = precision
			return nil
		})},
		{name: "DURATION", extract: singleLine(func(e *Event, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			if !e.endTime.IsZero() {
				return NewValidationError("an event can't have both DTEND and DURATION", map[string]any{
					"uid": e.uid,
				})
			}
			duration, err := ParseICalDuration(line.Value)
			if err != nil {
				return err
			}
			e.duration = duration
			e.hasDuration = true
			return nil
		})},
		{name: "DTEND", extract: singleLine(func(e *Event, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			if e.hasDuration {
				return NewValidationError("an event can't have both DTEND and DURATION", map[string]any{
					"uid": e.uid,
				})
			}
			end, _, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			if !e.begin.IsZero() && end.Before(e.begin) {
				return NewValidationError("end must not be before begin", map[string]any{
					"begin": e.begin,
					"end":   end,
				})
			}
			e.endTime = end
			return nil
		})},
		{name: "SUMMARY", extract: singleLine(func(e *Event, _ *parseContext, line *ContentLine) error {
			if line != nil {
				e.name = line.Value
			}
			return nil
		})},
		{name: "DESCRIPTION", extract: singleLine(func(e *Event, _ *parseContext, line *ContentLine) error {
			if line != nil {
				e.description = line.Value
			}
			return nil
		})},
		{name: "LOCATION", extract: singleLine(func(e *Event, _ *parseContext, line *ContentLine) error {
			if line != nil {
				e.location = line.Value
			}
			return nil
		})},
		{name: "UID", extract: singleLine(func(e *Event, _ *parseContext, line *ContentLine) error {
			if line != nil && line.Value != "" {
				e.uid = line.Value
			}
			return nil
		})},
	},
	emitters: []func(e *Event, out *Container){
		func(e *Event, out *Container) {
			stamp := e.created
			if stamp.IsZero() {
				stamp = time.Now().UTC()
			}
			out.AppendLine("DTSTAMP", formatInstant(stamp))
		},
		func(e *Event, out *Container) {
			if e.begin.IsZero() {
				return
			}
			if e.beginPrecision == PrecisionDay {
				line := NewContentLine("DTSTART", e.begin.UTC().Format(icalDateLayout))
				line.AddParam("VALUE", "DATE")
				out.Append(line)
				return
			}
			out.AppendLine("DTSTART", formatInstant(e.begin))
		},
		func(e *Event, out *Container) {
			if e.hasDuration && !e.begin.IsZero() {
				out.AppendLine("DURATION", FormatICalDuration(e.duration))
			}
		},
		func(e *Event, out *Container) {
			if !e.begin.IsZero() && !e.endTime.IsZero() {
				out.AppendLine("DTEND", formatInstant(e.endTime))
			}
		},
		func(e *Event, out *Container) {
			if e.name != "" {
				out.AppendLine("SUMMARY", e.name)
			}
		},
		func(e *Event, out *Container) {
			if e.description != "" {
				out.AppendLine("DESCRIPTION", e.description)
			}
		},
		func(e *Event, out *Container) {
			if e.location != "" {
				out.AppendLine("LOCATION", e.location)
			}
		},
		func(e *Event, out *Container) {
			uid := e.uid
			if uid == "" {
				uid = uidGen()
			}
			out.AppendLine("UID", uid)
		},
	},
}
