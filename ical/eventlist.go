package ical

import (
	"sort"
	"time"
)

// An ordered collection of events with interval-query capability. The
// backing slice is owned; elements only enter through Append and the
// constructors, so every element is a well-formed *Event by construction.
type EventList struct {
	items []*Event
}

// Create a list from the given events.
func NewEventList(events ...*Event) *EventList {
	return &EventList{items: append([]*Event(nil), events...)}
}

func (l *EventList) Len() int {
	return len(l.items)
}

// Positional access.
func (l *EventList) Get(i int) *Event {
	return l.items[i]
}

// A copy of the backing slice; mutating it does not affect the list.
func (l *EventList) Items() []*Event {
	return append([]*Event(nil), l.items...)
}

// Append events in order.
func (l *EventList) Append(events ...*Event) {
	l.items = append(l.items, events...)
}

func eventSpan(e *Event) (time.Time, time.Time) {
	return e.begin, e.End()
}

// Events matching the window [start, stop) under the given mode. A zero
// bound is open-ended. An invalid mode fails with a validation error.
func (l *EventList) Between(start, stop time.Time, mode RangeMode) ([]*Event, error) {
	return filterSpan(l.items, eventSpan, start, stop, mode)
}

// Events whose interval matches the day containing the instant, both-mode.
func (l *EventList) On(day time.Time) []*Event {
	start, stop := daySpan(day)
	matched, _ := filterSpan(l.items, eventSpan, start, stop, ModeBoth)
	return matched
}

// Events occurring today.
func (l *EventList) Today() []*Event {
	return l.On(time.Now().UTC())
}

// Events occurring at the instant (begin <= instant <= effective end).
func (l *EventList) At(instant time.Time) []*Event {
	return atInstant(l.items, eventSpan, instant)
}

// Events occurring right now.
func (l *EventList) Now() []*Event {
	return l.At(time.Now().UTC())
}

// Events overlapping the given event's interval: any-mode matches within its
// span plus events that fully contain it, deduplicated.
func (l *EventList) Concurrent(event *Event) []*Event {
	begin, end := eventSpan(event)
	return concurrentSpan(l.items, eventSpan, (*Event).UID, begin, end)
}

// Shift every contained event by delta.
func (l *EventList) Bump(delta Shift) {
	for _, event := range l.items {
		event.Bump(delta)
	}
}

// Sort the list in place by the event ordering (begin, then name).
func (l *EventList) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Less(l.items[j])
	})
}

// A new list holding the union of both lists, with later duplicates (by UID)
// discarded; the first occurrence keeps its field values.
func (l *EventList) Concat(other *EventList) *EventList {
	var otherItems []*Event
	if other != nil {
		otherItems = other.items
	}
	return &EventList{items: dedupConcat(l.items, otherItems, (*Event).UID)}
}

// Deep copy: the new list owns clones of every event.
func (l *EventList) Clone() *EventList {
	clone := &EventList{items: make([]*Event, len(l.items))}
	for i, event := range l.items {
		clone.items[i] = event.Clone()
	}
	return clone
}
