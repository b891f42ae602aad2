package ical

import (
	"sort"
	"time"
)

// An ordered collection of todos with interval-query capability, mirroring
// EventList. A todo's interval is derived from its due and duration.
type TodoList struct {
	items []*Todo
}

// Create a list from the given todos.
func NewTodoList(todos ...*Todo) *TodoList {
	return &TodoList{items: append([]*Todo(nil), todos...)}
}

func (l *TodoList) Len() int {
	return len(l.items)
}

// Positional access.
func (l *TodoList) Get(i int) *Todo {
	return l.items[i]
}

// A copy of the backing slice; mutating it does not affect the list.
func (l *TodoList) Items() []*Todo {
	return append([]*Todo(nil), l.items...)
}

// Append todos in order.
func (l *TodoList) Append(todos ...*Todo) {
	l.items = append(l.items, todos...)
}

func todoSpan(t *Todo) (time.Time, time.Time) {
	return t.span()
}

// Todos matching the window [start, stop) under the given mode. A zero
// bound is open-ended. An invalid mode fails with a validation error.
func (l *TodoList) Between(start, stop time.Time, mode RangeMode) ([]*Todo, error) {
	return filterSpan(l.items, todoSpan, start, stop, mode)
}

// Todos whose interval matches the day containing the instant, both-mode.
func (l *TodoList) On(day time.Time) []*Todo {
	start, stop := daySpan(day)
	matched, _ := filterSpan(l.items, todoSpan, start, stop, ModeBoth)
	return matched
}

// Todos due today.
func (l *TodoList) Today() []*Todo {
	return l.On(time.Now().UTC())
}

// Todos whose interval covers the instant.
func (l *TodoList) At(instant time.Time) []*Todo {
	return atInstant(l.items, todoSpan, instant)
}

// Todos whose interval covers the current instant.
func (l *TodoList) Now() []*Todo {
	return l.At(time.Now().UTC())
}

// Todos overlapping the given todo's interval: any-mode matches within its
// span plus todos that fully contain it, deduplicated.
func (l *TodoList) Concurrent(todo *Todo) []*Todo {
	begin, end := todo.span()
	return concurrentSpan(l.items, todoSpan, (*Todo).UID, begin, end)
}

// Shift the due date of every contained todo by delta.
func (l *TodoList) Bump(delta Shift, forceEmptyDues bool) {
	for _, todo := range l.items {
		todo.Bump(delta, forceEmptyDues)
	}
}

// The sorted set of distinct category strings across all contained todos.
func (l *TodoList) Categories() []string {
	return uniqueSortedCategories(l.items)
}

// Sort the list in place by the todo ordering (due, then name).
func (l *TodoList) Sort() {
	sort.SliceStable(l.items, func(i, j int) bool {
		return l.items[i].Less(l.items[j])
	})
}

// A new list holding the union of both lists, with later duplicates (by UID)
// discarded; the first occurrence keeps its field values.
func (l *TodoList) Concat(other *TodoList) *TodoList {
	var otherItems []*Todo
	if other != nil {
		otherItems = other.items
	}
	return &TodoList{items: dedupConcat(l.items, otherItems, (*Todo).UID)}
}

// Deep copy: the new list owns clones of every todo.
func (l *TodoList) Clone() *TodoList {
	clone := &TodoList{items: make([]*Todo, len(l.items))}
	for i, todo := range l.items {
		clone.items[i] = todo.Clone()
	}
	return clone
}
