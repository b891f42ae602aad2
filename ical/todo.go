package ical

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// A calendar to-do. Unlike an event it has no begin/end pair: it carries an
// optional due instant and an optional duration, which are independent.
type Todo struct {
	uid         string
	name        string
	description string
	location    string
	created     time.Time
	completed   time.Time

	due         time.Time
	duration    time.Duration
	hasDuration bool

	priority   int
	percent    int
	categories []string

	unused *Container
}

// Create an empty todo with a fresh UID.
func NewTodo() *Todo {
	return &Todo{
		uid:    uidGen(),
		unused: NewContainer("VTODO"),
	}
}

// Get the todo UID
func (t *Todo) UID() string {
	return t.uid
}

// Set the todo UID. Identity-changing: equality and hashing key on it.
func (t *Todo) SetUID(uid string) *Todo {
	t.uid = uid
	return t
}

// Get the todo summary
func (t *Todo) Name() string {
	return t.name
}

// Set the todo summary
func (t *Todo) SetName(name string) *Todo {
	t.name = name
	return t
}

// Get the todo description
func (t *Todo) Description() string {
	return t.description
}

// Set the todo description
func (t *Todo) SetDescription(description string) *Todo {
	t.description = description
	return t
}

// Get the todo location
func (t *Todo) Location() string {
	return t.location
}

// Set the todo location
func (t *Todo) SetLocation(location string) *Todo {
	t.location = location
	return t
}

// Get the creation stamp (DTSTAMP)
func (t *Todo) Created() time.Time {
	return t.created
}

// Set the creation stamp
func (t *Todo) SetCreated(created time.Time) *Todo {
	t.created = created.UTC()
	return t
}

// Get the completion instant. Zero when the todo was never completed.
func (t *Todo) Completed() time.Time {
	return t.completed
}

// Set the completion instant
func (t *Todo) SetCompleted(completed time.Time) *Todo {
	t.completed = completed.UTC()
	return t
}

// Get the due instant. Zero when unset.
func (t *Todo) Due() time.Time {
	return t.due
}

// Set the due instant. A zero value unsets it.
func (t *Todo) SetDue(due time.Time) *Todo {
	t.due = due.UTC()
	return t
}

// True iff a due instant is set.
func (t *Todo) HasDue() bool {
	return !t.due.IsZero()
}

// Get the stored duration. The second return reports whether one is stored.
func (t *Todo) Duration() (time.Duration, bool) {
	return t.duration, t.hasDuration
}

// Store a duration. Due and duration are independent on a todo; neither
// clears the other.
func (t *Todo) SetDuration(duration time.Duration) error {
	if duration < 0 {
		return NewValidationError("duration must not be negative", map[string]any{
			"duration": duration,
		})
	}
	t.duration = duration
	t.hasDuration = true
	return nil
}

// Get the priority (0 = undefined, 1 = highest, 9 = lowest).
func (t *Todo) Priority() int {
	return t.priority
}

// Set the priority. Values outside 0–9 fail.
func (t *Todo) SetPriority(priority int) error {
	if priority < 0 || priority > 9 {
		return NewValidationError("priority must be within 0-9", map[string]any{
			"priority": priority,
		})
	}
	t.priority = priority
	return nil
}

// Get the completion percentage.
func (t *Todo) Percent() int {
	return t.percent
}

// Set the completion percentage. Values outside 0–100 fail.
func (t *Todo) SetPercent(percent int) error {
	if percent < 0 || percent > 100 {
		return NewValidationError("percent must be within 0-100", map[string]any{
			"percent": percent,
		})
	}
	t.percent = percent
	return nil
}

// Get the categories.
func (t *Todo) Categories() []string {
	return append([]string(nil), t.categories...)
}

// Replace the categories.
func (t *Todo) SetCategories(categories []string) *Todo {
	t.categories = append([]string(nil), categories...)
	return t
}

// True iff the completion percentage reads 100.
func (t *Todo) IsComplete() bool {
	return t.percent == 100
}

// True iff a due instant is set and lies in the past.
func (t *Todo) IsOverdue() bool {
	return !t.due.IsZero() && t.due.Before(time.Now())
}

// Shift the due instant by delta. A todo without a due date is left alone
// unless forceEmptyDues is set, in which case its due is initialized to the
// current instant before the shift applies.
func (t *Todo) Bump(delta Shift, forceEmptyDues bool) {
	if t.due.IsZero() {
		if !forceEmptyDues {
			return
		}
		t.due = time.Now().UTC()
	}
	t.due = delta.Apply(t.due)
}

// The interval a todo occupies for range queries: [due-duration, due] when a
// duration is stored, else the single instant [due, due]. Zero times when no
// due is set.
func (t *Todo) span() (time.Time, time.Time) {
	if t.due.IsZero() {
		return time.Time{}, time.Time{}
	}
	if t.hasDuration {
		return t.due.Add(-t.duration), t.due
	}
	return t.due, t.due
}

// Ordering: by due ascending; todos with no due at all compare by name.
func (t *Todo) Less(other *Todo) bool {
	if t.due.IsZero() && other.due.IsZero() {
		return t.name < other.name
	}
	return t.due.Before(other.due)
}

// Identity equality: same UID, nothing else.
func (t *Todo) Equal(other *Todo) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t.uid == other.uid
}

// Hash consistent with Equal, derived from the UID alone.
func (t *Todo) Hash() uint64 {
	return hashUID(t.uid)
}

// Deep copy, fully independent of the source, unused lines included.
func (t *Todo) Clone() *Todo {
	clone := *t
	clone.categories = append([]string(nil), t.categories...)
	clone.unused = t.unused.Clone()
	return &clone
}

// Render the todo as a VTODO container.
func (t *Todo) ToContainer() *Container {
	return todoSchema.serialize(t, t.unused)
}

// Build a todo from a parsed VTODO container.
func todoFromContainer(src *Container, ctx *parseContext) (*Todo, error) {
	todo := NewTodo()
	if err := todoSchema.populate(todo, src, ctx, todo.unused); err != nil {
		return nil, err
	}
	return todo, nil
}

var todoSchema = &schema[*Todo]{
	typeName: "VTODO",
	extractors: []extractorRule[*Todo]{
		{name: "DTSTAMP", extract: singleLine(func(t *Todo, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			created, _, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			t.created = created
			return nil
		})},
		{name: "PERCENT_COMPLETE", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			percent, err := strconv.Atoi(strings.TrimSpace(line.Value))
			if err != nil {
				return NewParseError("invalid percent value", map[string]any{
					"value": line.Value,
					"err":   err,
				})
			}
			return t.SetPercent(percent)
		})},
		{name: "COMPLETED", extract: singleLine(func(t *Todo, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			completed, _, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			t.completed = completed
			return nil
		})},
		{name: "DURATION", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			duration, err := ParseICalDuration(line.Value)
			if err != nil {
				return err
			}
			t.duration = duration
			t.hasDuration = true
			return nil
		})},
		{name: "DUE", extract: singleLine(func(t *Todo, ctx *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			due, _, err := parseInstantLine(line, ctx.timezones)
			if err != nil {
				return err
			}
			t.due = due
			return nil
		})},
		{name: "SUMMARY", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line != nil {
				t.name = line.Value
			}
			return nil
		})},
		{name: "DESCRIPTION", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line != nil {
				t.description = line.Value
			}
			return nil
		})},
		{name: "PRIORITY", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line == nil {
				return nil
			}
			priority, err := strconv.Atoi(strings.TrimSpace(line.Value))
			if err != nil {
				return NewParseError("invalid priority value", map[string]any{
					"value": line.Value,
					"err":   err,
				})
			}
			return t.SetPriority(priority)
		})},
		{name: "CATEGORIES", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line == nil || line.Value == "" {
				return nil
			}
			for _, category := range strings.Split(line.Value, ",") {
				category = strings.TrimSpace(category)
				if category != "" {
					t.categories = append(t.categories, category)
				}
			}
			return nil
		})},
		{name: "LOCATION", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line != nil {
				t.location = line.Value
			}
			return nil
		})},
		{name: "UID", extract: singleLine(func(t *Todo, _ *parseContext, line *ContentLine) error {
			if line != nil && line.Value != "" {
				t.uid = line.Value
			}
			return nil
		})},
	},
	emitters: []func(t *Todo, out *Container){
		func(t *Todo, out *Container) {
			stamp := t.created
			if stamp.IsZero() {
				stamp = time.Now().UTC()
			}
			out.AppendLine("DTSTAMP", formatInstant(stamp))
		},
		func(t *Todo, out *Container) {
			if t.percent > 0 {
				out.AppendLine("PERCENT_COMPLETE", strconv.Itoa(t.percent))
			}
		},
		func(t *Todo, out *Container) {
			if !t.completed.IsZero() {
				out.AppendLine("COMPLETED", formatInstant(t.completed))
			}
		},
		func(t *Todo, out *Container) {
			if t.hasDuration {
				out.AppendLine("DURATION", FormatICalDuration(t.duration))
			}
		},
		func(t *Todo, out *Container) {
			if !t.due.IsZero() {
				out.AppendLine("DUE", formatInstant(t.due))
			}
		},
		func(t *Todo, out *Container) {
			if t.name != "" {
				out.AppendLine("SUMMARY", t.name)
			}
		},
		func(t *Todo, out *Container) {
			if t.description != "" {
				out.AppendLine("DESCRIPTION", t.description)
			}
		},
		func(t *Todo, out *Container) {
			if t.priority > 0 {
				out.AppendLine("PRIORITY", strconv.Itoa(t.priority))
			}
		},
		func(t *Todo, out *Container) {
			if len(t.categories) > 0 {
				out.AppendLine("CATEGORIES", strings.Join(t.categories, ","))
			}
		},
		func(t *Todo, out *Container) {
			if t.location != "" {
				out.AppendLine("LOCATION", t.location)
			}
		},
		func(t *Todo, out *Container) {
			uid := t.uid
			if uid == "" {
				uid = uidGen()
			}
			out.AppendLine("UID", uid)
		},
	},
}

// The sorted set of distinct category strings across todos.
func uniqueSortedCategories(todos []*Todo) []string {
	seen := make(map[string]struct{})
	var categories []string
	for _, todo := range todos {
		for _, category := range todo.categories {
			if _, ok := seen[category]; ok {
				continue
			}
			seen[category] = struct{}{}
			categories = append(categories, category)
		}
	}
	sort.Strings(categories)
	return categories
}
