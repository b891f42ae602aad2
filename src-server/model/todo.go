package model

import (
	"context"
	"fmt"
	"strings"
	"time"
	"vcal/ical"

	"github.com/uptrace/bun"
)

type Todo struct {
	bun.BaseModel `bun:"table:todos"`

	ID          string `bun:"id,pk"`           // required
	Summary     string `bun:"summary,notnull"` // required
	Description string `bun:"description"`
	Location    string `bun:"location"`

	DueUnixUTC       int64 `bun:"due"`
	CompletedUnixUTC int64 `bun:"completed"`
	Priority         int   `bun:"priority"`
	Percent          int   `bun:"percent"`

	// comma-joined, sorted, no duplicates
	Categories string `bun:"categories"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`

	CalendarID string `bun:"calendar_id,notnull"` // required

	Calendar *Calendar `bun:"rel:belongs-to,join:calendar_id=id"`
}

func (t *Todo) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*Todo).Upsert: db is nil")
	}

	// validate
	switch {
	case t.ID == "":
		return fmt.Errorf("(*Todo).Upsert: todo id is blank")
	case t.Summary == "":
		return fmt.Errorf("(*Todo).Upsert: summary is blank")
	case t.Priority < 0 || t.Priority > 9:
		return fmt.Errorf("(*Todo).Upsert: priority must be within [0, 9]")
	case t.Percent < 0 || t.Percent > 100:
		return fmt.Errorf("(*Todo).Upsert: percent must be within [0, 100]")
	case t.CalendarID == "":
		return fmt.Errorf("(*Todo).Upsert: calendar id is blank")
	}

	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().UTC().Unix()
	} else {
		t.UpdatedAt = time.Now().UTC().Unix()
	}

	// upsert
	if _, err := db.NewInsert().
		Model(t).
		On("CONFLICT (id) DO UPDATE").
		Set("summary = EXCLUDED.summary").
		Set("description = EXCLUDED.description").
		Set("location = EXCLUDED.location").
		Set("due = EXCLUDED.due").
		Set("completed = EXCLUDED.completed").
		Set("priority = EXCLUDED.priority").
		Set("percent = EXCLUDED.percent").
		Set("categories = EXCLUDED.categories").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Todo).Upsert: can't upsert todo: %w", err)
	}

	return nil
}

// Flatten a parsed todo into a row.
func TodoFromIcal(todo *ical.Todo, calendarID string) *Todo {
	row := &Todo{
		ID:          todo.UID(),
		Summary:     todo.Name(),
		Description: todo.Description(),
		Location:    todo.Location(),
		Priority:    todo.Priority(),
		Percent:     todo.Percent(),
		Categories:  strings.Join(todo.Categories(), ","),
		CalendarID:  calendarID,
	}
	if todo.HasDue() {
		row.DueUnixUTC = todo.Due().Unix()
	}
	if completed := todo.Completed(); !completed.IsZero() {
		row.CompletedUnixUTC = completed.Unix()
	}
	return row
}

// Inflate a row back into a todo.
func (t *Todo) ToIcal() (*ical.Todo, error) {
	todo := ical.NewTodo().
		SetUID(t.ID).
		SetName(t.Summary).
		SetDescription(t.Description).
		SetLocation(t.Location)
	if t.DueUnixUTC != 0 {
		todo.SetDue(time.Unix(t.DueUnixUTC, 0).UTC())
	}
	if t.CompletedUnixUTC != 0 {
		todo.SetCompleted(time.Unix(t.CompletedUnixUTC, 0).UTC())
	}
	if err := todo.SetPriority(t.Priority); err != nil {
		return nil, fmt.Errorf("(*Todo).ToIcal: %w", err)
	}
	if err := todo.SetPercent(t.Percent); err != nil {
		return nil, fmt.Errorf("(*Todo).ToIcal: %w", err)
	}
	if t.Categories != "" {
		todo.SetCategories(strings.Split(t.Categories, ","))
	}
	return todo, nil
}
