package model

import (
	"context"
	"fmt"
	"time"
	"vcal/ical"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk"`           // required
	Summary     string `bun:"summary,notnull"` // required
	Description string `bun:"description"`
	Location    string `bun:"location"`

	StartDateUnixUTC int64 `bun:"start_date,notnull"` // required
	EndDateUnixUTC   int64 `bun:"end_date,notnull"`   // required
	IsWholeDay       bool  `bun:"is_whole_day"`

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`

	CalendarID string `bun:"calendar_id,notnull"` // required

	Calendar *Calendar `bun:"rel:belongs-to,join:calendar_id=id"`
}

func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return fmt.Errorf("(*Event).Upsert: db is nil")
	}

	// validate
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.Summary == "":
		return fmt.Errorf("(*Event).Upsert: summary is blank")
	case e.StartDateUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: start date is blank")
	case e.EndDateUnixUTC == 0:
		return fmt.Errorf("(*Event).Upsert: end date is blank")
	case e.StartDateUnixUTC > e.EndDateUnixUTC:
		return fmt.Errorf("(*Event).Upsert: start date must be before end date")
	case e.CalendarID == "":
		return fmt.Errorf("(*Event).Upsert: calendar id is blank")
	}

	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	} else {
		e.UpdatedAt = time.Now().UTC().Unix()
	}

	// upsert
	if _, err := db.NewInsert().
		Model(e).
		On("CONFLICT (id) DO UPDATE").
		Set("summary = EXCLUDED.summary").
		Set("description = EXCLUDED.description").
		Set("location = EXCLUDED.location").
		Set("start_date = EXCLUDED.start_date").
		Set("end_date = EXCLUDED.end_date").
		Set("is_whole_day = EXCLUDED.is_whole_day").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("(*Event).Upsert: can't upsert event: %w", err)
	}

	return nil
}

// Flatten a parsed event into a row.
func EventFromIcal(event *ical.Event, calendarID string) *Event {
	return &Event{
		ID:               event.UID(),
		Summary:          event.Name(),
		Description:      event.Description(),
		Location:         event.Location(),
		StartDateUnixUTC: event.Begin().Unix(),
		EndDateUnixUTC:   event.End().Unix(),
		IsWholeDay:       event.AllDay(),
		CalendarID:       calendarID,
	}
}

// Inflate a row back into an event.
func (e *Event) ToIcal() (*ical.Event, error) {
	event := ical.NewEvent().
		SetUID(e.ID).
		SetName(e.Summary).
		SetDescription(e.Description).
		SetLocation(e.Location)
	if err := event.SetBegin(time.Unix(e.StartDateUnixUTC, 0).UTC()); err != nil {
		return nil, fmt.Errorf("(*Event).ToIcal: %w", err)
	}
	if e.IsWholeDay {
		event.MakeAllDay()
		return event, nil
	}
	if err := event.SetEnd(time.Unix(e.EndDateUnixUTC, 0).UTC()); err != nil {
		return nil, fmt.Errorf("(*Event).ToIcal: %w", err)
	}
	return event, nil
}
