package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"vcal/ical"
	"vcal/src-server/model"
	"vcal/src-server/utils"

	"github.com/uptrace/bun"
)

const (
	WORKER_COUNT = 4
)

// Periodically re-fetch every remote calendar and replace its rows. The
// upstream hash short-circuits unchanged calendars.
func CalendarUpdate(as *utils.AppState) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	for {
		calendarModels := []model.Calendar{}
		if err := as.BunDB.
			NewSelect().
			Model(&calendarModels).
			Where("url LIKE ?", "https://%").
			Scan(context.Background()); err != nil {
			slog.Error("can't get calendars", "error", err)
			if sleepOrShutdown(as, gracefulShutdownCh) {
				return
			}
			continue
		}
		if len(calendarModels) == 0 {
			if sleepOrShutdown(as, gracefulShutdownCh) {
				return
			}
			continue
		}

		jobs := make(chan model.Calendar, len(calendarModels))
		var wg sync.WaitGroup

		for range WORKER_COUNT {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for oldCalendarModel := range jobs {
					refreshOne(as, oldCalendarModel)
				}
			}()
		}
		for _, calendarModel := range calendarModels {
			jobs <- calendarModel
		}
		close(jobs)
		wg.Wait()

		if sleepOrShutdown(as, gracefulShutdownCh) {
			return
		}
	}
}

// true means the app is shutting down
func sleepOrShutdown(as *utils.AppState, gracefulShutdownCh *chan struct{}) bool {
	select {
	case <-*gracefulShutdownCh:
		return true
	case <-time.After(as.Config.GetCalendarUpdateInterval()):
		return false
	}
}

func refreshOne(as *utils.AppState, oldCalendarModel model.Calendar) {
	hash, err := utils.GetFileHash(oldCalendarModel.Url)
	if err != nil {
		slog.Warn("CalendarUpdate: can't hash calendar", "url", oldCalendarModel.Url, "error", err)
		return
	}
	if hash == oldCalendarModel.Hash {
		return
	}

	// buffered so a timed-out fetch goroutine can still send and exit
	calCh := make(chan *ical.Calendar, 1)
	errCh := make(chan error, 1)

	startTimer := time.Now()
	go func() {
		icalCalendar, err := ical.FromURL(oldCalendarModel.Url)
		if err != nil {
			errCh <- err
			return
		}
		calCh <- icalCalendar
	}()

	select {
	case <-time.After(time.Minute * 5):
		slog.Warn("CalendarUpdate: timed out waiting for calendar to be fetched & parsed")
	case err := <-errCh:
		slog.Warn("CalendarUpdate: can't fetch calendar", "url", oldCalendarModel.Url, "error", err)
	case icalCalendar := <-calCh:
		as.MetricChans.CalendarRefresh <- float64(time.Since(startTimer).Microseconds())
		if err := as.BunDB.RunInTx(context.Background(), &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			// remove the old rows
			if _, err := tx.NewDelete().
				Model((*model.Event)(nil)).
				Where("calendar_id = ?", oldCalendarModel.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("can't delete old events: %w", err)
			}
			if _, err := tx.NewDelete().
				Model((*model.Todo)(nil)).
				Where("calendar_id = ?", oldCalendarModel.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("can't delete old todos: %w", err)
			}

			// refresh the calendar row
			newCalendarModel := model.Calendar{
				ID:          oldCalendarModel.ID,
				ProdID:      icalCalendar.Creator(),
				Name:        oldCalendarModel.Name,
				Description: oldCalendarModel.Description,
				Url:         oldCalendarModel.Url,
				Hash:        hash,
			}
			if err := newCalendarModel.Upsert(ctx, tx); err != nil {
				return err
			}

			eventModels := make([]model.Event, 0)
			for _, icalEvent := range icalCalendar.Events().Items() {
				if icalEvent.Begin().IsZero() {
					continue
				}
				eventModels = append(eventModels, *model.EventFromIcal(icalEvent, oldCalendarModel.ID))
			}
			if len(eventModels) > 0 {
				if _, err := tx.NewInsert().
					Model(&eventModels).
					Exec(ctx); err != nil {
					return err
				}
			}

			todoModels := make([]model.Todo, 0)
			for _, icalTodo := range icalCalendar.Todos().Items() {
				todoModels = append(todoModels, *model.TodoFromIcal(icalTodo, oldCalendarModel.ID))
			}
			if len(todoModels) > 0 {
				if _, err := tx.NewInsert().
					Model(&todoModels).
					Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
			slog.Warn("CalendarUpdate: can't insert calendar", "url", oldCalendarModel.Url, "error", err)
		}
	}
}
