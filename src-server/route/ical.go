package route

import (
	"io"
	"log/slog"
	"net/http"
	"time"
	"vcal/ical"
	"vcal/src-server/model"
	"vcal/src-server/utils"
)

func Ical(muxer *http.ServeMux, as *utils.AppState) {
	muxer.HandleFunc("GET /ical/{calendar_id}", LoggingMiddleware(func(w http.ResponseWriter, r *http.Request) {
		calendarID := r.PathValue("calendar_id")

		// getting the calendar model
		calendarModel := new(model.Calendar)
		if err := as.BunDB.NewSelect().
			Model(calendarModel).
			Where("id = ?", calendarID).
			Scan(r.Context(), calendarModel); err != nil {
			http.Error(w, "Calendar not found", http.StatusNotFound)
			return
		}

		// remote calendars keep their upstream as the source of truth
		if calendarModel.Url != "" {
			http.Redirect(w, r, calendarModel.Url, http.StatusFound)
			return
		}

		// turn into an ical calendar
		icalCalendar, err := func() (*ical.Calendar, error) {
			icalCalendar := ical.NewCalendar()
			icalCalendar.SetCreator(calendarModel.ProdID)

			startTimer := time.Now()
			eventModels := make([]model.Event, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&eventModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context(), &eventModels); err != nil {
				return nil, err
			}
			todoModels := make([]model.Todo, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&todoModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context(), &todoModels); err != nil {
				return nil, err
			}
			as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds())

			for _, eventModel := range eventModels {
				icalEvent, err := eventModel.ToIcal()
				if err != nil {
					return nil, err
				}
				icalCalendar.AddEvent(icalEvent)
			}
			for _, todoModel := range todoModels {
				icalTodo, err := todoModel.ToIcal()
				if err != nil {
					return nil, err
				}
				icalCalendar.AddTodo(icalTodo)
			}
			return icalCalendar, nil
		}()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		// write the ical calendar
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		for _, line := range icalCalendar.Lines() {
			if _, err := io.WriteString(w, line); err != nil {
				slog.Warn("can't write to response", "where", "route/ical.go", "error", err)
				return
			}
		}
	}))
}
