package route

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
	"vcal/ical"
	"vcal/src-server/model"
	"vcal/src-server/utils"

	"github.com/google/uuid"
)

func Calendar(muxer *http.ServeMux, as *utils.AppState) {
	type ImportCalendarReqBody struct {
		Url  string `json:"url"`
		Name string `json:"name"`
	}

	// import a remote calendar, the success response is the calendar ID
	muxer.HandleFunc("POST /calendar/import", LoggingMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			var reqBody ImportCalendarReqBody
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}
			if reqBody.Url == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Please provide a calendar URL"))
				return
			}

			icalCalendar, err := ical.FromURL(reqBody.Url)
			if err != nil {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("Can't fetch calendar"))
				slog.Warn("can't fetch calendar", "url", reqBody.Url, "error", err)
				return
			}

			hash, err := utils.GetFileHash(reqBody.Url)
			if err != nil {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte("Can't hash calendar"))
				return
			}

			calendarName := utils.CleanupString(reqBody.Name)
			if calendarName == "" {
				calendarName = "Untitled"
			}
			calendarModel := model.Calendar{
				ID:     uuid.NewString(),
				ProdID: icalCalendar.Creator(),
				Name:   calendarName,
				Url:    reqBody.Url,
				Hash:   hash,
			}

			startTimer := time.Now()
			if err := calendarModel.Upsert(r.Context(), as.BunDB); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't create calendar"))
				slog.Error("can't create calendar", "error", err)
				return
			}
			for _, icalEvent := range icalCalendar.Events().Items() {
				if icalEvent.Begin().IsZero() {
					continue
				}
				if err := model.EventFromIcal(icalEvent, calendarModel.ID).
					Upsert(r.Context(), as.BunDB); err != nil {
					slog.Warn("can't insert imported event", "uid", icalEvent.UID(), "error", err)
				}
			}
			for _, icalTodo := range icalCalendar.Todos().Items() {
				if err := model.TodoFromIcal(icalTodo, calendarModel.ID).
					Upsert(r.Context(), as.BunDB); err != nil {
					slog.Warn("can't insert imported todo", "uid", icalTodo.UID(), "error", err)
				}
			}
			as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds())

			w.WriteHeader(http.StatusOK)
			w.Write([]byte(calendarModel.ID))
		}))

	type OneEventRespBody struct {
		ID               string `json:"id"`
		Title            string `json:"title"`
		Description      string `json:"description"`
		Location         string `json:"location"`
		StartDateUnixUTC int64  `json:"startDateUnixUTC"`
		EndDateUnixUTC   int64  `json:"endDateUnixUTC"`
		IsWholeDay       bool   `json:"isWholeDay"`
	}

	// get all events in a date range; start/end accept natural language
	// ("today", "next friday", ...), mode is one of begin/end/both/any/inc
	muxer.HandleFunc("GET /calendar/{calendar_id}/events", LoggingMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			calendarID := r.PathValue("calendar_id")
			w.Header().Set("Content-Type", "application/json")

			// #region - parse the range
			mode, err := ical.ParseRangeMode(r.URL.Query().Get("mode"))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid range mode"))
				return
			}
			parseBound := func(raw string) (time.Time, error) {
				if raw == "" {
					return time.Time{}, nil
				}
				if t, err := ical.ParseInstant(raw); err == nil {
					return t, nil
				}
				parsed, err := as.When.Parse(raw, time.Now())
				if err != nil || parsed == nil {
					return time.Time{}, err
				}
				return parsed.Time.UTC(), nil
			}
			startDate, err := parseBound(r.URL.Query().Get("start"))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Can't parse start date"))
				return
			}
			endDate, err := parseBound(r.URL.Query().Get("end"))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Can't parse end date"))
				return
			}
			// #endregion

			// #region - load the rows & filter
			startTimer := time.Now()
			eventModels := make([]model.Event, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&eventModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't get events"))
				return
			}
			as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds())

			eventList := ical.NewEventList()
			for _, eventModel := range eventModels {
				icalEvent, err := eventModel.ToIcal()
				if err != nil {
					slog.Warn("can't inflate event", "id", eventModel.ID, "error", err)
					continue
				}
				eventList.Append(icalEvent)
			}
			matched, err := eventList.Between(startDate, endDate, mode)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid range"))
				return
			}
			// #endregion

			respBody := make([]OneEventRespBody, 0)
			for _, icalEvent := range matched {
				respBody = append(respBody, OneEventRespBody{
					ID:               icalEvent.UID(),
					Title:            icalEvent.Name(),
					Description:      icalEvent.Description(),
					Location:         icalEvent.Location(),
					StartDateUnixUTC: icalEvent.Begin().Unix(),
					EndDateUnixUTC:   icalEvent.End().Unix(),
					IsWholeDay:       icalEvent.AllDay(),
				})
			}
			respBodyJson, err := json.Marshal(respBody)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't marshal response body"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(respBodyJson)
		}))

	type OneTodoRespBody struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		DueUnixUTC  int64    `json:"dueUnixUTC"`
		Priority    int      `json:"priority"`
		Percent     int      `json:"percent"`
		Categories  []string `json:"categories"`
		IsOverdue   bool     `json:"isOverdue"`
	}

	// get all todos, optionally narrowed to one category
	muxer.HandleFunc("GET /calendar/{calendar_id}/todos", LoggingMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			calendarID := r.PathValue("calendar_id")
			category := r.URL.Query().Get("category")
			w.Header().Set("Content-Type", "application/json")

			startTimer := time.Now()
			todoModels := make([]model.Todo, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&todoModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't get todos"))
				return
			}
			as.MetricChans.DatabaseRead <- float64(time.Since(startTimer).Microseconds())

			respBody := make([]OneTodoRespBody, 0)
			for _, todoModel := range todoModels {
				icalTodo, err := todoModel.ToIcal()
				if err != nil {
					slog.Warn("can't inflate todo", "id", todoModel.ID, "error", err)
					continue
				}
				if category != "" {
					found := false
					for _, c := range icalTodo.Categories() {
						if c == category {
							found = true
							break
						}
					}
					if !found {
						continue
					}
				}
				respBody = append(respBody, OneTodoRespBody{
					ID:          icalTodo.UID(),
					Title:       icalTodo.Name(),
					Description: icalTodo.Description(),
					DueUnixUTC:  todoModel.DueUnixUTC,
					Priority:    icalTodo.Priority(),
					Percent:     icalTodo.Percent(),
					Categories:  icalTodo.Categories(),
					IsOverdue:   icalTodo.IsOverdue(),
				})
			}
			respBodyJson, err := json.Marshal(respBody)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't marshal response body"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(respBodyJson)
		}))

	type BumpReqBody struct {
		Weeks          int  `json:"weeks"`
		Days           int  `json:"days"`
		Hours          int  `json:"hours"`
		Minutes        int  `json:"minutes"`
		ForceEmptyDues bool `json:"forceEmptyDues"`
	}

	// shift every event and todo of a calendar by a relative amount
	muxer.HandleFunc("POST /calendar/{calendar_id}/bump", LoggingMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			calendarID := r.PathValue("calendar_id")
			w.Header().Set("Content-Type", "application/json")

			var reqBody BumpReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}
			delta := ical.Shift{
				Weeks:   reqBody.Weeks,
				Days:    reqBody.Days,
				Hours:   reqBody.Hours,
				Minutes: reqBody.Minutes,
			}
			if delta.IsZero() && !reqBody.ForceEmptyDues {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Please provide a non-zero shift"))
				return
			}

			eventModels := make([]model.Event, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&eventModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't get events"))
				return
			}
			todoModels := make([]model.Todo, 0)
			if err := as.BunDB.
				NewSelect().
				Model(&todoModels).
				Where("calendar_id = ?", calendarID).
				Scan(r.Context()); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't get todos"))
				return
			}

			startTimer := time.Now()
			for _, eventModel := range eventModels {
				icalEvent, err := eventModel.ToIcal()
				if err != nil {
					continue
				}
				icalEvent.Bump(delta)
				bumped := model.EventFromIcal(icalEvent, calendarID)
				bumped.CreatedAt = eventModel.CreatedAt
				if err := bumped.Upsert(r.Context(), as.BunDB); err != nil {
					slog.Warn("can't bump event", "id", eventModel.ID, "error", err)
				}
			}
			for _, todoModel := range todoModels {
				icalTodo, err := todoModel.ToIcal()
				if err != nil {
					continue
				}
				icalTodo.Bump(delta, reqBody.ForceEmptyDues)
				bumped := model.TodoFromIcal(icalTodo, calendarID)
				bumped.CreatedAt = todoModel.CreatedAt
				if err := bumped.Upsert(r.Context(), as.BunDB); err != nil {
					slog.Warn("can't bump todo", "id", todoModel.ID, "error", err)
				}
			}
			as.MetricChans.DatabaseWrite <- float64(time.Since(startTimer).Microseconds())

			w.WriteHeader(http.StatusOK)
		}))

	// delete a calendar and everything it holds
	muxer.HandleFunc("DELETE /calendar/{calendar_id}", LoggingMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			calendarID := r.PathValue("calendar_id")
			if calendarID == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Please provide a calendar ID"))
				return
			}

			if _, err := as.BunDB.NewDelete().
				Model((*model.Calendar)(nil)).
				Where("id = ?", calendarID).
				Exec(context.WithValue(r.Context(), model.DeletedCalendarIDsCtxKey, calendarID)); err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't delete calendar"))
				return
			}

			w.WriteHeader(http.StatusOK)
		}))
}
