package server

import (
	"net/http"

	"github.com/jrsteele09/go-calendar-gateway/calendar"
)

const calendarQueryParam = "calendar"

func (s *Server) ListCalendarsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.services.Calendar.ListCalendars(r.Context())
		if err != nil {
			writeFailure(w, "calendar.ListCalendars", err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// ListEventsHandler lists upcoming events of the calendar named by the "calendar" query
// parameter, or the default calendar when it is absent.
func (s *Server) ListEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.services.Calendar.ListUpcomingEvents(r.Context(), r.URL.Query().Get(calendarQueryParam))
		if err != nil {
			writeFailure(w, "calendar.ListUpcomingEvents", err)
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) CreateEventHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req calendar.EventRequest
		if err := decodeJSON(r, &req); err != nil {
			writeInvalidBody(w, err)
			return
		}

		event, err := s.services.Calendar.CreateEvent(r.Context(), req)
		if err != nil {
			writeFailure(w, "calendar.CreateEvent", err)
			return
		}
		writeJSON(w, http.StatusCreated, event)
	}
}
