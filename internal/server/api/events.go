package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/store"
)

// DefaultEventLimit caps GET /api/events without a session filter.
const DefaultEventLimit = 100

// EventHandler serves recorded stable gesture changes.
type EventHandler struct {
	store *store.Store
}

// NewEventHandler creates an EventHandler.
func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
}

type statsResponse struct {
	Session string               `json:"session,omitempty"`
	Total   int                  `json:"total"`
	Counts  []store.GestureCount `json:"counts"`
}

// ServeHTTP routes GET /api/events and GET /api/events/stats.
func (h *EventHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/events"), "/") {
	case "":
		h.list(w, r)
	case "stats":
		h.stats(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list returns a session's events in order, or the most recent events overall.
func (h *EventHandler) list(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", DefaultEventLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid limit")
		return
	}

	var events []*store.Event
	if sessionID := r.URL.Query().Get("session"); sessionID != "" {
		events, err = h.store.Events().ListBySession(sessionID)
		if err == nil && limit > 0 && len(events) > limit {
			events = events[len(events)-limit:]
		}
	} else {
		events, err = h.store.Events().List(limit)
	}
	if err != nil {
		logger.S().Errorf("Failed to list events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}

	if events == nil {
		events = []*store.Event{}
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

func (h *EventHandler) stats(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	counts, err := h.store.Events().CountByGesture(sessionID)
	if err != nil {
		logger.S().Errorf("Failed to count events: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to count events")
		return
	}

	response := statsResponse{Session: sessionID, Counts: counts}
	if response.Counts == nil {
		response.Counts = []store.GestureCount{}
	}
	for _, c := range counts {
		response.Total += c.Count
	}
	writeJSON(w, http.StatusOK, response)
}
