package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/mudra/internal/logger"
	"github.com/ayusman/mudra/internal/session"
	"github.com/ayusman/mudra/internal/store"
)

// SessionHandler exposes the session registry. Store is optional and only
// backs the ?history=true listing.
type SessionHandler struct {
	registry *session.Registry
	store    *store.Store
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(registry *session.Registry, s *store.Store) *SessionHandler {
	return &SessionHandler{registry: registry, store: s}
}

type createSessionRequest struct {
	Threshold int `json:"threshold"`
}

type listSessionsResponse struct {
	Sessions []session.Snapshot `json:"sessions"`
}

type sessionHistoryResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// ServeHTTP routes:
//
//	/api/sessions              GET, POST
//	/api/sessions/{id}         GET, DELETE
//	/api/sessions/{id}/frames  POST
//	/api/sessions/{id}/reset   POST
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	id, action, _ := strings.Cut(path, "/")
	switch action {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, id)
		case http.MethodDelete:
			h.delete(w, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	case "frames":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.feed(w, r, id)
	case "reset":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.reset(w, id)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("history") == "true" {
		if h.store == nil {
			writeError(w, http.StatusNotImplemented, "Session history requires a store")
			return
		}
		sessions, err := h.store.Sessions().List()
		if err != nil {
			logger.S().Errorf("Failed to list sessions: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to list sessions")
			return
		}
		if sessions == nil {
			sessions = []*store.Session{}
		}
		writeJSON(w, http.StatusOK, sessionHistoryResponse{Sessions: sessions})
		return
	}

	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: h.registry.List()})
}

// create handles POST /api/sessions. An empty body uses the default threshold.
func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}
	if req.Threshold < 0 {
		writeError(w, http.StatusBadRequest, "Threshold must not be negative")
		return
	}

	writeJSON(w, http.StatusCreated, h.registry.Create(req.Threshold))
}

func (h *SessionHandler) get(w http.ResponseWriter, id string) {
	snap, err := h.registry.Get(id)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *SessionHandler) delete(w http.ResponseWriter, id string) {
	if err := h.registry.Close(id); err != nil {
		h.writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// feed handles POST /api/sessions/{id}/frames with a single session.Frame body.
func (h *SessionHandler) feed(w http.ResponseWriter, r *http.Request, id string) {
	var frame session.Frame
	if err := decodeJSON(w, r, &frame); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid frame: "+err.Error())
		return
	}

	state, err := h.registry.Feed(id, frame)
	if err != nil {
		h.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *SessionHandler) reset(w http.ResponseWriter, id string) {
	if err := h.registry.Reset(id); err != nil {
		h.writeSessionError(w, err)
		return
	}
	h.get(w, id)
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrOutOfOrder):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
