package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/unmute/internal/app"
	"github.com/ayusman/unmute/internal/session"
	"github.com/ayusman/unmute/internal/store"
)

// SessionHandler exposes the live session and the stored history.
type SessionHandler struct {
	app *app.App
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(a *app.App) *SessionHandler {
	return &SessionHandler{app: a}
}

type sessionResponse struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Symbols []string `json:"symbols"`
	Started string   `json:"started"`
	Enabled bool     `json:"enabled"`
}

type entryRequest struct {
	Symbol string `json:"symbol"`
}

type entryResponse struct {
	Kind session.Kind `json:"kind"`
	Text string       `json:"text"`
}

type listEventsResponse struct {
	SessionID string        `json:"session_id"`
	Events    []store.Event `json:"events"`
}

type listSessionsResponse struct {
	Sessions []*store.Session `json:"sessions"`
}

// ServeHTTP routes:
//
//	GET    /api/session           current sentence
//	DELETE /api/session           clear the sentence
//	POST   /api/session/entries   manual entry {symbol}
//	GET    /api/session/events    confirmed signs of the current session
//	POST   /api/session/restart   start a new session
//	GET    /api/sessions          stored sessions, newest first
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/sessions" {
		h.listSessions(w, r)
		return
	}

	sub := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/session"), "/")
	switch {
	case sub == "" && r.Method == http.MethodGet:
		h.get(w, r)
	case sub == "" && r.Method == http.MethodDelete:
		h.app.Clear()
		h.get(w, r)
	case sub == "entries" && r.Method == http.MethodPost:
		h.enter(w, r)
	case sub == "events" && r.Method == http.MethodGet:
		h.events(w, r)
	case sub == "restart" && r.Method == http.MethodPost:
		h.app.Restart()
		h.get(w, r)
	case sub == "" || sub == "entries" || sub == "events" || sub == "restart":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request) {
	snap := h.app.Session().Snapshot()
	writeJSON(w, http.StatusOK, sessionResponse{
		ID:      snap.ID,
		Text:    snap.Text,
		Symbols: snap.Symbols,
		Started: formatTime(snap.Started),
		Enabled: h.app.IsEnabled(),
	})
}

func (h *SessionHandler) enter(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Symbol == "" {
		writeError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	kind, text := h.app.Enter(req.Symbol)
	writeJSON(w, http.StatusOK, entryResponse{Kind: kind, Text: text})
}

func (h *SessionHandler) events(w http.ResponseWriter, r *http.Request) {
	st := h.app.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}

	id := h.app.Session().ID()
	events, err := st.Events().ListBySession(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{SessionID: id, Events: events})
}

func (h *SessionHandler) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	st := h.app.Store()
	if st == nil {
		writeError(w, http.StatusServiceUnavailable, "No store configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	sessions, err := st.Sessions().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}
	if sessions == nil {
		sessions = []*store.Session{}
	}
	writeJSON(w, http.StatusOK, listSessionsResponse{Sessions: sessions})
}
