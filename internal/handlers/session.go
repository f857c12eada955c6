package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/splatform/playback-engine/internal/session"
	"github.com/splatform/playback-engine/internal/storage"
	"github.com/splatform/playback-engine/pkg/player"
	"github.com/splatform/playback-engine/pkg/runtime"
)

// SessionHandler exposes hosted playback sessions.
//
// POST   /v1/sessions               - start a session for an experience
// GET    /v1/sessions/{id}          - current phase and player snapshot
// DELETE /v1/sessions/{id}          - stop and discard the session
// POST   /v1/sessions/{id}/trigger  - fire an interaction
// POST   /v1/sessions/{id}/input    - movement/rotation input
// POST   /v1/sessions/{id}/pause
// POST   /v1/sessions/{id}/resume
// POST   /v1/sessions/{id}/reset
// GET /v1/sessions/{id}/events upgrades to a websocket event stream.
type SessionHandler struct {
	manager *session.Manager
	events  *EventsHandler
	logger  *slog.Logger
}

func NewSessionHandler(manager *session.Manager, events *EventsHandler, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, events: events, logger: logger}
}

type CreateSessionRequest struct {
	Experience string `json:"experience"`
}

type TriggerRequest struct {
	InteractionID string `json:"interaction_id"`
	ObjectID      string `json:"object_id"`
}

type InputRequest struct {
	Forward    float64 `json:"forward"`
	Strafe     float64 `json:"strafe"`
	DeltaMS    float64 `json:"dt_ms"`
	DeltaPitch float64 `json:"delta_pitch"`
	DeltaYaw   float64 `json:"delta_yaw"`
}

type SessionResponse struct {
	ID            uuid.UUID              `json:"id"`
	Experience    string                 `json:"experience"`
	Phase         runtime.Phase          `json:"phase"`
	State         *player.State          `json:"state,omitempty"`
	ActiveMessage *runtime.ActiveMessage `json:"active_message,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
}

func sessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID:            s.ID,
		Experience:    s.Experience,
		Phase:         s.Runtime.Phase(),
		State:         s.Runtime.Snapshot(),
		ActiveMessage: s.Runtime.ActiveMessage(),
		CreatedAt:     s.CreatedAt,
	}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")

	if rest == "" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.create(w, r)
		return
	}

	parts := strings.SplitN(rest, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s, ok := h.manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, sessionResponse(s))
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
		return
	}

	if parts[1] == "events" {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		h.events.Stream(w, r, s)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	switch parts[1] {
	case "trigger":
		var req TriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		s.Runtime.TriggerInteraction(req.InteractionID, req.ObjectID)
		writeJSON(w, http.StatusOK, sessionResponse(s))
	case "input":
		var req InputRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if req.DeltaPitch != 0 || req.DeltaYaw != 0 {
			s.Runtime.Rotate(req.DeltaPitch, req.DeltaYaw)
		}
		if req.Forward != 0 || req.Strafe != 0 {
			s.Runtime.Move(req.Forward, req.Strafe, time.Duration(req.DeltaMS*float64(time.Millisecond)))
		}
		writeJSON(w, http.StatusOK, sessionResponse(s))
	case "pause":
		s.Runtime.Pause()
		writeJSON(w, http.StatusOK, sessionResponse(s))
	case "resume":
		s.Runtime.Resume()
		writeJSON(w, http.StatusOK, sessionResponse(s))
	case "reset":
		s.Runtime.Reset()
		writeJSON(w, http.StatusOK, sessionResponse(s))
	default:
		writeError(w, http.StatusNotFound, "Unknown session operation")
	}
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Experience == "" {
		writeError(w, http.StatusBadRequest, "Request must name an experience")
		return
	}

	s, err := h.manager.Create(r.Context(), req.Experience)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Experience not found")
			return
		}
		h.logger.Error("Failed to create session", "experience", req.Experience, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse(s))
}

func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Delete(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to delete session", "session", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
