package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/splatform/playback-engine/internal/storage"
)

// ExperienceHandler serves the authored experience catalog.
//
// GET /v1/experiences        - list experience names
// GET /v1/experiences/{name} - full experience document
type ExperienceHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewExperienceHandler(storage storage.Storage, logger *slog.Logger) *ExperienceHandler {
	return &ExperienceHandler{storage: storage, logger: logger}
}

func (h *ExperienceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/experiences"), "/")
	if name == "" {
		names, err := h.storage.ListExperiences(r.Context())
		if err != nil {
			h.logger.Error("Failed to list experiences", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list experiences")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"experiences": names})
		return
	}

	exp, err := h.storage.GetExperience(r.Context(), name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Experience not found")
			return
		}
		h.logger.Error("Failed to load experience", "name", name, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load experience")
		return
	}
	writeJSON(w, http.StatusOK, exp)
}
