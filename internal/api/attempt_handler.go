package api

import (
	"log/slog"
	"net/http"

	"github.com/quantprep/quantprep-api/internal/api/middleware"
	"github.com/quantprep/quantprep-api/internal/api/shared"
	"github.com/quantprep/quantprep-api/internal/service/session"
)

// AttemptHandler handles attempt event endpoints.
type AttemptHandler struct {
	sessions session.Service
	logger   *slog.Logger
}

// NewAttemptHandler creates a new AttemptHandler with the given dependencies.
func NewAttemptHandler(sessions session.Service, log *slog.Logger) *AttemptHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AttemptHandler{
		sessions: sessions,
		logger:   log.With(slog.String("component", "attempt_handler")),
	}
}

// RecordAttempt handles POST /api/attempts.
// It appends one attempt event to the authenticated user's history.
func (h *AttemptHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req AttemptRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request data")
		return
	}

	if err := h.sessions.RecordAttempt(r.Context(), req.ToDomain(userID)); err != nil {
		HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
