package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/quantprep/quantprep-api/internal/api/middleware"
	"github.com/quantprep/quantprep-api/internal/api/shared"
	"github.com/quantprep/quantprep-api/internal/service/session"
)

// PlanHandler handles session plan endpoints.
type PlanHandler struct {
	sessions session.Service
	logger   *slog.Logger
}

// NewPlanHandler creates a new PlanHandler with the given dependencies.
func NewPlanHandler(sessions session.Service, log *slog.Logger) *PlanHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PlanHandler{
		sessions: sessions,
		logger:   log.With(slog.String("component", "plan_handler")),
	}
}

// CreatePlan handles POST /api/sessions/plan.
// It generates, validates, and persists the next session pack for the
// authenticated user and returns the plan with its constraint report.
func (h *PlanHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	result, err := h.sessions.PlanSession(r.Context(), userID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewPlanResponse(result.Plan, result.Report))
}

// GetPlan handles GET /api/sessions/plan/{id}.
// It returns a previously persisted plan owned by the authenticated user.
func (h *PlanHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID")
		return
	}

	result, err := h.sessions.GetPlan(r.Context(), userID, sessionID)
	if err != nil {
		HandleServiceError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewPlanResponse(result.Plan, result.Report))
}
