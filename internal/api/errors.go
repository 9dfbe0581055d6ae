package api

import (
	"errors"
	"net/http"

	"github.com/quantprep/quantprep-api/internal/api/shared"
	"github.com/quantprep/quantprep-api/internal/planner"
	"github.com/quantprep/quantprep-api/internal/service"
	"github.com/quantprep/quantprep-api/internal/service/auth"
	"github.com/quantprep/quantprep-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrPlanInProgress),
		errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// No feasible pack exists for the current candidate pool
	case errors.Is(err, planner.ErrInfeasiblePack):
		return http.StatusUnprocessableEntity

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Planner defects surface as server errors
	case errors.Is(err, planner.ErrConstraintViolation),
		errors.Is(err, planner.ErrForbiddenRelaxation),
		errors.Is(err, planner.ErrReportInconsistent):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this session plan"

	case errors.Is(err, store.ErrPlanNotFound):
		return "Session plan not found"

	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"

	case errors.Is(err, service.ErrPlanInProgress):
		return "A session plan is already being generated for this user"

	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"

	case errors.Is(err, planner.ErrInfeasiblePack):
		return "No valid session pack can be assembled from the current question pool"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError maps the error to a status code and sanitized message,
// writes the response, and logs the full error server-side. Handlers call
// through this helper so status mapping stays in one place.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}
