package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/quantprep/quantprep-api/internal/planner"
	"github.com/quantprep/quantprep-api/internal/service"
	"github.com/quantprep/quantprep-api/internal/service/auth"
	"github.com/quantprep/quantprep-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"not owned", service.ErrNotOwned, http.StatusForbidden},
		{"plan not found", store.ErrPlanNotFound, http.StatusNotFound},
		{"generic not found", store.ErrNotFound, http.StatusNotFound},
		{"plan in progress", service.ErrPlanInProgress, http.StatusConflict},
		{"duplicate plan", store.ErrPlanExists, http.StatusConflict},
		{"infeasible pack", planner.ErrInfeasiblePack, http.StatusUnprocessableEntity},
		{"invalid entity", store.ErrInvalidEntity, http.StatusBadRequest},
		{"constraint violation", planner.ErrConstraintViolation, http.StatusInternalServerError},
		{"forbidden relaxation", planner.ErrForbiddenRelaxation, http.StatusInternalServerError},
		{"inconsistent report", planner.ErrReportInconsistent, http.StatusInternalServerError},
		{"unknown error", errors.New("surprise"), http.StatusInternalServerError},
		{"wrapped infeasible", fmt.Errorf("planning: %w", planner.ErrInfeasiblePack), http.StatusUnprocessableEntity},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksDetail(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection to host db-internal:5432 refused")
	msg := GetSafeErrorMessage(internal)
	assert.Equal(t, "An unexpected error occurred", msg)

	assert.NotEmpty(t, GetSafeErrorMessage(planner.ErrInfeasiblePack))
	assert.NotEmpty(t, GetSafeErrorMessage(nil))
}
