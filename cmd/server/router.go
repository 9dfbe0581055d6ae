package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quantprep/quantprep-api/internal/api"
	apiMiddleware "github.com/quantprep/quantprep-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenVerifier)
	planHandler := api.NewPlanHandler(app.sessionService, app.logger)
	attemptHandler := api.NewAttemptHandler(app.sessionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Session planning endpoints
			r.Post("/sessions/plan", planHandler.CreatePlan)
			r.Get("/sessions/plan/{id}", planHandler.GetPlan)

			// Attempt history endpoints
			r.Post("/attempts", attemptHandler.RecordAttempt)
		})
	})

	// Operational endpoints (public)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
