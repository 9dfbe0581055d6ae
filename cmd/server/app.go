package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/quantprep/quantprep-api/internal/assist"
	"github.com/quantprep/quantprep-api/internal/config"
	"github.com/quantprep/quantprep-api/internal/domain/kernel"
	"github.com/quantprep/quantprep-api/internal/planner"
	"github.com/quantprep/quantprep-api/internal/platform/gemini"
	"github.com/quantprep/quantprep-api/internal/platform/postgres"
	"github.com/quantprep/quantprep-api/internal/service/auth"
	"github.com/quantprep/quantprep-api/internal/service/session"
	"github.com/quantprep/quantprep-api/internal/store"
	"github.com/quantprep/quantprep-api/internal/telemetry"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	planStore     store.PlanStore
	coverageStore store.CoverageStore
	attemptStore  store.AttemptStore
	questionStore store.QuestionStore

	// Services
	tokenVerifier  auth.TokenVerifier
	kernelService  kernel.Service
	reranker       assist.Reranker
	sink           telemetry.Sink
	packPlanner    *planner.PackPlanner
	planValidator  *planner.Validator
	sessionService session.Service
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	app.tokenVerifier = auth.NewHMACVerifier(cfg.Auth.JWTSecret)

	app.planStore = postgres.NewPostgresPlanStore(db, appLogger)
	app.coverageStore = postgres.NewPostgresCoverageStore(db, appLogger)
	app.attemptStore = postgres.NewPostgresAttemptStore(db, appLogger)
	app.questionStore = postgres.NewPostgresQuestionStore(db, appLogger)

	kernelParams := kernel.NewParams(kernel.ParamsConfig{
		WeakThreshold:         cfg.Planner.WeakThreshold,
		StrongThreshold:       cfg.Planner.StrongThreshold,
		RecencyDecay:          cfg.Planner.RecencyDecay,
		RecencyWindowSessions: cfg.Planner.RecencyWindowSessions,
		PYQWeight:             cfg.Planner.PYQWeight,
		ReadinessWeight:       cfg.Planner.ReadinessWeight,
		CoverageWeight:        cfg.Planner.CoverageWeight,
	})
	app.kernelService = kernel.NewServiceWithParams(kernelParams)

	var err error
	if cfg.Assist.Enabled {
		app.reranker, err = gemini.NewGeminiReranker(ctx, cfg.Assist, appLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize assist reranker: %w", err)
		}
		appLogger.Info("External assist reranker initialized",
			"model", cfg.Assist.ModelName,
			"timeout_seconds", cfg.Assist.TimeoutSeconds)
	} else {
		appLogger.Info("External assist disabled, planner runs fully deterministic")
	}

	app.sink = telemetry.NewPrometheusSink()

	app.packPlanner = planner.NewPackPlanner(
		app.kernelService,
		app.reranker,
		app.sink,
		time.Duration(cfg.Assist.TimeoutSeconds)*time.Second,
		appLogger,
	)
	app.planValidator = planner.NewValidator()

	app.sessionService = session.NewService(
		db,
		app.planStore,
		app.coverageStore,
		app.attemptStore,
		app.questionStore,
		app.packPlanner,
		app.planValidator,
		app.sink,
		appLogger,
	)

	appLogger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
	app.logger.Info("Application shutdown completed")
}
