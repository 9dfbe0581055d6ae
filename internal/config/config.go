package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Planner  PlannerConfig  `mapstructure:"planner"  validate:"required"`
	Assist   AssistConfig   `mapstructure:"assist"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings needed to validate bearer tokens issued
// by the external identity service. Token issuance is not handled here.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// PlannerConfig exposes the kernel and planner policy constants as tunable
// configuration. Thresholds and weights are policy, not invariants, so they
// are never hard-coded in the planning code.
type PlannerConfig struct {
	// Readiness classification thresholds on the recency-weighted
	// correctness ratio.
	WeakThreshold   float64 `mapstructure:"weak_threshold"   validate:"gt=0,lt=1"`
	StrongThreshold float64 `mapstructure:"strong_threshold" validate:"gt=0,lt=1,gtfield=WeakThreshold"`

	// RecencyDecay is the per-attempt decay for older attempts.
	RecencyDecay float64 `mapstructure:"recency_decay" validate:"gt=0,lte=1"`

	// RecencyWindowSessions is the rotation window: pairs unseen within the
	// last N sessions are boosted.
	RecencyWindowSessions int `mapstructure:"recency_window_sessions" validate:"gte=1"`

	// Scoring weights.
	PYQWeight       float64 `mapstructure:"pyq_weight"       validate:"gt=0"`
	ReadinessWeight float64 `mapstructure:"readiness_weight" validate:"gt=0"`
	CoverageWeight  float64 `mapstructure:"coverage_weight"  validate:"gt=0"`
}

// AssistConfig contains the bounded external scoring assist settings.
// The assist is optional; when disabled the planner skips its ladder step.
type AssistConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	GeminiAPIKey   string `mapstructure:"gemini_api_key"  validate:"required_if=Enabled true"`
	ModelName      string `mapstructure:"model_name"      validate:"required_if=Enabled true"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=1,lte=60"`
}
