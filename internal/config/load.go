package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix is the prefix for environment variable overrides, e.g.
// QUANTPREP_SERVER_PORT or QUANTPREP_DATABASE_URL.
const envPrefix = "QUANTPREP"

// Load reads configuration from an optional config file and environment
// variables. Environment variables take precedence over file values, which
// take precedence over defaults. Returns a populated Config struct or an
// error if loading or validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Optional config file in the working directory.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing file is fine: defaults plus environment are sufficient.
	}

	// Environment variables with the QUANTPREP_ prefix; nested keys use
	// underscores (server.log_level -> QUANTPREP_SERVER_LOG_LEVEL).
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers the default value for every key so viper knows the
// full key set before unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.url", "")

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("planner.weak_threshold", 0.40)
	v.SetDefault("planner.strong_threshold", 0.75)
	v.SetDefault("planner.recency_decay", 0.85)
	v.SetDefault("planner.recency_window_sessions", 3)
	v.SetDefault("planner.pyq_weight", 2.0)
	v.SetDefault("planner.readiness_weight", 3.0)
	v.SetDefault("planner.coverage_weight", 1.5)

	v.SetDefault("assist.enabled", false)
	v.SetDefault("assist.gemini_api_key", "")
	v.SetDefault("assist.model_name", "gemini-2.0-flash")
	v.SetDefault("assist.timeout_seconds", 15)
}
