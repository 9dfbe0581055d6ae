package logger

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/quantprep/quantprep-api/internal/config"
)

// Setup initializes and configures the application's logging system based on
// the provided configuration. It creates a structured JSON logger with the
// appropriate log level and sets it as the default logger for the application.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	log := slog.New(handler)

	// Set this logger as the default so package-level slog functions
	// (slog.Info, slog.Error, ...) use the same handler.
	slog.SetDefault(log)

	return log, nil
}

// parseLevel maps a configured log level string (case-insensitive) to a
// slog.Level. Unknown levels are an error rather than a silent default:
// a typo in the configuration should be caught at startup.
func parseLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", logLevel)
	}
}
