package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New creates a new logger instance
func New() zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	env := os.Getenv("APP_ENV")
	if env == "production" {
		// Use JSON format in production
		return zerolog.New(os.Stdout).
			With().
			Timestamp().
			Caller().
			Logger()
	}

	// Use console format in development
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

// WithJobID returns a logger with import job ID
func WithJobID(logger zerolog.Logger, jobID string) zerolog.Logger {
	return logger.With().Str("job_id", jobID).Logger()
}

// WithStage returns a logger with the pipeline stage
func WithStage(logger zerolog.Logger, stage string) zerolog.Logger {
	return logger.With().Str("stage", stage).Logger()
}
