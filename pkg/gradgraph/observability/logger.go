// Package observability provides opt-in observability for gradgraph passes:
// structured logging, metrics, and tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Everything is opt-in and has a no-op implementation when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds pass context to a logger.
// Returns a new logger with run_id and pass fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "run-123", "forward")
//	enriched.Info("step done") // includes run_id and pass
func EnrichLogger(logger *slog.Logger, runID, pass string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("run_id", runID),
		slog.String("pass", pass),
	)
}

// LogPassStart logs the start of a pass.
func LogPassStart(logger *slog.Logger, runID, pass string, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("pass starting",
		slog.String("run_id", runID),
		slog.String("pass", pass),
		slog.Int("nodes", nodeCount),
	)
}

// LogPassComplete logs successful pass completion.
func LogPassComplete(logger *slog.Logger, runID, pass string, root float64, evaluated int, duration time.Duration) {
	if logger == nil {
		return
	}
	logger.Info("pass completed",
		slog.String("run_id", runID),
		slog.String("pass", pass),
		slog.Float64("root", root),
		slog.Int("nodes_evaluated", evaluated),
		slog.Duration("duration", duration),
	)
}

// LogPassError logs pass failure.
func LogPassError(logger *slog.Logger, runID, pass string, err error, duration time.Duration) {
	if logger == nil {
		return
	}
	logger.Error("pass failed",
		slog.String("run_id", runID),
		slog.String("pass", pass),
		slog.String("error", err.Error()),
		slog.Duration("duration", duration),
	)
}

// LogRecordError logs a pass-record save failure.
func LogRecordError(logger *slog.Logger, runID, pass string, err error) {
	if logger == nil {
		return
	}
	logger.Error("pass record failed",
		slog.String("run_id", runID),
		slog.String("pass", pass),
		slog.String("error", err.Error()),
	)
}
