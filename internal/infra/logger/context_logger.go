// ABOUTME: This file provides context-aware structured logging for probe runs
// ABOUTME: Supports probe ID, query, and run phase propagation with JSON output format
package logger

import (
	"context"
	"log/slog"
	"os"
)

type ContextKey string

const (
	// Business context keys for probe observability
	// These follow OpenTelemetry semantic conventions with 'probe.' prefix
	ProbeIDKey  ContextKey = "probe.id"
	QueryKey    ContextKey = "probe.query"
	RunPhaseKey ContextKey = "probe.phase"
	TargetKey   ContextKey = "probe.target"
)

// ContextLogger provides context-aware logging for probe runs
type ContextLogger struct {
	logger      *slog.Logger
	serviceName string
}

// NewContextLogger creates a new context-aware logger
func NewContextLogger(serviceName string) *ContextLogger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(os.Getenv("LOG_LEVEL")),
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &ContextLogger{
		logger:      slog.New(handler),
		serviceName: serviceName,
	}
}

// WithContext returns a logger with context values extracted and added as fields
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	logger := cl.logger.With("service", cl.serviceName)

	var fields []any

	if probeID := ctx.Value(ProbeIDKey); probeID != nil {
		fields = append(fields, string(ProbeIDKey), probeID)
	}
	if query := ctx.Value(QueryKey); query != nil {
		fields = append(fields, string(QueryKey), query)
	}
	if phase := ctx.Value(RunPhaseKey); phase != nil {
		fields = append(fields, string(RunPhaseKey), phase)
	}
	if target := ctx.Value(TargetKey); target != nil {
		fields = append(fields, string(TargetKey), target)
	}

	if len(fields) > 0 {
		logger = logger.With(fields...)
	}

	return logger
}

// Context helper functions

// WithProbeID adds probe ID to context for observability
func WithProbeID(ctx context.Context, probeID string) context.Context {
	return context.WithValue(ctx, ProbeIDKey, probeID)
}

// WithQuery adds the probed query to context for observability
func WithQuery(ctx context.Context, query string) context.Context {
	return context.WithValue(ctx, QueryKey, query)
}

// WithRunPhase adds run phase to context for observability
func WithRunPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, RunPhaseKey, phase)
}

// WithTarget adds the target server URL to context for observability
func WithTarget(ctx context.Context, target string) context.Context {
	return context.WithValue(ctx, TargetKey, target)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
