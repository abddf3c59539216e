package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// GenerateTraceID creates a new run identifier (UUID v4). The same value
// doubles as the OpenTelemetry trace ID for every span of the run.
func GenerateTraceID() string {
	return uuid.New().String()
}

// ContextWithTraceID creates a new context with a generated trace ID
func ContextWithTraceID(ctx context.Context) context.Context {
	return WithTraceID(ctx, GenerateTraceID())
}

// EnsureTraceID ensures the context has a trace ID, generating one if needed
func EnsureTraceID(ctx context.Context) context.Context {
	if GetTraceID(ctx) == "" {
		return ContextWithTraceID(ctx)
	}
	return ctx
}

// OTelTraceID converts a UUID run ID into an OpenTelemetry trace ID.
func OTelTraceID(runID string) (trace.TraceID, bool) {
	u, err := uuid.Parse(runID)
	if err != nil {
		return trace.TraceID{}, false
	}
	tid := trace.TraceID(u)
	return tid, tid.IsValid()
}

// LoggerWithContext creates a logger that includes the trace ID from context.
// Loggers built by NewJSONLogger already inject it on *Context calls.
func LoggerWithContext(ctx context.Context) *slog.Logger {
	logger := GetLogger()
	if _, ok := logger.Handler().(*traceHandler); ok {
		return logger
	}
	if traceID := GetTraceID(ctx); traceID != "" {
		logger = logger.With("trace_id", traceID)
	}
	return logger
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With("component", component)
}

// WithError creates a logger with an error field
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With("error", err.Error())
}
