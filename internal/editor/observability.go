package editor

import (
	"context"
	"time"
)

// Logger is the minimal structured logging seam used by the editor service.
// Args are alternating key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// NoopLogger returns a logger that discards everything.
func NoopLogger() Logger { return noopLogger{} }

// MetricsRecorder receives one observation per instrumented service
// operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

// TraceSpan ends a single traced operation.
type TraceSpan interface {
	End(err error)
}

// Tracer starts spans around instrumented service operations.
type Tracer interface {
	Start(ctx context.Context, operation string) (context.Context, TraceSpan)
}

// AuditEntry records one completed service operation for audit trails.
type AuditEntry struct {
	Operation  string        `json:"operation"`
	AreaID     string        `json:"area_id,omitempty"`
	Success    bool          `json:"success"`
	Duration   time.Duration `json:"duration"`
	OccurredAt time.Time     `json:"occurred_at"`
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry)
}

type noopSpan struct{}

func (noopSpan) End(error) {}
