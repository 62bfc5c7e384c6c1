// Package logging provides context plumbing for the application's
// zerolog loggers: attaching a logger to a context, recovering it in
// deeply nested operations, and tagging every invocation with a trace
// ID so one CLI run can be followed through the engine and the store
// client.
package logging

import (
	"context"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	traceIDKey
)

// defaultLogger is returned by FromContext when the context carries no
// logger. It writes to stderr so library code never logs silently into
// the void before the CLI has run its setup.
//
//nolint:gochecknoglobals // Fallback logger for contexts without one attached
var (
	defaultLogger   = zerolog.New(os.Stderr).With().Timestamp().Logger()
	defaultLoggerMu sync.RWMutex
)

// SetDefault replaces the fallback logger returned for contexts without
// an attached logger. The CLI calls this once after initialization.
func SetDefault(logger zerolog.Logger) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// WithContext returns a child context carrying the given logger.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or the package
// default when none is attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
			return logger
		}
	}
	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// ComponentLogger returns a child of logger tagged with a component
// field. Operations add their own operation field per call site.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// NewTraceID generates a ULID trace identifier. ULIDs sort by creation
// time, which keeps interleaved runs readable in a shared log file.
func NewTraceID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0) //nolint:gosec // trace IDs are not security-sensitive
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ContextWithTraceID returns a child context carrying the trace ID.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceIDFromContext returns the trace ID attached to ctx, or the empty
// string when none is attached.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

// GetOrGenerateTraceID returns the context's trace ID, generating a
// fresh one when the context has none.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return NewTraceID()
}
