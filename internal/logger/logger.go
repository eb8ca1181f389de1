// Package logger provides a standardized, environment-aware logger for all Go services.
package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/metadata"
)

// TraceIDMetadataKey is the gRPC metadata key and lower-cased HTTP header carrying the trace id.
const TraceIDMetadataKey = "x-trace-id"

type traceIDKey struct{}

// New initializes and configures a new zerolog.Logger.
//
// In "development" environment or with format "console", it returns a human-friendly,
// colored console logger. Otherwise it returns a structured JSON logger.
func New(serviceName, version, env, hostname, level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var base zerolog.Logger
	if env == "development" || format == "console" {
		// Geliştirme ortamı için renkli, okunabilir konsol logları
		base = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		// Üretim ortamı için yapılandırılmış JSON logları
		base = zerolog.New(os.Stderr)
	}

	return base.Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Str("version", version).
		Str("env", env).
		Str("host", hostname).
		Logger()
}

// WithTraceID stores a trace id on the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace id set by WithTraceID or carried in
// incoming gRPC metadata.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok && v != "" {
		return v
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(TraceIDMetadataKey); len(values) > 0 {
		return values[0]
	}
	return ""
}

// ContextLogger enriches baseLogger with the request's trace id, if any.
func ContextLogger(ctx context.Context, baseLogger zerolog.Logger) zerolog.Logger {
	if traceID := TraceIDFromContext(ctx); traceID != "" {
		return baseLogger.With().Str("trace_id", traceID).Logger()
	}
	return baseLogger
}
