// Package observability provides logging and metrics.
package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. format is "json" or "console".
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var cfg zap.Config
	switch format {
	case "json", "":
		cfg = zap.NewProductionConfig()
	case "console":
		cfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id used to correlate
// log lines of one GraphQL request.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the request id, or "" when absent.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RepoLogger logs store operations for one collection.
type RepoLogger struct {
	collection string
	logger     *zap.Logger
}

// NewRepoLogger creates a RepoLogger for the given collection.
func NewRepoLogger(logger *zap.Logger, collection string) *RepoLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RepoLogger{
		collection: collection,
		logger:     logger.With(zap.String("collection", collection)),
	}
}

func (l *RepoLogger) log(ctx context.Context, operation string, fields []zap.Field) {
	if ce := l.logger.Check(zap.DebugLevel, "store "+operation); ce != nil {
		fields = append(fields,
			zap.String("operation", operation),
			zap.String("request_id", RequestID(ctx)),
		)
		ce.Write(fields...)
	}
}

// LogCreate logs an insert.
func (l *RepoLogger) LogCreate(ctx context.Context, fields ...zap.Field) {
	l.log(ctx, "create", fields)
}

// LogRead logs a point or batched read.
func (l *RepoLogger) LogRead(ctx context.Context, fields ...zap.Field) {
	l.log(ctx, "read", fields)
}

// LogUpdate logs a field or array update.
func (l *RepoLogger) LogUpdate(ctx context.Context, fields ...zap.Field) {
	l.log(ctx, "update", fields)
}

// LogDelete logs a delete.
func (l *RepoLogger) LogDelete(ctx context.Context, fields ...zap.Field) {
	l.log(ctx, "delete", fields)
}

// LogError logs a failed store operation.
func (l *RepoLogger) LogError(ctx context.Context, err error, operation string) {
	l.logger.Error("store error",
		zap.String("operation", operation),
		zap.String("request_id", RequestID(ctx)),
		zap.Error(err),
	)
}
