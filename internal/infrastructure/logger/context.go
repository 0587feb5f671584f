package logger

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

func ContextWithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return L()
}

// WithOperation attaches a logger carrying the command name and a short
// op_id so concurrent provider calls of one command can be correlated.
func WithOperation(ctx context.Context, operation string) context.Context {
	logger := FromContext(ctx).With(
		"command", operation,
		"op_id", shortID(),
	)
	return ContextWithLogger(ctx, logger)
}

func shortID() string {
	id := uuid.New()
	return id.String()[:8]
}
