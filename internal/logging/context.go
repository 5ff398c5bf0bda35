// internal/logging/context.go
package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 2)

	if id := InterviewIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("interview.id", id))
	}
	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request.id", id))
	}

	return fields
}

// Context key types
type interviewCtxKey struct{}
type requestCtxKey struct{}
type loggerCtxKey struct{}

// WithInterviewID adds the interview workflow ID to context.
func WithInterviewID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, interviewCtxKey{}, id)
}

// InterviewIDFromContext extracts the interview workflow ID from context.
func InterviewIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(interviewCtxKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds request ID to context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestCtxKey{}, requestID)
}

// RequestIDFromContext extracts request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(requestCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithLogger stores logger in context.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey{}, logger)
}

// FromContext retrieves logger from context.
// Returns a nop logger if not found.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(loggerCtxKey{}).(*Logger); ok {
		return l
	}
	return &Logger{zap: zap.NewNop()}
}
