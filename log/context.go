package log

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey = "request_id"

var requestIDContextKey = contextKey(requestIDKey)

// getRequestID gets a request ID from the context.
func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// SetRequestID sets a request ID on the context.
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// EnsureRequestID ensures that a request ID exists in the context.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := getRequestID(ctx); id != "" {
		return ctx, id
	}
	id := uuid.NewString()
	return SetRequestID(ctx, id), id
}
