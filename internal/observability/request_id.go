package observability

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// NewRequestID returns a random UUID.
func NewRequestID() string {
	return uuid.NewString()
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestIDFromContext returns the request id stored in ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// RequestIDField is the log field carrying the request id of ctx. It is
// skipped when ctx has none, as for the terminal front-ends.
func RequestIDField(ctx context.Context) zap.Field {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return zap.Skip()
	}
	return zap.String("request_id", id)
}
