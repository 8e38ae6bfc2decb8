package requestid

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// New returns a fresh request id.
func New() string {
	return uuid.NewString()
}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(contextKey{}).(string)
	return requestID
}
