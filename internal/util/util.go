package util

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// GenUUID generates a random UUID string.
func GenUUID() string {
	return uuid.New().String()
}

// GenShortID generates a short, URL-safe unique ID.
func GenShortID() string {
	return shortuuid.New()
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// HasPrefixes reports whether src starts with any of prefixes.
func HasPrefixes(src string, prefixes ...string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(src, prefix) {
			return true
		}
	}
	return false
}
