// Package credentials persists the two values that make up a client session:
// the bearer token and the serialized user profile.
//
// Every backend applies the same fixed policy: values live for seven days,
// are scoped to the root path, are sent same-site only and are not marked
// secure (the dashboard is still served over plain HTTP in some branches).
package credentials

import (
	"context"
	"net/http"
	"time"
)

// Keys under which the session is stored.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Fixed persistence policy shared by all backends.
const (
	TTL      = 7 * 24 * time.Hour
	Path     = "/"
	Secure   = false
	SameSite = http.SameSiteStrictMode
)

// Store is a persistent string key/value store with the session expiry policy.
type Store interface {
	// Get returns ErrNotFound when the key is absent or expired and
	// ErrMalformed when the stored value fails an integrity check.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}
