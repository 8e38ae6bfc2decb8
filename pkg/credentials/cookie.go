package credentials

import (
	"context"
	"errors"

	"github.com/dmitrymomot/targetdesk/pkg/cookie"
)

// CookieStore keeps credentials in a persistent cookie jar, the way a browser would.
type CookieStore struct {
	jar *cookie.Jar
}

func NewCookieStore(jar *cookie.Jar) *CookieStore {
	return &CookieStore{jar: jar}
}

func (s *CookieStore) Get(_ context.Context, key string) (string, error) {
	v, err := s.jar.Get(key)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, cookie.ErrCookieNotFound):
		return "", ErrNotFound
	case errors.Is(err, cookie.ErrInvalidSignature), errors.Is(err, cookie.ErrInvalidFormat):
		return "", errors.Join(ErrMalformed, err)
	default:
		return "", err
	}
}

func (s *CookieStore) Set(_ context.Context, key, value string) error {
	return s.jar.Set(key, value,
		cookie.WithExpiry(TTL),
		cookie.WithPath(Path),
		cookie.WithSecure(Secure),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(SameSite),
	)
}

func (s *CookieStore) Remove(_ context.Context, key string) error {
	return s.jar.Delete(key)
}
