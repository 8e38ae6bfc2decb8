package credentials

import "errors"

var (
	ErrNotFound       = errors.New("credentials.not_found")
	ErrMalformed      = errors.New("credentials.malformed")
	ErrUnknownBackend = errors.New("credentials.unknown_backend")
	ErrRedisURL       = errors.New("credentials.invalid_redis_url")
	ErrRedisNotReady  = errors.New("credentials.redis_not_ready")
)
