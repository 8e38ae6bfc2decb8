package cookie

import "errors"

var (
	ErrSecretTooShort   = errors.New("cookie.secret_too_short")
	ErrInvalidSignature = errors.New("cookie.invalid_signature")
	ErrCookieNotFound   = errors.New("cookie.not_found")
	ErrInvalidFormat    = errors.New("cookie.invalid_format")
	ErrInvalidName      = errors.New("cookie.invalid_name")
	ErrPersist          = errors.New("cookie.persist_failed")
)
