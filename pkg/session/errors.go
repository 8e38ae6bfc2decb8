package session

import (
	"errors"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
)

var (
	// ErrAuthenticationFailed: the server rejected the credentials.
	ErrAuthenticationFailed = identity.ErrAuthenticationFailed

	// ErrProfileUnavailable: a token is present but its profile could not be verified.
	ErrProfileUnavailable = identity.ErrProfileUnavailable

	// ErrMalformedPersistedState: the stored session could not be decoded.
	ErrMalformedPersistedState = errors.New("session.malformed_persisted_state")

	// ErrProviderMissing: the consumer surface was used outside a mounted provider.
	ErrProviderMissing = errors.New("session.provider_missing")

	ErrNoSession      = errors.New("session.no_session")
	ErrPersist        = errors.New("session.persist_failed")
	ErrAlreadyMounted = errors.New("session.already_mounted")
	ErrNotMounted     = errors.New("session.not_mounted")
)

const msgPersistFailed = "failed to save session"
