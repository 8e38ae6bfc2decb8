package identity

import "errors"

var (
	ErrAuthenticationFailed = errors.New("identity.authentication_failed")
	ErrProfileUnavailable   = errors.New("identity.profile_unavailable")
	ErrUnavailable          = errors.New("identity.unavailable")
	ErrInvalidURL           = errors.New("identity.invalid_url")
	ErrEmptyProfile         = errors.New("identity.empty_profile")
)

// Generic messages used when the server does not supply one.
const (
	MsgLoginFailed   = "login failed"
	MsgProfileFailed = "failed to fetch profile"
	MsgUnavailable   = "identity service unavailable"
)

// Error is a failed identity call. Its message is fit for display and it
// matches its Kind with errors.Is.
type Error struct {
	Kind    error
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message extracts the display message of err, falling back to err.Error().
func Message(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
