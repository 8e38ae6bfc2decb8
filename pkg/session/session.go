package session

import "github.com/dmitrymomot/targetdesk/pkg/identity"

// Session is a point-in-time copy of the client session.
// User is set only when Token is set.
type Session struct {
	Token        string
	User         *identity.Profile
	IsLoading    bool
	Error        string
	State        State
	Verification Verification
}

// Authenticated reports whether the snapshot holds a token and a profile.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
