// Package identity is the client for the dashboard's authentication endpoints.
//
// Login posts staff credentials to /auth/login and returns the bearer token.
// FetchProfile reads /profile/summary with a token and returns the Profile.
// Both calls go through the configured *http.Client (http.DefaultClient unless
// WithHTTPClient is given), so an authorization interceptor installed on that
// client observes them like any other request.
//
// Failures are *Error values. Their Error() text is the message to show the
// user: the server's message when it sent one, a generic one otherwise.
// Match them with errors.Is against ErrAuthenticationFailed,
// ErrProfileUnavailable or ErrUnavailable.
package identity
