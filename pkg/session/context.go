package session

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
)

// Consumer is the view of the session offered to the rest of the application.
type Consumer interface {
	Snapshot() Session
	User() *identity.Profile
	Token() (*oauth2.Token, error)
	IsLoading() bool
	Err() string
	Subscribe(ctx context.Context) <-chan Session
	HTTPClient(base *http.Client) *http.Client

	Initialize(ctx context.Context)
	Login(ctx context.Context, nip, password string) error
	RefreshProfile(ctx context.Context, token string) error
	Logout(ctx context.Context)
}

var _ Consumer = (*Manager)(nil)

type consumerKey struct{}

// WithConsumer returns a context carrying c. Provider.Mount does this for you.
func WithConsumer(ctx context.Context, c Consumer) context.Context {
	return context.WithValue(ctx, consumerKey{}, c)
}

// FromContext returns the consumer of the enclosing provider, or ErrProviderMissing.
func FromContext(ctx context.Context) (Consumer, error) {
	if ctx == nil {
		return nil, ErrProviderMissing
	}
	c, ok := ctx.Value(consumerKey{}).(Consumer)
	if !ok || c == nil {
		return nil, ErrProviderMissing
	}
	return c, nil
}

// Use is FromContext for code that cannot run without a session.
// It panics with ErrProviderMissing outside a mounted provider.
func Use(ctx context.Context) Consumer {
	c, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return c
}
