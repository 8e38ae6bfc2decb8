package interceptor

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/targetdesk/pkg/logger"
)

// Unauthorized describes a response that failed authorization.
type Unauthorized struct {
	Method string
	URL    string
	Status int
	At     time.Time
}

// Publisher receives unauthorized events. broadcast.Bus[Unauthorized] satisfies it.
type Publisher interface {
	Publish(ctx context.Context, ev Unauthorized) int
}

// Registration owns the wrapping of one *http.Client's transport.
// All methods are safe for concurrent use.
type Registration struct {
	mu        sync.Mutex
	client    *http.Client
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	installed *transport
	original  http.RoundTripper
}

type Option func(*Registration)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registration) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Registration) {
		if now != nil {
			r.now = now
		}
	}
}

// New prepares a registration for client. A nil client means http.DefaultClient.
// Nothing is wrapped until Install is called.
func New(client *http.Client, publisher Publisher, opts ...Option) *Registration {
	if client == nil {
		client = http.DefaultClient
	}
	r := &Registration{
		client:    client,
		publisher: publisher,
		logger:    logger.Discard(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Client returns the client whose transport this registration manages.
func (r *Registration) Client() *http.Client {
	return r.client
}

// Install wraps the client's transport. It fails with ErrAlreadyInstalled when
// this registration is active or when the transport is already wrapped by
// another registration, so a client is never wrapped twice.
func (r *Registration) Install() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.installed != nil {
		return ErrAlreadyInstalled
	}
	if _, ok := r.client.Transport.(*transport); ok {
		return ErrAlreadyInstalled
	}

	t := &transport{base: r.client.Transport, reg: r}
	r.original = r.client.Transport
	r.installed = t
	r.client.Transport = t

	r.logger.Debug("authorization interceptor installed", logger.Component("interceptor"))
	return nil
}

// Uninstall restores the transport captured by Install.
// If something else replaced the transport meanwhile it is left alone and
// the wrapper simply stops reporting.
func (r *Registration) Uninstall() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.installed == nil {
		return ErrNotInstalled
	}

	if r.client.Transport == http.RoundTripper(r.installed) {
		r.client.Transport = r.original
	}
	r.installed.detach()
	r.installed = nil
	r.original = nil

	r.logger.Debug("authorization interceptor uninstalled", logger.Component("interceptor"))
	return nil
}

// Installed reports whether the registration is active.
func (r *Registration) Installed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.installed != nil
}

func (r *Registration) report(req *http.Request, status int) {
	ev := Unauthorized{
		Method: req.Method,
		URL:    redact(req),
		Status: status,
		At:     r.now(),
	}

	delivered := 0
	if r.publisher != nil {
		// The request context may already be cancelled; the event must still go out.
		delivered = r.publisher.Publish(context.WithoutCancel(req.Context()), ev)
	}

	r.logger.InfoContext(req.Context(), "unauthorized response detected",
		logger.Component("interceptor"),
		logger.Endpoint(ev.URL),
		logger.Status(status),
		slog.Int("delivered", delivered),
	)
}

type transport struct {
	base http.RoundTripper

	mu  sync.RWMutex
	reg *Registration
}

func (t *transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil {
		if reg := t.registration(); reg != nil {
			reg.logger.DebugContext(req.Context(), "request failed",
				logger.Component("interceptor"),
				logger.Endpoint(redact(req)),
				logger.Error(err),
			)
		}
		return resp, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if reg := t.registration(); reg != nil {
			reg.report(req, resp.StatusCode)
		}
	}

	return resp, nil
}

func (t *transport) registration() *Registration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reg
}

func (t *transport) detach() {
	t.mu.Lock()
	t.reg = nil
	t.mu.Unlock()
}

// redact drops the query string and user info from the request URL.
func redact(req *http.Request) string {
	if req.URL == nil {
		return ""
	}
	u := *req.URL
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
