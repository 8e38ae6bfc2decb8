package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/targetdesk/pkg/broadcast"
	"github.com/dmitrymomot/targetdesk/pkg/credentials"
	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/interceptor"
	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/statemachine"
)

// Authenticator exchanges credentials for a token.
type Authenticator interface {
	Login(ctx context.Context, nip, password string) (string, error)
}

// ProfileFetcher resolves the profile behind a token.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, token string) (*identity.Profile, error)
}

// Manager owns the client session: the token, the profile, the loading flag
// and the last user-facing error. Every change is mirrored to the credential
// store. All methods are safe for concurrent use; concurrent Login or
// RefreshProfile calls are not merged and the last one to finish wins.
type Manager struct {
	store   credentials.Store
	auth    Authenticator
	fetcher ProfileFetcher
	nav     Navigator
	logger  *slog.Logger
	route   string

	mu      sync.RWMutex
	token   string
	user    *identity.Profile
	pending int
	errMsg  string

	lifecycle    *statemachine.Machine[State, event]
	verification *statemachine.Machine[Verification, event]
	changes      *broadcast.Bus[Session]
}

type Option func(*Manager)

func WithNavigator(n Navigator) Option {
	return func(m *Manager) {
		if n != nil {
			m.nav = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithLoginRoute overrides LoginRoute.
func WithLoginRoute(route string) Option {
	return func(m *Manager) {
		if route != "" {
			m.route = route
		}
	}
}

// WithChangeBuffer sets how many unread snapshots each Subscribe channel holds.
func WithChangeBuffer(n int) Option {
	return func(m *Manager) {
		m.changes = broadcast.New[Session](n)
	}
}

// New creates an empty, unauthenticated manager.
// identity.Client implements both Authenticator and ProfileFetcher.
func New(store credentials.Store, auth Authenticator, fetcher ProfileFetcher, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		auth:    auth,
		fetcher: fetcher,
		nav:     NopNavigator,
		logger:  logger.Discard(),
		route:   LoginRoute,
		changes: broadcast.New[Session](16),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.lifecycle = newLifecycle(m.logger)
	m.verification = newVerification()
	return m
}

// Snapshot returns a copy of the current session.
func (m *Manager) Snapshot() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Session {
	return Session{
		Token:        m.token,
		User:         m.user.Clone(),
		IsLoading:    m.pending > 0,
		Error:        m.errMsg,
		State:        m.lifecycle.Current(),
		Verification: m.verification.Current(),
	}
}

// User returns a copy of the current profile, or nil.
func (m *Manager) User() *identity.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user.Clone()
}

func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending > 0
}

// Err returns the last user-facing error message, or "".
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errMsg
}

// Token implements oauth2.TokenSource with the current bearer token.
// It fails with ErrNoSession when logged out.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.RLock()
	tok := m.token
	m.mu.RUnlock()

	if tok == "" {
		return nil, ErrNoSession
	}
	return &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}, nil
}

// HTTPClient returns a client that sends the current token as a bearer
// header on every request and otherwise behaves like base, including any
// interceptor installed on base now or later. A nil base means http.DefaultClient.
func (m *Manager) HTTPClient(base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: m,
			Base:   interceptor.Through(base),
		},
		CheckRedirect: base.CheckRedirect,
		Jar:           base.Jar,
		Timeout:       base.Timeout,
	}
}

// Subscribe streams a snapshot after every change until ctx ends.
// Snapshots are dropped for a reader that falls behind; call Snapshot for the latest state.
func (m *Manager) Subscribe(ctx context.Context) <-chan Session {
	return m.changes.Subscribe(ctx).C()
}

// Initialize restores the persisted session and verifies it with the server.
// The stored profile is shown immediately (Verifying) and replaced by the
// server's copy once confirmed (Verified). Any inconsistency or failure ends
// logged out; nothing is returned because the user lands on the login route anyway.
func (m *Manager) Initialize(ctx context.Context) {
	m.begin(ctx, nil)
	defer m.end()

	token, terr := m.store.Get(ctx, credentials.KeyToken)
	raw, uerr := m.store.Get(ctx, credentials.KeyUser)
	hasToken := terr == nil && token != ""
	hasUser := uerr == nil && raw != ""

	if !hasToken && !hasUser {
		if errors.Is(terr, credentials.ErrMalformed) || errors.Is(uerr, credentials.ErrMalformed) {
			m.logger.WarnContext(ctx, "discarding tampered session",
				logger.Component("session"), logger.Error(errors.Join(ErrMalformedPersistedState, terr, uerr)))
			m.teardown(ctx, "malformed")
			return
		}
		return
	}

	// A store that cannot answer says nothing about the session; keep it.
	for _, err := range []error{terr, uerr} {
		if err != nil && !errors.Is(err, credentials.ErrNotFound) && !errors.Is(err, credentials.ErrMalformed) {
			m.logger.WarnContext(ctx, "credential store unavailable", logger.Component("session"), logger.Error(err))
			return
		}
	}

	if hasToken != hasUser {
		m.logger.InfoContext(ctx, "discarding incomplete session",
			logger.Component("session"), slog.Bool("token", hasToken), slog.Bool("user", hasUser))
		m.teardown(ctx, "incomplete")
		return
	}

	user, err := identity.ParseProfile([]byte(raw))
	if err != nil {
		m.logger.InfoContext(ctx, "discarding unreadable session",
			logger.Component("session"), logger.Error(errors.Join(ErrMalformedPersistedState, err)))
		m.teardown(ctx, "malformed")
		return
	}

	m.mutate(ctx, func() {
		m.token = token
		m.user = user
		m.fire(ctx, evRestore)
		m.fireVerification(ctx, evBegin)
	})

	if err := m.RefreshProfile(ctx, token); err != nil {
		m.mutate(ctx, func() { m.fireVerification(ctx, evReject) })
		m.logger.InfoContext(ctx, "stored session rejected", logger.Component("session"), logger.Error(err))
	}
}

// Login authenticates with the server and establishes a new session.
// The error message is recorded for display (Err) and the error returned.
// When the profile cannot be fetched after a token was issued, the token is
// rolled back from memory and from the store and the session ends logged out.
func (m *Manager) Login(ctx context.Context, nip, password string) error {
	var hadSession bool
	m.begin(ctx, func() {
		m.errMsg = ""
		hadSession = m.user != nil
		m.fire(ctx, evLogin)
	})
	defer m.end()

	token, err := m.auth.Login(ctx, nip, password)
	if err != nil {
		m.mutate(ctx, func() {
			m.errMsg = identity.Message(err)
			m.abortLogin(ctx, hadSession)
		})
		m.logger.InfoContext(ctx, "login rejected", logger.Component("session"), logger.StaffID(nip), logger.Error(err))
		return err
	}

	if err := m.store.Set(ctx, credentials.KeyToken, token); err != nil {
		m.mutate(ctx, func() {
			m.errMsg = msgPersistFailed
			m.abortLogin(ctx, hadSession)
		})
		m.logger.WarnContext(ctx, "failed to persist token", logger.Component("session"), logger.StaffID(nip), logger.Error(err))
		return errors.Join(ErrPersist, err)
	}

	// The stored profile belongs to the replaced token until the new one is fetched.
	var replaced bool
	m.mutate(ctx, func() {
		replaced = m.user != nil && m.token != token
		m.token = token
		if replaced {
			m.user = nil
			m.fireVerification(ctx, evReset)
		}
	})
	if replaced {
		if err := m.store.Remove(ctx, credentials.KeyUser); err != nil {
			m.logger.WarnContext(ctx, "failed to remove replaced profile",
				logger.Component("session"), logger.Error(err))
		}
	}

	profile, err := m.fetcher.FetchProfile(ctx, token)
	if err == nil {
		err = m.persistUser(ctx, profile)
	}
	if err != nil {
		m.rollback(ctx, token)
		m.mutate(ctx, func() {
			m.errMsg = identity.Message(err)
			if errors.Is(err, ErrPersist) {
				m.errMsg = msgPersistFailed
			}
			m.fire(ctx, evLoginFailed)
		})
		m.logger.WarnContext(ctx, "login aborted, profile unavailable",
			logger.Component("session"), logger.StaffID(nip), logger.Error(err))
		return err
	}

	m.mutate(ctx, func() {
		m.token = token
		m.user = profile
		m.fire(ctx, evLoginOK)
		m.fireVerification(ctx, evConfirm)
	})
	m.logger.InfoContext(ctx, "logged in",
		logger.Component("session"), logger.StaffID(profile.NIP), logger.Branch(profile.BranchName))
	return nil
}

// RefreshProfile re-reads the profile for token and stores it. On success the
// session holds token and the fresh profile. On any failure the session is
// logged out and the error returned.
func (m *Manager) RefreshProfile(ctx context.Context, token string) error {
	m.begin(ctx, func() {
		if m.token == token && m.user != nil {
			m.fireVerification(ctx, evBegin)
		}
	})
	defer m.end()

	profile, err := m.fetcher.FetchProfile(ctx, token)
	if err == nil {
		err = m.persistUser(ctx, profile)
	}
	if err == nil && m.Snapshot().Token != token {
		err = m.store.Set(ctx, credentials.KeyToken, token)
		if err != nil {
			err = errors.Join(ErrPersist, err)
		}
	}
	if err != nil {
		m.logger.InfoContext(ctx, "profile refresh failed", logger.Component("session"), logger.Error(err))
		m.teardown(ctx, "refresh_failed")
		return err
	}

	m.mutate(ctx, func() {
		m.token = token
		m.user = profile
		m.fire(ctx, evVerified)
		m.fireVerification(ctx, evConfirm)
	})
	return nil
}

// Logout removes the persisted session, clears memory and navigates to the
// login route. It is idempotent. Store failures are logged, not returned.
func (m *Manager) Logout(ctx context.Context) {
	m.teardown(ctx, "logout")
}

// ForceLogout is Logout triggered by an authorization failure elsewhere.
func (m *Manager) ForceLogout(ctx context.Context, ev interceptor.Unauthorized) {
	m.logger.WarnContext(ctx, "session revoked by server",
		logger.Component("session"), logger.Endpoint(ev.URL), logger.Status(ev.Status))
	m.teardown(ctx, "unauthorized")
}

func (m *Manager) teardown(ctx context.Context, reason string) {
	for _, key := range []string{credentials.KeyToken, credentials.KeyUser} {
		if err := m.store.Remove(ctx, key); err != nil {
			m.logger.WarnContext(ctx, "failed to remove persisted credential",
				logger.Component("session"), slog.String("key", key), logger.Error(err))
		}
	}

	m.mutate(ctx, func() {
		m.token = ""
		m.user = nil
		m.fire(ctx, evLogout)
		m.fireVerification(ctx, evReset)
	})

	m.logger.DebugContext(ctx, "session cleared", logger.Component("session"), slog.String("reason", reason))
	m.nav.Navigate(m.route)
}

// abortLogin ends a login that changed nothing: a session that was in place
// before and is still held goes back to Authenticated, otherwise the state
// is Unauthenticated. Call with the lock held.
func (m *Manager) abortLogin(ctx context.Context, hadSession bool) {
	if hadSession && m.user != nil && m.token != "" {
		m.fire(ctx, evLoginAborted)
		return
	}
	m.fire(ctx, evLoginFailed)
}

// rollback undoes a token persisted by a login that could not complete.
// Both keys go: the stored profile, if any, belongs to a token that was just overwritten.
func (m *Manager) rollback(ctx context.Context, token string) {
	for _, key := range []string{credentials.KeyToken, credentials.KeyUser} {
		if err := m.store.Remove(ctx, key); err != nil {
			m.logger.WarnContext(ctx, "failed to roll back credential",
				logger.Component("session"), slog.String("key", key), logger.Error(err))
		}
	}
	m.mutate(ctx, func() {
		if m.token == token {
			m.token = ""
		}
		m.user = nil
		m.fireVerification(ctx, evReset)
	})
}

func (m *Manager) persistUser(ctx context.Context, p *identity.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := m.store.Set(ctx, credentials.KeyUser, string(data)); err != nil {
		return errors.Join(ErrPersist, err)
	}
	return nil
}

// begin marks an operation in flight and applies fn in the same critical section.
func (m *Manager) begin(ctx context.Context, fn func()) {
	m.mutate(ctx, func() {
		m.pending++
		if fn != nil {
			fn()
		}
	})
}

func (m *Manager) end() {
	m.mutate(context.Background(), func() {
		if m.pending > 0 {
			m.pending--
		}
	})
}

// mutate applies fn under the lock and publishes the resulting snapshot.
func (m *Manager) mutate(ctx context.Context, fn func()) {
	m.mu.Lock()
	fn()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	m.changes.Publish(ctx, snap)
}

func (m *Manager) fire(ctx context.Context, ev event) {
	if _, err := m.lifecycle.Fire(ctx, ev); err != nil {
		m.logger.DebugContext(ctx, "ignored session event", logger.Component("session"), logger.Error(err))
	}
}

func (m *Manager) fireVerification(ctx context.Context, ev event) {
	if _, err := m.verification.Fire(ctx, ev); err != nil {
		m.logger.DebugContext(ctx, "ignored verification event", logger.Component("session"), logger.Error(err))
	}
}

// Close releases change subscribers.
func (m *Manager) Close() {
	m.changes.Close()
}
