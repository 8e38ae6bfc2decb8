package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/targetdesk/pkg/broadcast"
	"github.com/dmitrymomot/targetdesk/pkg/credentials"
	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/interceptor"
	"github.com/dmitrymomot/targetdesk/pkg/mockapi"
	"github.com/dmitrymomot/targetdesk/pkg/session"
)

const (
	testNIP      = "1001"
	testPassword = "secret"
)

var testProfile = identity.Profile{
	Type:         "bm",
	BranchName:   "Bandung",
	Name:         "Ana",
	NIP:          testNIP,
	TotalTarget:  1000,
	Achieved:     250,
	Percentage:   25,
	TargetMonth:  3,
	TargetYear:   2025,
	TargetSetted: true,
}

// recorder is a Navigator that remembers every route it was sent to.
type recorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, route)
}

func (r *recorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

type harness struct {
	api    *mockapi.Server
	srv    *httptest.Server
	client *http.Client
	ident  *identity.Client
	store  credentials.Store
	nav    *recorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	api := mockapi.New(mockapi.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, api.AddAccount(testNIP, testPassword, testProfile))

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client := &http.Client{}
	ident, err := identity.New(srv.URL, identity.WithHTTPClient(client))
	require.NoError(t, err)

	return &harness{
		api:    api,
		srv:    srv,
		client: client,
		ident:  ident,
		store:  credentials.NewMemoryStore(),
		nav:    &recorder{},
	}
}

func (h *harness) manager(opts ...session.Option) *session.Manager {
	opts = append([]session.Option{session.WithNavigator(h.nav)}, opts...)
	return session.New(h.store, h.ident, h.ident, opts...)
}

func (h *harness) provider(t *testing.T) *session.Provider {
	t.Helper()

	events := broadcast.New[interceptor.Unauthorized](8)
	t.Cleanup(events.Close)
	reg := interceptor.New(h.client, events)
	return session.NewProvider(h.manager(), reg, events)
}

// persist stores a session as a previous run would have left it.
func (h *harness) persist(t *testing.T, token string, p identity.Profile) {
	t.Helper()

	data, err := json.Marshal(p)
	require.NoError(t, err)
	require.NoError(t, h.store.Set(context.Background(), credentials.KeyToken, token))
	require.NoError(t, h.store.Set(context.Background(), credentials.KeyUser, string(data)))
}

func (h *harness) stored(t *testing.T, key string) (string, bool) {
	t.Helper()

	v, err := h.store.Get(context.Background(), key)
	if err != nil {
		require.ErrorIs(t, err, credentials.ErrNotFound)
		return "", false
	}
	return v, true
}

// blockingFetcher holds FetchProfile until release is closed.
// The first skip calls pass straight through.
type blockingFetcher struct {
	next    session.ProfileFetcher
	skip    atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newBlockingFetcher(next session.ProfileFetcher) *blockingFetcher {
	return &blockingFetcher{next: next, entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (f *blockingFetcher) FetchProfile(ctx context.Context, token string) (*identity.Profile, error) {
	if f.skip.Add(-1) >= 0 {
		return f.next.FetchProfile(ctx, token)
	}
	select {
	case f.entered <- struct{}{}:
	default:
	}
	<-f.release
	return f.next.FetchProfile(ctx, token)
}

// failingStore fails every Set of one key. An empty key fails nothing.
type failingStore struct {
	credentials.Store
	mu  sync.Mutex
	key string
	err error
}

func (s *failingStore) fail(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
}

func (s *failingStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	failing := key == s.key
	s.mu.Unlock()
	if failing {
		return s.err
	}
	return s.Store.Set(ctx, key, value)
}

// unreachableStore fails every Get of one key, as a store behind a dropped
// connection would.
type unreachableStore struct {
	credentials.Store
	key string
	err error
}

func (s *unreachableStore) Get(ctx context.Context, key string) (string, error) {
	if key == s.key {
		return "", s.err
	}
	return s.Store.Get(ctx, key)
}
