package interceptor_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/targetdesk/pkg/broadcast"
	"github.com/dmitrymomot/targetdesk/pkg/interceptor"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, ev interceptor.Unauthorized) int {
	args := m.Called(ctx, ev)
	return args.Int(0)
}

func statusServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Probe", "yes")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, client *http.Client, url string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestRegistration_PublishesOn401AndPassesResponseThrough(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, http.StatusUnauthorized, `{"success":false,"message":"expired"}`)
	client := &http.Client{}
	at := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, interceptor.Unauthorized{
		Method: http.MethodGet,
		URL:    srv.URL + "/x",
		Status: http.StatusUnauthorized,
		At:     at,
	}).Return(1).Once()

	reg := interceptor.New(client, pub, interceptor.WithClock(func() time.Time { return at }))
	require.NoError(t, reg.Install())
	t.Cleanup(func() { _ = reg.Uninstall() })

	resp, body := get(t, client, srv.URL+"/x?secret=1")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "yes", resp.Header.Get("X-Probe"))
	assert.Equal(t, `{"success":false,"message":"expired"}`, body)

	pub.AssertExpectations(t)
}

func TestRegistration_IgnoresOtherStatuses(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusOK, http.StatusForbidden, http.StatusInternalServerError} {
		srv := statusServer(t, status, "ok")
		client := &http.Client{}
		pub := &mockPublisher{}

		reg := interceptor.New(client, pub)
		require.NoError(t, reg.Install())

		resp, body := get(t, client, srv.URL)
		assert.Equal(t, status, resp.StatusCode)
		assert.Equal(t, "ok", body)

		require.NoError(t, reg.Uninstall())
		pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	}
}

func TestRegistration_InstallOnce(t *testing.T) {
	t.Parallel()

	client := &http.Client{}
	reg := interceptor.New(client, nil)

	require.NoError(t, reg.Install())
	assert.True(t, reg.Installed())
	assert.ErrorIs(t, reg.Install(), interceptor.ErrAlreadyInstalled)

	other := interceptor.New(client, nil)
	assert.ErrorIs(t, other.Install(), interceptor.ErrAlreadyInstalled, "a client is never wrapped twice")
	assert.False(t, other.Installed())
}

func TestRegistration_UninstallRestoresOriginal(t *testing.T) {
	t.Parallel()

	original := &countingTransport{}
	client := &http.Client{Transport: original}
	reg := interceptor.New(client, nil)

	assert.ErrorIs(t, reg.Uninstall(), interceptor.ErrNotInstalled)

	require.NoError(t, reg.Install())
	assert.NotSame(t, original, client.Transport)

	require.NoError(t, reg.Uninstall())
	assert.Same(t, original, client.Transport)
	assert.False(t, reg.Installed())

	// reinstall after uninstall is allowed
	require.NoError(t, reg.Install())
	require.NoError(t, reg.Uninstall())
	assert.Same(t, original, client.Transport)

	t.Run("nil transport restored as nil", func(t *testing.T) {
		c := &http.Client{}
		r := interceptor.New(c, nil)
		require.NoError(t, r.Install())
		require.NoError(t, r.Uninstall())
		assert.Nil(t, c.Transport)
	})
}

func TestRegistration_DetachedWrapperStopsReporting(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, http.StatusUnauthorized, "")
	client := &http.Client{}
	bus := broadcast.New[interceptor.Unauthorized](4)
	defer bus.Close()
	sub := bus.Subscribe(context.Background())

	reg := interceptor.New(client, bus)
	require.NoError(t, reg.Install())
	stale := client.Transport

	require.NoError(t, reg.Uninstall())

	resp, err := (&http.Client{Transport: stale}).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, sub.C(), 0)
}

func TestRegistration_TransportErrorReturnedUnchanged(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	pub := &mockPublisher{}
	client := &http.Client{}
	reg := interceptor.New(client, pub)
	require.NoError(t, reg.Install())
	defer func() { _ = reg.Uninstall() }()

	_, err := client.Get(url)
	require.Error(t, err)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestRegistration_BusDelivery(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, http.StatusUnauthorized, "")
	client := &http.Client{}
	bus := broadcast.New[interceptor.Unauthorized](4)
	defer bus.Close()
	sub := bus.Subscribe(context.Background())

	reg := interceptor.New(client, bus)
	require.NoError(t, reg.Install())
	defer func() { _ = reg.Uninstall() }()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL+"/bm/branch-targets", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	cancel()
	_ = resp.Body.Close()

	select {
	case ev := <-sub.C():
		assert.Equal(t, http.MethodPost, ev.Method)
		assert.Equal(t, srv.URL+"/bm/branch-targets", ev.URL)
		assert.Equal(t, http.StatusUnauthorized, ev.Status)
		assert.False(t, ev.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no unauthorized event")
	}
}

func TestThrough_FollowsInstall(t *testing.T) {
	t.Parallel()

	srv := statusServer(t, http.StatusUnauthorized, "")
	shared := &http.Client{}
	layered := &http.Client{Transport: interceptor.Through(shared)}

	bus := broadcast.New[interceptor.Unauthorized](4)
	defer bus.Close()
	sub := bus.Subscribe(context.Background())

	resp, _ := get(t, layered, srv.URL)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Len(t, sub.C(), 0, "not installed yet")

	reg := interceptor.New(shared, bus)
	require.NoError(t, reg.Install())

	get(t, layered, srv.URL)
	assert.Len(t, sub.C(), 1)

	require.NoError(t, reg.Uninstall())
	get(t, layered, srv.URL)
	assert.Len(t, sub.C(), 1)
}

type countingTransport struct {
	mu    sync.Mutex
	calls int
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return http.DefaultTransport.RoundTrip(req)
}
