package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/requestid"
)

func newClient(t *testing.T, h http.HandlerFunc) *identity.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := identity.New(srv.URL+"/", identity.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNew_InvalidURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://example.com", "http://", "://bad"} {
		_, err := identity.New(raw)
		assert.ErrorIs(t, err, identity.ErrInvalidURL, raw)
	}
}

func TestClient_Login(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		wantToken string
		wantKind  error
		wantMsg   string
	}{
		{
			name:      "success",
			status:    http.StatusOK,
			body:      `{"success":true,"token":"T1"}`,
			wantToken: "T1",
		},
		{
			name:     "rejected with message",
			status:   http.StatusOK,
			body:     `{"success":false,"message":"invalid credentials"}`,
			wantKind: identity.ErrAuthenticationFailed,
			wantMsg:  "invalid credentials",
		},
		{
			name:     "rejected without message",
			status:   http.StatusOK,
			body:     `{"success":false}`,
			wantKind: identity.ErrAuthenticationFailed,
			wantMsg:  identity.MsgLoginFailed,
		},
		{
			name:     "error status with message",
			status:   http.StatusBadRequest,
			body:     `{"success":false,"message":"NIP wajib diisi"}`,
			wantKind: identity.ErrAuthenticationFailed,
			wantMsg:  "NIP wajib diisi",
		},
		{
			name:     "success without token",
			status:   http.StatusOK,
			body:     `{"success":true}`,
			wantKind: identity.ErrAuthenticationFailed,
			wantMsg:  identity.MsgLoginFailed,
		},
		{
			name:     "not json",
			status:   http.StatusBadGateway,
			body:     `<html>bad gateway</html>`,
			wantKind: identity.ErrUnavailable,
			wantMsg:  identity.MsgUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/auth/login", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				assert.NotEmpty(t, r.Header.Get(requestid.Header))

				var body map[string]string
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, map[string]string{"nip": "123", "password": "pw"}, body)

				writeJSON(w, tt.status, tt.body)
			})

			token, err := c.Login(context.Background(), "123", "pw")
			if tt.wantKind == nil {
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, token)
				return
			}

			require.Error(t, err)
			assert.Empty(t, token)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.Equal(t, tt.wantMsg, err.Error())
			assert.Equal(t, tt.wantMsg, identity.Message(err))

			var ierr *identity.Error
			require.True(t, errors.As(err, &ierr))
			assert.Equal(t, tt.status, ierr.Status)
		})
	}
}

func TestClient_Login_TransportFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := identity.New(url)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "123", "pw")
	assert.ErrorIs(t, err, identity.ErrUnavailable)
	assert.NotErrorIs(t, err, identity.ErrAuthenticationFailed)
}

func TestClient_FetchProfile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
		wantMsg string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{"success":true,"data":{"type":"bm","branch_name":"Cabang Bandung","name":"Ana","nip":"123",
				"total_target":1500000,"achieved":750000,"percentage":50,"products":[{"id":1}],
				"target_month":3,"target_year":2025,"target_setted":true}}`,
		},
		{
			name:    "success false with message",
			status:  http.StatusOK,
			body:    `{"success":false,"message":"profile locked"}`,
			wantErr: true,
			wantMsg: "profile locked",
		},
		{
			name:    "success false without message",
			status:  http.StatusOK,
			body:    `{"success":false}`,
			wantErr: true,
			wantMsg: identity.MsgProfileFailed,
		},
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"success":false,"message":"unauthorized"}`,
			wantErr: true,
			wantMsg: "unauthorized",
		},
		{
			name:    "server error without body",
			status:  http.StatusInternalServerError,
			wantErr: true,
			wantMsg: identity.MsgProfileFailed,
		},
		{
			name:    "missing data",
			status:  http.StatusOK,
			body:    `{"success":true}`,
			wantErr: true,
			wantMsg: identity.MsgProfileFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/profile/summary", r.URL.Path)
				assert.Equal(t, "Bearer T1", r.Header.Get("Authorization"))
				writeJSON(w, tt.status, tt.body)
			})

			p, err := c.FetchProfile(context.Background(), "T1")
			assert.Equal(t, int32(1), calls.Load(), "profile fetch must not retry")

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, p)
				assert.ErrorIs(t, err, identity.ErrProfileUnavailable)
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Ana", p.Name)
			assert.Equal(t, "123", p.NIP)
			assert.Equal(t, "Cabang Bandung", p.BranchName)
			assert.Equal(t, 1500000.0, p.TotalTarget)
			assert.True(t, p.TargetSetted)
			assert.JSONEq(t, `[{"id":1}]`, string(p.Products))

			month, year := p.Period()
			assert.Equal(t, 3, month)
			assert.Equal(t, 2025, year)
		})
	}
}

func TestProfile_CloneAndParse(t *testing.T) {
	t.Parallel()

	orig := &identity.Profile{Name: "Ana", NIP: "123", Products: json.RawMessage(`[1]`)}
	c := orig.Clone()
	require.NotNil(t, c)
	c.Products[1] = '2'
	assert.Equal(t, `[1]`, string(orig.Products))

	var nilProfile *identity.Profile
	assert.Nil(t, nilProfile.Clone())

	data, err := json.Marshal(orig)
	require.NoError(t, err)
	parsed, err := identity.ParseProfile(data)
	require.NoError(t, err)
	assert.Equal(t, orig, parsed)

	for _, bad := range []string{`not json`, `null`, `{}`, `[1,2]`} {
		_, err := identity.ParseProfile([]byte(bad))
		assert.Error(t, err, bad)
	}
}
