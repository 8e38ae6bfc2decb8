package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/targetdesk/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		inbound  string
		wantSame bool
	}{
		{name: "generates when missing"},
		{name: "reuses valid id", inbound: "abc-123_DEF", wantSame: true},
		{name: "replaces invalid id", inbound: "bad id!"},
		{name: "replaces oversized id", inbound: strings.Repeat("a", 129)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var seen string
			h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = requestid.FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.inbound != "" {
				req.Header.Set(requestid.Header, tt.inbound)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rec.Header().Get(requestid.Header))
			if tt.wantSame {
				assert.Equal(t, tt.inbound, seen)
			} else {
				assert.NotEqual(t, tt.inbound, seen)
				assert.True(t, requestid.Valid(seen))
			}
		})
	}
}

func TestTransport(t *testing.T) {
	t.Parallel()

	var (
		mu  sync.Mutex
		got []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get(requestid.Header))
		mu.Unlock()
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Transport: requestid.NewTransport(nil)}

	do := func(ctx context.Context, header string) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		require.NoError(t, err)
		if header != "" {
			req.Header.Set(requestid.Header, header)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, header, req.Header.Get(requestid.Header), "caller request must not be modified")
	}

	do(context.Background(), "")
	do(requestid.WithContext(context.Background(), "from-ctx"), "")
	do(context.Background(), "explicit")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 3)
	assert.True(t, requestid.Valid(got[0]))
	assert.Equal(t, "from-ctx", got[1])
	assert.Equal(t, "explicit", got[2])
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	ex := requestid.LoggerExtractor()

	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(requestid.WithContext(context.Background(), "rid"))
	require.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "rid", attr.Value.String())
}
