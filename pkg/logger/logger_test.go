package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/targetdesk/pkg/logger"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json by default", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf))
		log.Info("hello")

		entry := decode(t, buf)
		assert.Equal(t, "INFO", entry["level"])
		assert.Equal(t, "hello", entry["msg"])
	})

	t.Run("text format", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithFormat(logger.FormatText))
		log.Info("hello")
		assert.Contains(t, buf.String(), "level=INFO")
		assert.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("invalid format panics", func(t *testing.T) {
		assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
	})

	t.Run("level filtering", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevel(slog.LevelWarn))
		log.Info("dropped")
		assert.Empty(t, buf.String())
		log.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("level by name", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithLevelName("debug"))
		log.Debug("visible")
		assert.Contains(t, buf.String(), "visible")

		buf.Reset()
		log = logger.New(logger.WithOutput(buf), logger.WithLevelName("nonsense"))
		log.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("static attributes", func(t *testing.T) {
		buf := &bytes.Buffer{}
		log := logger.New(logger.WithOutput(buf), logger.WithAttr(slog.String("svc", "test")))
		log.Info("hello")
		assert.Equal(t, "test", decode(t, buf)["svc"])
	})
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env       string
		wantEnv   string
		wantJSON  bool
		wantDebug bool
	}{
		{env: "production", wantEnv: logger.Production, wantJSON: true},
		{env: "prod", wantEnv: logger.Production, wantJSON: true},
		{env: "stage", wantEnv: logger.Staging, wantJSON: true},
		{env: "development", wantEnv: logger.Development, wantDebug: true},
		{env: "", wantEnv: logger.Development, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			log := logger.New(logger.WithOutput(buf), logger.WithEnvironment(tt.env, "targetdesk"))
			log.Debug("ping")

			if !tt.wantDebug {
				assert.Empty(t, buf.String())
				log.Info("ping")
			}

			if tt.wantJSON {
				entry := decode(t, buf)
				assert.Equal(t, tt.wantEnv, entry["env"])
				assert.Equal(t, "targetdesk", entry["service"])
				return
			}
			assert.Contains(t, buf.String(), "env="+tt.wantEnv)
			assert.Contains(t, buf.String(), "service=targetdesk")
		})
	}
}

type ctxKey struct{}

func TestContextExtraction(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextValue("trace", ctxKey{}),
		logger.WithContextExtractors(nil, func(ctx context.Context) (slog.Attr, bool) {
			return slog.String("static", "yes"), true
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "t-1")
	log.With("k", "v").WithGroup("g").InfoContext(ctx, "hello")

	entry := decode(t, buf)
	group, ok := entry["g"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "t-1", group["trace"])
	assert.Equal(t, "yes", group["static"])
	assert.Equal(t, "v", entry["k"])
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, slog.Attr{}, logger.StaffID(""))
	assert.Equal(t, slog.Attr{}, logger.Branch(""))
	assert.Equal(t, slog.Attr{}, logger.RequestID(""))

	err := errors.New("boom")
	assert.Equal(t, slog.Any("error", err), logger.Error(err))
	assert.Equal(t, slog.String("nip", "123"), logger.StaffID("123"))
	assert.Equal(t, slog.String("branch", "Bandung"), logger.Branch("Bandung"))
	assert.Equal(t, slog.String("component", "session"), logger.Component("session"))
	assert.Equal(t, slog.String("state", "authenticated"), logger.State("authenticated"))
	assert.Equal(t, slog.Int("status", 401), logger.Status(401))
	assert.Equal(t, slog.Duration("duration", time.Second), logger.Duration(time.Second))

	buf := &bytes.Buffer{}
	logger.New(logger.WithOutput(buf)).Info("x", logger.StaffID(""), logger.Endpoint("/p"))
	entry := decode(t, buf)
	assert.NotContains(t, entry, "nip")
	assert.Equal(t, "/p", entry["endpoint"])
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
