package credentials

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrymomot/targetdesk/pkg/cookie"
)

// Backend names accepted by Open.
const (
	BackendCookie = "cookie"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config selects and configures the credential backend.
type Config struct {
	Backend string `env:"CREDENTIALS_BACKEND" envDefault:"cookie"`

	// Cookie backend.
	CookieFile    string `env:"CREDENTIALS_COOKIE_FILE" envDefault:""`
	CookieSecrets string `env:"CREDENTIALS_COOKIE_SECRETS" envDefault:""`

	// Redis backend.
	RedisURL            string        `env:"CREDENTIALS_REDIS_URL" envDefault:""`
	RedisPrefix         string        `env:"CREDENTIALS_REDIS_PREFIX" envDefault:"targetdesk:"`
	RedisRetryAttempts  int           `env:"CREDENTIALS_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RedisRetryInterval  time.Duration `env:"CREDENTIALS_REDIS_RETRY_INTERVAL" envDefault:"2s"`
	RedisConnectTimeout time.Duration `env:"CREDENTIALS_REDIS_CONNECT_TIMEOUT" envDefault:"10s"`
}

// DefaultConfig returns a cookie backed configuration with an in-memory jar.
func DefaultConfig() Config {
	return Config{
		Backend:             BackendCookie,
		RedisPrefix:         "targetdesk:",
		RedisRetryAttempts:  3,
		RedisRetryInterval:  2 * time.Second,
		RedisConnectTimeout: 10 * time.Second,
	}
}

// Open builds the Store named by cfg.Backend. The returned close function
// releases backend resources and is never nil.
func Open(ctx context.Context, cfg Config) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case BackendCookie, "":
		jarCfg := cookie.DefaultConfig()
		jarCfg.File = cfg.CookieFile
		jarCfg.Secrets = cfg.CookieSecrets
		jar, err := cookie.NewJarFromConfig(jarCfg)
		if err != nil {
			return nil, noop, fmt.Errorf("open cookie jar: %w", err)
		}
		return NewCookieStore(jar), noop, nil

	case BackendRedis:
		client, err := ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client, cfg.RedisPrefix), client.Close, nil

	case BackendMemory:
		return NewMemoryStore(), noop, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
