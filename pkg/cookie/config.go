package cookie

import (
	"net/http"
	"strings"
)

// Config holds cookie jar configuration
type Config struct {
	File     string        `env:"COOKIE_FILE" envDefault:""`
	Secrets  string        `env:"COOKIE_SECRETS" envDefault:""`
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	MaxAge   int           `env:"COOKIE_MAX_AGE" envDefault:"0"`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"false"`
	HttpOnly bool          `env:"COOKIE_HTTP_ONLY" envDefault:"false"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"3"` // 3 = SameSiteStrictMode
}

// DefaultConfig returns default cookie configuration
func DefaultConfig() Config {
	return Config{
		Path:     "/",
		SameSite: http.SameSiteStrictMode,
	}
}

// parseSecrets splits the comma separated secrets string into a slice
func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}

	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, s := range parts {
		s = strings.TrimSpace(s)
		if s != "" {
			secrets = append(secrets, s)
		}
	}

	return secrets
}

// NewJarFromConfig creates a Jar from the provided Config.
// Only non-zero values from the config are applied to the jar defaults.
func NewJarFromConfig(cfg Config, opts ...JarOption) (*Jar, error) {
	defaults := make([]Option, 0, 6)

	if cfg.Path != "" {
		defaults = append(defaults, WithPath(cfg.Path))
	}
	if cfg.Domain != "" {
		defaults = append(defaults, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		defaults = append(defaults, WithMaxAge(cfg.MaxAge))
	}
	if cfg.Secure {
		defaults = append(defaults, WithSecure(true))
	}
	if cfg.HttpOnly {
		defaults = append(defaults, WithHTTPOnly(true))
	}
	if cfg.SameSite != 0 {
		defaults = append(defaults, WithSameSite(cfg.SameSite))
	}

	jarOpts := []JarOption{WithDefaults(defaults...)}
	if secrets := cfg.parseSecrets(); len(secrets) > 0 {
		jarOpts = append(jarOpts, WithSecrets(secrets...))
	}
	jarOpts = append(jarOpts, opts...)

	return NewJar(cfg.File, jarOpts...)
}
