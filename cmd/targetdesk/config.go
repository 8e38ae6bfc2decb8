package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/targetdesk/pkg/credentials"
)

// appConfig is the CLI's own configuration. The credential backend is
// configured separately through credentials.Config.
type appConfig struct {
	APIURL      string `env:"TARGETDESK_API_URL" envDefault:"http://localhost:8080"`
	Environment string `env:"APP_ENV" envDefault:"production"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"warn"`
	Banner      bool   `env:"TARGETDESK_BANNER" envDefault:"true"`
	Language    string `env:"TARGETDESK_LANGUAGE" envDefault:"id"`
}

// defaultCookieFile points an unset cookie jar at the user's config
// directory so a session outlives the process.
func defaultCookieFile(cfg *credentials.Config) error {
	if cfg.Backend != credentials.BackendCookie && cfg.Backend != "" {
		return nil
	}
	if cfg.CookieFile != "" {
		return nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return fmt.Errorf("locate cookie file: %w", err)
	}
	cfg.CookieFile = filepath.Join(dir, appName, "cookies.json")
	return nil
}
