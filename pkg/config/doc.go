// Package config loads typed configuration from the environment.
//
// It wraps github.com/joho/godotenv for .env files and
// github.com/caarlos0/env/v11 for parsing struct tags. Each configuration
// type is parsed once per process and cached:
//
//	var cfg credentials.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//
// LoadEnv reads explicit .env files before the first Load. ResetCache and
// ForceReload exist for tests that change the environment.
package config
