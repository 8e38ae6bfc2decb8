// Package cookie provides a persistent client-side cookie jar.
//
// A Jar keeps named values together with the usual cookie attributes (path,
// domain, max-age, secure, http-only, same-site) in a JSON file, so a command
// line client can behave like a browser that remembers its cookies between runs.
// Writes go to a temporary file that is renamed over the jar, and the file is
// created with 0600 permissions.
//
// # Usage
//
//	jar, err := cookie.NewJar(filepath.Join(home, ".targetdesk", "cookies.json"),
//		cookie.WithDefaults(cookie.WithSameSite(http.SameSiteStrictMode)),
//	)
//	if err != nil { log.Fatal(err) }
//
//	_ = jar.Set("token", tok, cookie.WithExpiry(7*24*time.Hour))
//	tok, err := jar.Get("token") // cookie.ErrCookieNotFound once expired
//
// # Signing
//
// WithSecrets enables HMAC-SHA256 signing. The first secret signs, all of them
// verify, which allows key rotation. A value modified on disk is reported as
// ErrInvalidSignature. Secrets must be at least 32 bytes.
//
// # Configuration
//
// Config can be filled from environment variables with github.com/caarlos0/env
// (see pkg/config) and passed to NewJarFromConfig.
package cookie
