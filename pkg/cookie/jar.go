package cookie

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const (
	minSecretLength = 32
	fileMode        = 0o600
	dirMode         = 0o700
)

// entry is the on-disk representation of a single cookie.
type entry struct {
	Name     string        `json:"name"`
	Value    string        `json:"value"`
	Path     string        `json:"path,omitempty"`
	Domain   string        `json:"domain,omitempty"`
	Expires  time.Time     `json:"expires,omitzero"`
	Secure   bool          `json:"secure,omitempty"`
	HttpOnly bool          `json:"http_only,omitempty"`
	SameSite http.SameSite `json:"same_site,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	return !e.Expires.IsZero() && !now.Before(e.Expires)
}

// Jar is a client-side cookie store that survives process restarts.
// All methods are safe for concurrent use.
type Jar struct {
	mu       sync.Mutex
	path     string
	secrets  []string
	defaults Options
	now      func() time.Time
	entries  map[string]entry
}

// JarOption configures a Jar.
type JarOption func(*Jar)

// WithSecrets enables HMAC signing of stored values.
// The first secret signs new values; all of them are tried on read.
func WithSecrets(secrets ...string) JarOption {
	return func(j *Jar) {
		j.secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	}
}

// WithDefaults sets the attributes applied to every Set call before per-call options.
func WithDefaults(opts ...Option) JarOption {
	return func(j *Jar) {
		j.defaults = applyOptions(j.defaults, opts)
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) JarOption {
	return func(j *Jar) {
		if now != nil {
			j.now = now
		}
	}
}

// NewJar opens the jar stored at path. An empty path keeps the jar in memory.
// A missing file is an empty jar; a file that cannot be decoded is treated as
// empty and replaced on the next write.
func NewJar(path string, opts ...JarOption) (*Jar, error) {
	j := &Jar{
		path: path,
		defaults: Options{
			Path:     "/",
			SameSite: http.SameSiteStrictMode,
		},
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(j)
	}

	for i, s := range j.secrets {
		if len(s) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d", ErrSecretTooShort, i, len(s), minSecretLength)
		}
	}

	if path == "" {
		return j, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return j, nil
	case err != nil:
		return nil, fmt.Errorf("read cookie jar: %w", err)
	}

	var stored []entry
	if err := json.Unmarshal(data, &stored); err != nil {
		return j, nil
	}
	now := j.now()
	for _, e := range stored {
		if e.Name == "" || e.expired(now) {
			continue
		}
		j.entries[e.Name] = e
	}

	return j, nil
}

// Path returns the backing file, or an empty string for in-memory jars.
func (j *Jar) Path() string {
	return j.path
}

// Set stores value under name. A negative MaxAge deletes the cookie.
func (j *Jar) Set(name, value string, opts ...Option) error {
	if !validName(name) {
		return ErrInvalidName
	}

	options := applyOptions(j.defaults, opts)
	if options.MaxAge < 0 {
		return j.Delete(name)
	}

	if len(j.secrets) > 0 {
		value = j.sign(value)
	}

	e := entry{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if options.MaxAge > 0 {
		e.Expires = j.now().Add(time.Duration(options.MaxAge) * time.Second)
	}

	prev, existed := j.entries[name]
	j.entries[name] = e
	if err := j.persist(); err != nil {
		if existed {
			j.entries[name] = prev
		} else {
			delete(j.entries, name)
		}
		return err
	}

	return nil
}

// Get returns the value stored under name.
// Missing and expired cookies yield ErrCookieNotFound.
func (j *Jar) Get(name string) (string, error) {
	e, err := j.lookup(name)
	if err != nil {
		return "", err
	}
	if len(j.secrets) == 0 {
		return e.Value, nil
	}
	return j.verify(e.Value)
}

// Cookie returns the stored cookie with its attributes. The value is returned as stored.
func (j *Jar) Cookie(name string) (*http.Cookie, error) {
	e, err := j.lookup(name)
	if err != nil {
		return nil, err
	}

	c := &http.Cookie{
		Name:     e.Name,
		Value:    e.Value,
		Path:     e.Path,
		Domain:   e.Domain,
		Expires:  e.Expires,
		Secure:   e.Secure,
		HttpOnly: e.HttpOnly,
		SameSite: e.SameSite,
	}
	if !e.Expires.IsZero() {
		c.MaxAge = int(e.Expires.Sub(j.now()) / time.Second)
	}
	return c, nil
}

// Delete removes the cookie. Deleting a missing cookie is not an error.
func (j *Jar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	prev, ok := j.entries[name]
	if !ok {
		return nil
	}

	delete(j.entries, name)
	if err := j.persist(); err != nil {
		j.entries[name] = prev
		return err
	}
	return nil
}

// Names lists the live cookies in lexical order.
func (j *Jar) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	names := make([]string, 0, len(j.entries))
	for name, e := range j.entries {
		if !e.expired(now) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

func (j *Jar) lookup(name string) (entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[name]
	if !ok {
		return entry{}, ErrCookieNotFound
	}
	if e.expired(j.now()) {
		delete(j.entries, name)
		// The expired entry is dropped from disk lazily on the next write.
		return entry{}, ErrCookieNotFound
	}
	return e, nil
}

// persist writes the jar atomically. Callers must hold j.mu.
func (j *Jar) persist() error {
	if j.path == "" {
		return nil
	}

	now := j.now()
	stored := make([]entry, 0, len(j.entries))
	for _, e := range j.entries {
		if !e.expired(now) {
			stored = append(stored, e)
		}
	}
	slices.SortFunc(stored, func(a, b entry) int { return strings.Compare(a.Name, b.Name) })

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return errors.Join(ErrPersist, err)
	}

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return errors.Join(ErrPersist, err)
	}

	tmp, err := os.CreateTemp(dir, ".cookies-*")
	if err != nil {
		return errors.Join(ErrPersist, err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrPersist, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrPersist, err)
	}
	if err := os.Rename(tmpName, j.path); err != nil {
		_ = os.Remove(tmpName)
		return errors.Join(ErrPersist, err)
	}

	return nil
}

// validName follows the cookie-name token rules of RFC 6265.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if r <= ' ' || r >= 0x7f || strings.ContainsRune("()<>@,;:\\\"/[]?={}", r) {
			return false
		}
	}
	return true
}
