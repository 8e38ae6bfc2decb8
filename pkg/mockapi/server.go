package mockapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/targetdesk/pkg/identity"
	"github.com/dmitrymomot/targetdesk/pkg/logger"
	"github.com/dmitrymomot/targetdesk/pkg/requestid"
	"github.com/dmitrymomot/targetdesk/pkg/targets"
)

var (
	ErrUnknownAccount = errors.New("mockapi.unknown_account")
	ErrDuplicate      = errors.New("mockapi.duplicate_account")
)

type account struct {
	hash    []byte
	profile identity.Profile
}

// Server is an in-memory stand-in for the dashboard API.
// All methods are safe for concurrent use.
type Server struct {
	mu       sync.RWMutex
	accounts map[string]*account
	tokens   map[string]string
	staff    []targets.Staff
	branch   targets.Branch
	calls    map[string]int

	profileFails   bool
	profileMessage string

	cost   int
	logger *slog.Logger
	router chi.Router
}

type Option func(*Server)

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPasswordCost sets the bcrypt cost for stored passwords.
func WithPasswordCost(cost int) Option {
	return func(s *Server) {
		s.cost = cost
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		calls:    make(map[string]int),
		cost:     bcrypt.DefaultCost,
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(s.count)

	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.authorize)
		r.Get("/profile/summary", s.handleProfile)
		r.Route("/bm", func(r chi.Router) {
			r.Get("/branch-targets", s.handleBranch)
			r.Get("/monitoring/assignment", s.handleAssignments)
			r.Post("/monitoring/assignment/{nip}", s.handleAssign)
		})
	})

	return r
}

// AddAccount registers a staff member who can log in with nip and password.
func (s *Server) AddAccount(nip, password string, p identity.Profile) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	p.NIP = nip

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[nip]; ok {
		return ErrDuplicate
	}
	s.accounts[nip] = &account{hash: hash, profile: p}
	return nil
}

// IssueToken creates a valid token for nip without a login round trip.
func (s *Server) IssueToken(nip string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[nip]; !ok {
		return "", ErrUnknownAccount
	}
	token := uuid.NewString()
	s.tokens[token] = nip
	return token, nil
}

// Revoke invalidates a token; later requests with it get 401.
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.tokens)
}

// FailProfile makes /profile/summary answer {success:false} with message
// (omitted when empty) until called with fail=false.
func (s *Server) FailProfile(fail bool, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profileFails = fail
	s.profileMessage = message
}

// UpdateProfile edits the server-side profile of nip.
func (s *Server) UpdateProfile(nip string, fn func(*identity.Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[nip]
	if !ok {
		return ErrUnknownAccount
	}
	fn(&acc.profile)
	acc.profile.NIP = nip
	return nil
}

func (s *Server) SetStaff(staff []targets.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staff = append([]targets.Staff(nil), staff...)
}

func (s *Server) SetBranch(b targets.Branch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.branch = b
}

// Staff returns the current state of one staff member.
func (s *Server) Staff(nip string) (targets.Staff, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.staff {
		if st.NIP == nip {
			return st, true
		}
	}
	return targets.Staff{}, false
}

// Calls returns how many requests reached path.
func (s *Server) Calls(path string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.calls[path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type nipKey struct{}

func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.RLock()
		nip, known := s.tokens[token]
		s.mu.RUnlock()

		if !ok || !known {
			s.logger.InfoContext(r.Context(), "rejected token",
				logger.Component("mockapi"), logger.Endpoint(r.URL.Path), logger.RequestID(requestid.FromContext(r.Context())))
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "unauthorized"})
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), nipKey{}, nip)))
	})
}

func nipFrom(r *http.Request) string {
	nip, _ := r.Context().Value(nipKey{}).(string)
	return nip
}
