// Package mockapi serves the FREEPARE backend contract from a fixture file.
// It backs cmd/freepare-mock and the HTTP tests of the client packages.
package mockapi

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	json "github.com/goccy/go-json"

	"github.com/freepare/freepare/pkg/logging"
	"github.com/freepare/freepare/pkg/session"
)

// Fixture is the data the server answers with.
//
//	{
//	  "entities": [ ...root entities... ],
//	  "completedTests": [ {"examId": "..."}, ... ],
//	  "exams": { "<examId>": {"examName": "...", "questions": [...]} }
//	}
type Fixture struct {
	Entities       json.RawMessage            `json:"entities"`
	CompletedTests json.RawMessage            `json:"completedTests"`
	Exams          map[string]json.RawMessage `json:"exams"`
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture %s: %w", path, err)
	}
	if len(f.Entities) == 0 {
		f.Entities = json.RawMessage("[]")
	}
	if len(f.CompletedTests) == 0 {
		f.CompletedTests = json.RawMessage("[]")
	}
	return &f, nil
}

// Server is the fixture backend.
type Server struct {
	mu      sync.RWMutex
	fixture *Fixture

	requireAuth bool
	secret      []byte
	now         func() time.Time
	log         *logging.Logger

	failEntities atomic.Int32
	entityHits   atomic.Int32

	router *chi.Mux
}

// Option configures a Server.
type Option func(*Server)

// WithRequireAuth makes the completed-tests route reject requests without a
// token.
func WithRequireAuth(require bool) Option {
	return func(s *Server) { s.requireAuth = require }
}

// WithJWTSecret makes the server verify token signatures with secret.
// Without it any non-empty token is accepted.
func WithJWTSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

// WithLogger sets the request logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithClock overrides time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer builds a server answering from f.
func NewServer(f *Fixture, opts ...Option) *Server {
	s := &Server{fixture: f, now: time.Now, log: logging.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRouter()
	return s
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

// SetFixture swaps the data served from now on.
func (s *Server) SetFixture(f *Fixture) {
	s.mu.Lock()
	s.fixture = f
	s.mu.Unlock()
}

// FailEntities makes the next n entity requests answer 503.
func (s *Server) FailEntities(n int) {
	s.failEntities.Store(int32(n))
}

// EntityHits returns how many entity requests were received.
func (s *Server) EntityHits() int {
	return int(s.entityHits.Load())
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*.freepare.com"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/entities", s.handleEntities)
		r.With(s.authenticate).Get("/tests/getCompletedTests", s.handleCompleted)
		r.Get("/exams/{examId}", s.handleExam)
	})

	s.router = r
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			s.log.Info("http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

// authenticate accepts a Bearer token or a "token" cookie.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.requireAuth {
			next.ServeHTTP(w, r)
			return
		}
		tok := strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
		if tok == "" {
			if c, err := r.Cookie("token"); err == nil {
				tok = c.Value
			}
		}
		if tok == "" {
			respondError(w, http.StatusUnauthorized, "missing token")
			return
		}
		if s.secret != nil {
			if _, err := session.Verify(tok, s.secret, s.now()); err != nil {
				respondError(w, http.StatusUnauthorized, "invalid token")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) current() *Fixture {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixture
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	s.entityHits.Add(1)
	if s.failEntities.Load() > 0 {
		s.failEntities.Add(-1)
		respondError(w, http.StatusServiceUnavailable, "entities unavailable")
		return
	}
	respondRaw(w, http.StatusOK, s.current().Entities)
}

func (s *Server) handleCompleted(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]json.RawMessage{
		"completedTests": s.current().CompletedTests,
	})
}

func (s *Server) handleExam(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "examId")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	exam, ok := s.current().Exams[id]
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("exam %q not found", id))
		return
	}
	respondRaw(w, http.StatusOK, exam)
}

func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"message": message})
}
