// Package fake serves an in-memory remote task collection speaking the same
// HTTP protocol as the real service. It backs client and engine tests and
// the td-remote development server.
package fake

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"todo-sync/internal/remote"
)

// ResourcePath is where the collection is mounted
const ResourcePath = "/api/resource/ToDo"

// Call records one request the server received
type Call struct {
	Method string
	Name   string
	Body   remote.WriteRequest
}

// Server is an in-memory remote task store
type Server struct {
	mu       sync.Mutex
	records  map[string]remote.Record
	seq      int
	auth     string
	failures map[string][]int
	calls    []Call
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Server
type Option func(*Server)

// WithToken requires every request to carry "Authorization: token key:secret"
func WithToken(key, secret string) Option {
	return func(s *Server) {
		s.auth = remote.TokenType + " " + key + ":" + secret
	}
}

// WithLogger logs each request through logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates an empty server
func New(opts ...Option) *Server {
	s := &Server{
		records:  make(map[string]remote.Record),
		failures: make(map[string][]int),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP router for the collection
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if s.logger != nil {
		r.Use(s.logRequests)
	}
	r.Use(s.checkAuth)
	r.Use(s.injectFailures)

	r.Route(ResourcePath, func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Put("/{name}", s.update)
		r.Delete("/{name}", s.delete)
	})
	return r
}

// Seed stores a record directly and returns its name
func (s *Server) Seed(description, status string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insert(description, status).Name
}

// Records returns a snapshot of the stored records, oldest first
func (s *Server) Records() []remote.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]remote.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Record returns one stored record by name
func (s *Server) Record(name string) (remote.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[name]
	return rec, ok
}

// Calls returns every write request received so far, in order
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// FailNext makes the next request with the given method answer with status
func (s *Server) FailNext(method string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = append(s.failures[method], status)
}

// Reset drops all records, calls and pending failures
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]remote.Record)
	s.failures = make(map[string][]int)
	s.calls = nil
}

func (s *Server) insert(description, status string) remote.Record {
	s.seq++
	rec := remote.Record{
		Name:        fmt.Sprintf("TODO-%05d", s.seq),
		Description: description,
		Status:      status,
		Creation:    s.now().UTC().Format(remote.CreationLayout),
	}
	s.records[rec.Name] = rec
	return rec
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", ww.Status())
	})
}

func (s *Server) checkAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth != "" && r.Header.Get("Authorization") != s.auth {
			writeError(w, http.StatusUnauthorized, "invalid or missing API token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFailures(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		queue := s.failures[r.Method]
		status := 0
		if len(queue) > 0 {
			status = queue[0]
			s.failures[r.Method] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, remote.ListResponse{Data: s.Records()})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	rec := s.insert(body.Description, body.Status)
	s.calls = append(s.calls, Call{Method: http.MethodPost, Name: rec.Name, Body: body})
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, remote.RecordResponse{Data: rec})
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, ok := decodeWrite(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	rec, found := s.records[name]
	if found {
		rec.Description = body.Description
		rec.Status = body.Status
		s.records[name] = rec
		s.calls = append(s.calls, Call{Method: http.MethodPut, Name: name, Body: body})
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "ToDo "+name+" not found")
		return
	}
	writeJSON(w, http.StatusOK, remote.RecordResponse{Data: rec})
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	s.mu.Lock()
	_, found := s.records[name]
	if found {
		delete(s.records, name)
		s.calls = append(s.calls, Call{Method: http.MethodDelete, Name: name})
	}
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "ToDo "+name+" not found")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"message": "ok"})
}

func decodeWrite(w http.ResponseWriter, r *http.Request) (remote.WriteRequest, bool) {
	var body remote.WriteRequest
	data, err := io.ReadAll(r.Body)
	if err == nil {
		err = json.Unmarshal(data, &body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return body, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"exc_type": http.StatusText(status), "message": message})
}
