// Package devstore serves an in-memory employees collection over the same
// request contract roster expects from the real store. It exists for local
// runs (cmd/roster-store) and tests.
package devstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/roster/internal/employee"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

const collectionPrefix = "/employees"

// Server wraps the HTTP listener and handlers backing the dev store.
type Server struct {
	settings Settings
	data     *Memory
	snapshot *Snapshot
	metrics  *metrics
	logger   *zap.Logger

	// persistMu orders snapshot writes so a stale list never replaces a newer one.
	persistMu sync.Mutex

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithSnapshot saves the collection to snap after every successful write.
func WithSnapshot(snap *Snapshot) Option {
	return func(s *Server) {
		s.snapshot = snap
	}
}

// WithMemory serves an existing collection instead of an empty one.
func WithMemory(m *Memory) Option {
	return func(s *Server) {
		if m != nil {
			s.data = m
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer prepares a dev store server using the provided settings.
func NewServer(settings Settings, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		data:     NewMemory(),
		logger:   zap.NewNop(),
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.metrics = newMetrics(s.data)
	return s
}

// Memory exposes the backing collection.
func (s *Server) Memory() *Memory {
	return s.data
}

// Handler returns the HTTP routes without binding a listener. Collection
// routes are rate limited and instrumented; /health and /metrics are not limited.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc(collectionPrefix, s.handleCollection)
	api.HandleFunc(collectionPrefix+"/", s.handleItem)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metrics.handler())
	limited := rateLimit(s.settings.RateLimit, s.settings.Burst, api)
	mux.Handle(collectionPrefix, limited)
	mux.Handle(collectionPrefix+"/", limited)
	return s.metrics.instrument(mux)
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("devstore: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("devstore: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devstore: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = time.Now()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("devstore: serve error", zap.Error(err))
		}
	}()
	s.logger.Info("devstore: listening", zap.String("addr", listener.Addr().String()))
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}

type healthResponse struct {
	Status        string `json:"status"`
	Employees     int    `json:"employees"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		Employees:     s.data.Len(),
		UptimeSeconds: s.uptimeSeconds(),
	})
}

func (s *Server) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.data.List())
	case http.MethodPost:
		var e employee.Employee
		if !s.decode(w, r, &e) {
			return
		}
		e.ID = strings.TrimSpace(e.ID)
		if e.ID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id is required"})
			return
		}
		if err := s.data.Create(e); err != nil {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Info("devstore: created", zap.String("id", e.ID))
		s.persist()
		writeJSON(w, http.StatusCreated, e)
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodPost))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, collectionPrefix+"/"), "/")
	if id == "" || strings.Contains(id, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		e, ok := s.data.Get(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": errNotFound.Error()})
			return
		}
		writeJSON(w, http.StatusOK, e)
	case http.MethodPut:
		var e employee.Employee
		if !s.decode(w, r, &e) {
			return
		}
		if err := s.data.Replace(id, e); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Info("devstore: replaced", zap.String("id", id))
		s.persist()
		e.ID = id
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		if err := s.data.Delete(id); err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Info("devstore: deleted", zap.String("id", id))
		s.persist()
		writeJSON(w, http.StatusOK, map[string]string{})
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s, %s", http.MethodGet, http.MethodPut, http.MethodDelete))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// persist failures are logged; the in-memory collection stays authoritative.
func (s *Server) persist() {
	if s.snapshot == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.snapshot.Save(s.data.List()); err != nil {
		s.logger.Warn("devstore: snapshot failed", zap.String("path", s.snapshot.Path()), zap.Error(err))
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return false
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
