// Package status serves a local introspection endpoint for the agent.
package status

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hazyhaar/livepatch/internal/route"
)

// State aggregates what the agent is doing. It records every reload
// cycle, so it doubles as the router's Recorder.
type State struct {
	mu        sync.RWMutex
	connected bool
	pageURL   string
	counts    map[string]int
	last      *route.CycleRecord
	startedAt time.Time
}

func NewState(pageURL string) *State {
	return &State{
		pageURL:   pageURL,
		counts:    make(map[string]int),
		startedAt: time.Now(),
	}
}

// Record implements route.Recorder.
func (s *State) Record(rec route.CycleRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[rec.Outcome]++
	s.last = &rec
}

// SetConnected tracks the push channel connection state.
func (s *State) SetConnected(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = ok
}

func (s *State) snapshot() report {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r := report{
		Connected: s.connected,
		Page:      s.pageURL,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
		Cycles:    make(map[string]int, len(s.counts)),
	}
	for k, v := range s.counts {
		r.Cycles[k] = v
	}
	if s.last != nil {
		last := *s.last
		r.LastCycle = &last
	}
	return r
}

type report struct {
	Connected bool               `json:"connected"`
	Page      string             `json:"page"`
	Uptime    string             `json:"uptime"`
	Cycles    map[string]int     `json:"cycles"`
	LastCycle *route.CycleRecord `json:"last_cycle,omitempty"`
}

// Server exposes the state over HTTP on a local listener.
type Server struct {
	state  *State
	logger *slog.Logger
	srv    *http.Server
}

func NewServer(listen string, state *State, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{state: state, logger: logger}
	s.srv = &http.Server{
		Addr:              listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the chi router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(s.state.snapshot()); err != nil {
			s.logger.Error("status: encode report", "error", err)
		}
	})
	return r
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("status: listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
