// Package stubapp implements a small stand-in for the application rig
// manages. It answers the same automation API the real app exposes, so the
// end-to-end tests and local demos can exercise launch, reuse, and teardown
// without the real thing.
package stubapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/tessro/rig/internal/logging"
)

// Config controls how the stub behaves.
type Config struct {
	// Addr is the listen address for the automation API.
	Addr string

	// Version is reported by /api/state.
	Version string

	// StartupDelay holds the listener back to simulate a slow boot.
	StartupDelay time.Duration

	// FailCloseWork makes /api/work/close answer 500, simulating an app
	// that cannot discard its open work.
	FailCloseWork bool
}

// Server is one stub instance.
type Server struct {
	cfg Config
	log *slog.Logger

	mu sync.Mutex
	// +checklocks:mu
	openWork int

	startedAt time.Time
	shutdown  chan struct{}
	once      sync.Once
}

// New creates a stub server.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8750"
	}
	if cfg.Version == "" {
		cfg.Version = "stub"
	}
	return &Server{
		cfg:      cfg,
		log:      logging.Component("stubapp"),
		shutdown: make(chan struct{}),
	}
}

// Run serves the automation API until the context is cancelled or a
// shutdown request arrives.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.StartupDelay > 0 {
		s.log.Info("simulating slow boot", "delay", s.cfg.StartupDelay)
		select {
		case <-time.After(s.cfg.StartupDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.startedAt = time.Now()

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.log.Info("stub app listening", "addr", s.cfg.Addr, "version", s.cfg.Version)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case <-s.shutdown:
		s.log.Info("shutdown requested over the automation API")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(stopCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router builds the automation API routes. Split out so tests can drive
// the handlers without a listener.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/ping", s.handlePing).Methods("GET")
	r.HandleFunc("/api/state", s.handleState).Methods("GET")
	r.HandleFunc("/api/work/open", s.handleOpenWork).Methods("POST")
	r.HandleFunc("/api/work/close", s.handleCloseWork).Methods("POST")
	r.HandleFunc("/api/shutdown", s.handleShutdown).Methods("POST")
	return r
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	open := s.openWork
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"version":    s.cfg.Version,
		"started_at": s.startedAt.UTC().Format(time.RFC3339),
		"open_work":  open,
	})
}

func (s *Server) handleOpenWork(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	s.openWork++
	open := s.openWork
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"open_work": open})
}

func (s *Server) handleCloseWork(w http.ResponseWriter, _ *http.Request) {
	if s.cfg.FailCloseWork {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "work cannot be closed"})
		return
	}

	s.mu.Lock()
	s.openWork = 0
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"open_work": 0})
}

func (s *Server) handleShutdown(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
	s.once.Do(func() { close(s.shutdown) })
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Maintenance performs one idempotent maintenance launch: it appends a
// marker line to maintenance.log under dir and exits successfully. The
// manager runs these to completion before every real launch.
func Maintenance(kind, dir string) error {
	if kind == "" {
		return errors.New("maintenance kind required")
	}
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	path := filepath.Join(dir, "maintenance.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s %s\n", time.Now().UTC().Format(time.RFC3339), kind)
	return err
}
