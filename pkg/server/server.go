// Package server hosts the faros HTTP surface: a mux with system
// endpoints, Prometheus metrics, and a shared middleware stack of
// request ids, request logging, per-client rate limiting and panic
// recovery for the API handlers mounted on it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
	"golang.org/x/time/rate"
)

// Server serves the mounted API handlers plus the system endpoints.
type Server struct {
	name     string
	version  string
	config   *Config
	handlers map[string]http.HandlerFunc

	httpServer *http.Server
	listener   net.Listener

	mu    sync.RWMutex
	ready bool

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// Option configures a Server.
type Option func(*Server)

// WithName sets the service name reported on / and /version.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithVersion sets the version reported on / and /version.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithConfig replaces the whole configuration. Later options still
// override individual fields.
func WithConfig(cfg *Config) Option {
	return func(s *Server) {
		if cfg != nil {
			s.config = cfg
		}
	}
}

// WithHandler mounts API handlers by path. They get the full
// middleware stack; system endpoints do not.
func WithHandler(handlers map[string]http.HandlerFunc) Option {
	return func(s *Server) {
		for path, handler := range handlers {
			s.handlers[path] = handler
		}
	}
}

// WithPort overrides the listen port. Port 0 asks the kernel for a
// free one; Addr reports what was bound.
func WithPort(port int) Option {
	return func(s *Server) { s.config.Port = port }
}

// WithAddress overrides the bind address.
func WithAddress(address string) Option {
	return func(s *Server) { s.config.Address = address }
}

// WithRateLimit overrides the per-client requests per second.
func WithRateLimit(rps float64) Option {
	return func(s *Server) { s.config.RateLimit = rate.Limit(rps) }
}

// New creates a Server with defaults overridden by opts.
func New(opts ...Option) *Server {
	s := &Server{
		name:     "faros",
		version:  "dev",
		config:   DefaultConfig(),
		handlers: map[string]http.HandlerFunc{},
		limiters: map[string]*rate.Limiter{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run starts the server and blocks until ctx is canceled or the
// listener fails. Shutdown is graceful within ShutdownTimeout, and
// systemd is notified on both edges when running under it.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Address, s.config.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			"name", s.name,
			"version", s.version,
			"addr", ln.Addr().String(),
		)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.SetReady(true)
	notifySystemd(daemon.SdNotifyReady)

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-errCh:
		s.SetReady(false)
		return fmt.Errorf("server failed: %w", err)
	}

	s.SetReady(false)
	notifySystemd(daemon.SdNotifyStopping)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// Addr reports the bound listen address, useful when running on an
// ephemeral port. Empty until Run has bound the listener.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// SetReady flips the readiness gate served by /readyz.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	s.ready = ready
	s.mu.Unlock()
}

// notifySystemd sends a service state change when running under
// systemd and quietly does nothing anywhere else.
func notifySystemd(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Debug("sd_notify failed", "error", err)
		return
	}
	if !sent {
		slog.Debug("sd_notify skipped, not running under systemd")
	}
}
