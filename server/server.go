// Package server provides the HTTP view server for the activity registry.
//
// The server owns a registry.Registry and exposes its grouped view, its
// progress flags and its operations over a small JSON API. A presentation
// layer polls /api/status to decide when to show spinners.
//
// # Endpoints
//
//   - GET /health - Simple health check, returns "ok"
//   - GET /api/status - Registry flags, pending writes, selection and next refresh
//   - GET /api/activities - Cached activities grouped by day
//   - GET /api/activities/{id} - Selects an activity, fetching it if not cached
//   - POST /api/activities - Creates an activity
//   - PUT /api/activities/{id} - Replaces an activity
//   - DELETE /api/activities/{id}?control=NAME - Deletes an activity
//   - GET /api/selected - The selected activity
//   - POST /api/selected/clear - Drops the selection
//   - POST /api/reload - Reloads the whole collection
//   - GET /api/config - Current configuration as YAML, secrets redacted
//   - GET /api/logs - Recent warnings and errors
//   - GET /metrics - Prometheus metrics, when a scrape registry is configured
//
// # Example
//
//	srv, err := server.New(&cfg, reg, server.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nomis52/activities/buildinfo"
	"github.com/nomis52/activities/config"
	"github.com/nomis52/activities/logging"
	"github.com/nomis52/activities/metrics"
	"github.com/nomis52/activities/registry"
	"github.com/nomis52/activities/server/handlers"
	"github.com/nomis52/activities/server/refresh"
)

const (
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 30 * time.Second

	defaultShutdownTimeout = 5 * time.Second
)

// Server is the HTTP server for the activity registry.
type Server struct {
	cfg        *config.Config
	registry   *registry.Registry
	logger     *slog.Logger
	recorder   *logging.Recorder
	scrape     *metrics.ScrapeRegistry
	trigger    *refresh.Trigger
	certs      *CertLoader
	info       handlers.ServerInfo
	httpServer *http.Server

	refreshSpec string
}

// Option configures a Server.
type Option func(*Server) error

// WithLogger sets the server's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithRecorder sets the recorder served on /api/logs. The server and refresh
// loggers record into it. By default a recorder of server.log_buffer
// warnings and errors is created.
func WithRecorder(recorder *logging.Recorder) Option {
	return func(s *Server) error {
		s.recorder = recorder
		return nil
	}
}

// WithScrapeRegistry serves reg on /metrics.
func WithScrapeRegistry(reg *metrics.ScrapeRegistry) Option {
	return func(s *Server) error {
		s.scrape = reg
		return nil
	}
}

// WithRefresh reloads the collection on the given 5-field cron schedule,
// overriding server.refresh_schedule from the config.
func WithRefresh(spec string) Option {
	return func(s *Server) error {
		s.refreshSpec = spec
		return nil
	}
}

// New creates a Server for reg using the server section of cfg.
func New(cfg *config.Config, reg *registry.Registry, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if reg == nil {
		return nil, errors.New("registry is required")
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	s := &Server{
		cfg:         cfg,
		registry:    reg,
		logger:      logging.Discard(),
		refreshSpec: cfg.Server.RefreshSchedule,
		info: handlers.ServerInfo{
			Build:     buildinfo.Get(),
			StartedAt: time.Now(),
			Hostname:  hostname,
		},
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	if s.recorder == nil {
		s.recorder = logging.NewRecorder(cfg.Server.LogBuffer, slog.LevelWarn)
	}
	base := s.logger
	s.logger = s.recorder.Logger(base, "server")

	if s.refreshSpec != "" {
		trigger, err := refresh.New(s.refreshSpec, s.registry, s.recorder.Logger(base, "refresh"))
		if err != nil {
			return nil, fmt.Errorf("creating refresh trigger: %w", err)
		}
		s.trigger = trigger
	}

	if cfg.Server.TLSCert != "" {
		certs, err := NewCertLoader(cfg.Server.TLSCert, cfg.Server.TLSKey, s.logger)
		if err != nil {
			return nil, fmt.Errorf("loading tls certificate: %w", err)
		}
		s.certs = certs
	}

	return s, nil
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Config returns the configuration the server was created with.
func (s *Server) Config() *config.Config {
	return s.cfg
}

// NextRun returns the next scheduled refresh, or nil if no schedule is
// configured.
func (s *Server) NextRun() *time.Time {
	if s.trigger == nil {
		return nil
	}
	next := s.trigger.NextRun()
	return &next
}

// LastRefresh returns the outcome of the latest scheduled refresh.
func (s *Server) LastRefresh() *refresh.Result {
	if s.trigger == nil {
		return nil
	}
	return s.trigger.Last()
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)
	return mux
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It performs a graceful shutdown when the context is done. The initial load
// and the refresh trigger, if configured, are started alongside.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	}
	if s.certs != nil {
		s.httpServer.TLSConfig = s.certs.TLSConfig()
	}

	// Failures are logged by the registry and reported through /api/status.
	go s.registry.LoadAll(ctx)

	if s.trigger != nil {
		s.logger.Info("starting refresh trigger",
			"schedule", s.trigger.Spec(),
			"next_run", s.trigger.NextRun(),
		)
		s.trigger.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"addr", s.cfg.Server.Addr,
			"tls", s.certs != nil,
			"api", s.cfg.API.BaseURL,
		)
		var err error
		if s.certs != nil {
			err = s.httpServer.ListenAndServeTLS("", "")
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server")
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", handlers.HandleHealth)
	mux.Handle("GET /api/status", handlers.NewStatusHandler(s.registry, s, s.info))

	mux.Handle("GET /api/activities", handlers.NewListActivitiesHandler(s.registry))
	mux.Handle("GET /api/activities/{id}", handlers.NewGetActivityHandler(s.registry))
	mux.Handle("POST /api/activities", handlers.NewCreateActivityHandler(s.logger, s.registry))
	mux.Handle("PUT /api/activities/{id}", handlers.NewUpdateActivityHandler(s.logger, s.registry))
	mux.Handle("DELETE /api/activities/{id}", handlers.NewDeleteActivityHandler(s.logger, s.registry))

	mux.Handle("GET /api/selected", handlers.NewSelectedHandler(s.registry))
	mux.Handle("POST /api/selected/clear", handlers.NewClearSelectedHandler(s.registry))
	mux.Handle("POST /api/reload", handlers.NewReloadHandler(s.logger, s.registry))

	mux.Handle("GET /api/config", handlers.NewConfigHandler(s))
	mux.Handle("GET /api/logs", handlers.NewLogsHandler(s.recorder))

	if s.scrape != nil {
		mux.Handle("GET /metrics", s.scrape.Handler())
	}
}
