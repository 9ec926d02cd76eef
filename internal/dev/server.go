package dev

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/orbit"
	"github.com/vango-dev/orbit/internal/config"
	"github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/expression"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// ServerOptions configures the playground server.
type ServerOptions struct {
	// Config is the project configuration.
	Config *config.Config

	// Page overrides the configured page path.
	Page string

	// Addr overrides the configured listen address.
	Addr string

	// Setup registers behaviors on every session's runtime.
	Setup func(*orbit.Runtime)

	// Logger receives server logs. Defaults to the config's logger.
	Logger *slog.Logger

	// OnReload is called when browsers are told to reload.
	OnReload func(sessions int)
}

// Server is the playground server.
type Server struct {
	config     *config.Config
	options    ServerOptions
	page       string
	addr       string
	logger     *slog.Logger
	evaluator  expression.Evaluator
	registry   *prometheus.Registry
	metrics    *telemetry.Metrics
	hub        *Hub
	watcher    *Watcher
	changeCh   chan Change
	httpServer *http.Server
	mu         sync.Mutex
	running    bool
}

// NewServer creates a playground server.
func NewServer(options ServerOptions) (*Server, error) {
	cfg := options.Config
	if cfg == nil {
		cfg = config.New()
	}

	logger := options.Logger
	if logger == nil {
		logger = cfg.Logger(os.Stderr)
	}

	evaluator, err := cfg.Evaluator()
	if err != nil {
		return nil, err
	}

	page := cfg.PagePath()
	if options.Page != "" {
		page = resolvePath(cfg.Dir(), options.Page)
	}
	addr := cfg.Address()
	if options.Addr != "" {
		addr = options.Addr
	}

	s := &Server{
		config:    cfg,
		options:   options,
		page:      page,
		addr:      addr,
		logger:    logger,
		evaluator: evaluator,
		watcher: NewWatcher(WatcherConfig{
			Paths:    CollectWatchPaths(cfg, page),
			Interval: 200 * time.Millisecond,
		}),
	}

	if cfg.Metrics.Enabled {
		s.registry = prometheus.NewRegistry()
		s.metrics = telemetry.NewMetrics(
			telemetry.WithRegistry(s.registry),
			telemetry.WithNamespace(cfg.Metrics.Namespace),
		)
	}

	s.hub = NewHub(s.newSession, logger)
	return s, nil
}

// Handler returns the playground's routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)

	r.Get("/", s.handlePage)
	r.Get(SessionPath, s.hub.HandleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Start serves until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	if _, err := os.Stat(s.page); err != nil {
		s.logger.Warn("page not found; sessions will fail until it exists", "page", s.page)
	}

	s.changeCh = make(chan Change, 64)
	s.watcher.OnChange(func(change Change) {
		select {
		case s.changeCh <- change:
		default:
		}
	})
	go s.watcher.Start(ctx)
	go s.processChanges(ctx)

	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("playground running", "url", "http://"+s.addr, "page", s.page)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop stops the server and closes every session.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.running = false
	s.watcher.Stop()
	s.hub.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// newSession reads the page from disk and prepares a session for it.
func (s *Server) newSession() (*Session, error) {
	markup, err := os.ReadFile(s.page)
	if err != nil {
		return nil, errors.New("E051").
			WithDetail("Failed to read " + s.page).
			Wrap(err)
	}
	return NewSession(SessionConfig{
		Page:  markup,
		Setup: s.options.Setup,
		Options: []orbit.Option{
			orbit.WithPrefix(s.config.Prefix),
			orbit.WithEvaluator(s.evaluator),
			orbit.WithMetrics(s.metrics),
		},
		Logger: s.logger,
	})
}

// handlePage serves the settled page with the client script.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.newSession()
	if err != nil {
		s.logger.Error("page failed to load", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	page, err := sess.Prerender()
	if err != nil {
		s.logger.Error("page failed to render", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(injectClient(string(page))))
}

// processChanges serializes file change handling and coalesces bursts.
func (s *Server) processChanges(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-s.changeCh:
			changes := []Change{change}
			draining := true
			for draining {
				select {
				case next := <-s.changeCh:
					changes = append(changes, next)
				default:
					draining = false
				}
			}
			s.handleChanges(changes)
		}
	}
}

// handleChanges reloads every browser after the page or config changed.
func (s *Server) handleChanges(changes []Change) {
	reload := false
	for _, change := range changes {
		s.logger.Info("changed", "path", change.Path, "type", change.Type)
		switch change.Type {
		case ChangeConfig:
			s.logger.Warn("configuration changed; restart orbit serve to apply it", "path", change.Path)
			reload = true
		case ChangePage:
			reload = true
		}
	}
	if !reload {
		return
	}

	s.hub.NotifyReload()
	n := s.hub.SessionCount()
	if s.options.OnReload != nil {
		s.options.OnReload(n)
	}
	s.logger.Info("reloaded browsers", "sessions", n)
}
