package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"arclight-hq/beacon/pkg/access"
	"arclight-hq/beacon/pkg/config"
	"arclight-hq/beacon/pkg/gateway"
	"arclight-hq/beacon/pkg/gateway/handlers"
	"arclight-hq/beacon/pkg/gateway/middleware"
	"arclight-hq/beacon/pkg/geo"
	"arclight-hq/beacon/pkg/limits"
	"arclight-hq/beacon/pkg/telemetry/metrics"
)

// Deps are the shared components the server mounts into every route
// handler. AuditSink and Notifier may be nil.
type Deps struct {
	Access    *access.Controller
	Gate      *limits.Gate
	Monitor   *limits.Monitor
	AuditSink handlers.AuditSink
	Notifier  handlers.Notifier
	Geo       geo.Resolver
	Metrics   *metrics.Collector
	Version   string
}

// Server is the gateway HTTP server. It mounts one proxy handler per
// configured route and manages graceful shutdown.
type Server struct {
	config       *config.Config
	deps         Deps
	httpServer   *http.Server
	proxies      []*handlers.Proxy
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a gateway server.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, whether from a
// cancelled context, an OS signal, or a Stop call.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler, err := s.setupRoutes()
	if err != nil {
		return err
	}

	// No WriteTimeout: streaming relays hold the response open for as
	// long as the upstream keeps producing.
	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        handler,
		ReadTimeout:    s.config.Server.ReadTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", s.config.Server.ListenAddress,
			"routes", len(s.config.Routes),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Stop requests shutdown from another goroutine.
func (s *Server) Stop() {
	select {
	case s.shutdownChan <- struct{}{}:
	default:
	}
}

// Shutdown gracefully drains in-flight requests and closes upstream
// connection pools.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		for _, p := range s.proxies {
			p.Close()
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler, for tests.
func (s *Server) Handler() (http.Handler, error) {
	return s.setupRoutes()
}

func (s *Server) setupRoutes() (http.Handler, error) {
	mux := http.NewServeMux()

	// ReflectOrigin is left unset: the proxy derives it per request from
	// the access controller.
	cors := gateway.CORSPolicy{
		AllowedMethods:   s.config.CORS.AllowedMethods,
		AllowedHeaders:   s.config.CORS.AllowedHeaders,
		AllowCredentials: s.config.CORS.AllowCredentials,
		MaxAge:           s.config.CORS.MaxAge,
	}

	prefix := strings.TrimSuffix(s.config.Server.RoutePrefix, "/")
	for name, route := range s.config.Routes {
		mount := prefix + "/" + name
		proxy, err := handlers.NewProxy(
			handlers.ProxyConfig{
				Route:                name,
				Mount:                mount,
				UpstreamBaseURL:      route.UpstreamBaseURL,
				DefaultSecret:        route.DefaultSecret,
				AllowClientKeys:      route.AllowClientKeys == nil || *route.AllowClientKeys,
				ForceJSONContentType: route.ForceJSONContentType,
				UpstreamTimeout:      route.UpstreamTimeout,
				CaptureBodies:        s.config.Audit.CaptureBodies != nil && *s.config.Audit.CaptureBodies,
				MaxBodyBytes:         s.config.Audit.MaxBodyBytes,
				AbuseThreshold:       s.config.Limits.AbuseThreshold,
				AbuseWindow:          s.config.Limits.AbuseWindow,
			},
			s.deps.Access,
			s.deps.Gate,
			s.deps.Monitor,
			cors,
			s.deps.AuditSink,
			s.deps.Notifier,
			s.deps.Geo,
			s.deps.Metrics,
		)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", name, err)
		}
		s.proxies = append(s.proxies, proxy)
		// Subtree match: every method and path below the mount.
		mux.Handle(mount+"/", proxy)
		slog.Info("route mounted", "route", name, "mount", mount+"/", "upstream", route.UpstreamBaseURL)
	}

	mux.Handle("/health", handlers.NewHealth(s.deps.Version))
	if s.deps.Metrics != nil && s.config.Telemetry.Metrics.Enabled != nil && *s.config.Telemetry.Metrics.Enabled {
		mux.Handle(s.config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.Logging(handler)
	handler = middleware.Recovery(handler)
	return handler, nil
}
