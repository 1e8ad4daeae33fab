// package server contains middleware & handlers for the moodify web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/moodify/internal/auth"
	"github.com/desertthunder/moodify/internal/metrics"
	"github.com/desertthunder/moodify/internal/recommend"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
// Common middleware includes logging, metrics, panic recovery, body limits, etc.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers that own several routes.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the mux patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
// Implementations register handlers, apply middleware, and configure the HTTP server.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options are the collaborators served by a [Server].
type Options struct {
	Flow    Authenticator
	Engine  Generator
	History HistoryReader
	Genres  recommend.GenreSuggester
	Logger  *log.Logger
}

// Server is the moodify HTTP service: OAuth callback routes, the JSON API, metrics and health checks.
type Server struct {
	router *BasicRouter
	oauth  *OAuthHandler
	opts   Options
	logger *log.Logger
}

// New builds a [Server] with every route registered.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{router: NewBasicRouter(), opts: opts, logger: logger}

	s.router.Use(
		RecoverMiddleware(logger),
		metrics.Middleware,
		LoggingMiddleware(logger),
		RequestSizeLimitMiddleware(maxBodyBytes),
	)

	s.oauth = NewOAuthHandler(opts.Flow, "/", logger)
	s.router.Handler(s.oauth)
	NewAPIHandler(opts.Flow, opts.Engine, opts.History, opts.Genres, logger).Register(s.router)

	s.router.HandleFunc(http.MethodGet, "/{$}", s.index)
	s.router.HandleFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// OAuth returns the handler serving the login routes.
func (s *Server) OAuth() *OAuthHandler {
	return s.oauth
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	status := s.opts.Flow.Status(r.Context())
	page := indexPage{Status: status.String(), Connected: status == auth.Authenticated}
	if s.opts.History != nil {
		items, err := s.opts.History.List(r.Context())
		if err != nil {
			requestLogger(r, s.logger).Warn("failed to load history", "error", err)
		}
		page.History = items
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, page); err != nil {
		requestLogger(r, s.logger).Error("failed to render index", "error", err)
	}
}
