package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"streamlist/internal/logging"
	"streamlist/internal/metrics"
)

// Options wires the router to its collaborators.
type Options struct {
	Runner             BatchRunner
	Importer           ListImporter
	APIToken           string
	RateLimitPerMinute int
	RateLimitBurst     int
	Metrics            *metrics.Recorder
	ExposeMetrics      bool
	Logger             *slog.Logger
}

type handler struct {
	runner   BatchRunner
	importer ListImporter
	logger   *slog.Logger
}

// NewRouter builds the HTTP routes. The returned limiter is nil when rate
// limiting is disabled.
func NewRouter(opts Options) (*mux.Router, *ipRateLimiter) {
	logger := logging.NewComponentLogger(opts.Logger, "api")
	h := &handler{runner: opts.Runner, importer: opts.Importer, logger: logger}

	r := mux.NewRouter()
	r.Use(requestIDMiddleware, accessLogMiddleware(logger, opts.Metrics))
	r.NotFoundHandler = requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	}))
	r.MethodNotAllowedHandler = requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}))

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)
	if opts.ExposeMetrics && opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods(http.MethodGet)
	}

	apiRouter := r.PathPrefix("/api").Subrouter()
	limiter := newIPRateLimiter(opts.RateLimitPerMinute, opts.RateLimitBurst)
	if limiter != nil {
		apiRouter.Use(limiter.middleware)
	}
	apiRouter.Use(authMiddleware(strings.TrimSpace(opts.APIToken)))

	apiRouter.HandleFunc("/fetch-movies", h.handleFetchMovies).Methods(http.MethodPost)
	apiRouter.HandleFunc("/scrape-letterboxd", h.handleScrapeLetterboxd).Methods(http.MethodGet)
	apiRouter.HandleFunc("/services", h.handleServices).Methods(http.MethodGet)
	apiRouter.HandleFunc("/share", h.handleShareEncode).Methods(http.MethodPost)
	apiRouter.HandleFunc("/share/{state}", h.handleShareDecode).Methods(http.MethodGet)

	return r, limiter
}

// Server owns the HTTP listener.
type Server struct {
	bind    string
	logger  *slog.Logger
	limiter *ipRateLimiter

	listener net.Listener
	server   *http.Server
}

// NewServer prepares a server bound to bind. Call Start to listen.
func NewServer(bind string, opts Options) *Server {
	router, limiter := NewRouter(opts)
	return &Server{
		bind:    bind,
		logger:  logging.NewComponentLogger(opts.Logger, "api-server"),
		limiter: limiter,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// Batches of a few hundred titles take minutes.
			WriteTimeout: 10 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start listens and serves in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	if s.limiter != nil {
		go s.limiter.run(ctx)
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting up to five seconds for in-flight
// requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}
