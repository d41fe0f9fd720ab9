// Package api exposes classification and column detection over HTTP.
package api

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/mailvet/internal/certs"
	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/detect"
	"github.com/Veraticus/mailvet/internal/engine"
	"github.com/Veraticus/mailvet/internal/table"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Limits applied to request bodies.
const (
	DefaultMaxAddresses = 10000
	maxJSONBodySize     = 8 * 1024 * 1024
)

// Options configures a Server.
type Options struct {
	Classifier   engine.Classifier
	Timeout      time.Duration
	MaxFileSize  int64
	BatchSize    int
	SampleSize   int
	MaxAddresses int
}

// Server is the HTTP server for the classification API.
type Server struct {
	runner   *engine.Runner
	detector *detect.Detector
	router   *chi.Mux
	server   *http.Server
	opts     Options
}

// NewServer creates a new Server instance.
func NewServer(opts Options) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = table.DefaultMaxFileSize
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = engine.DefaultOptions().BatchSize
	}
	if opts.MaxAddresses <= 0 {
		opts.MaxAddresses = DefaultMaxAddresses
	}

	s := &Server{
		runner:   engine.NewRunner(opts.Classifier),
		detector: detect.NewDetector(detect.Options{SampleSize: opts.SampleSize}),
		router:   chi.NewRouter(),
		opts:     opts,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.opts.Timeout))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/classify", s.handleClassify)
		r.Post("/classify/batch", s.handleClassifyBatch)
		r.Post("/detect", s.handleDetect)
	})
}

func (s *Server) httpServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = s.httpServer(addr)

	slog.Info("Starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// StartTLS begins listening for HTTPS requests using the manager's certificate.
func (s *Server) StartTLS(addr string, manager certs.Manager) error {
	cert, err := manager.Certificate()
	if err != nil {
		return fmt.Errorf("failed to load server certificate: %w", err)
	}

	s.server = s.httpServer(addr)
	s.server.TLSConfig = &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	slog.Info("Starting server", "addr", addr, "tls", true)
	return s.server.ListenAndServeTLS("", "")
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// requestLogger attaches a logger carrying the request id to the request context and logs each
// request through it rather than chi's stdlib logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := slog.Default().With("request_id", middleware.GetReqID(r.Context()))
		r = r.WithContext(common.WithLogger(r.Context(), logger))

		next.ServeHTTP(ww, r)

		logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}
