// Package server exposes the crawl pipelines over HTTP.
//
// Routes:
//
//	GET /crawl/<slug>      series as JSON
//	GET /crawl/<slug>.ics  series as an iCalendar feed
//	GET /metrics           metrics snapshot as JSON
//	GET /health            liveness
//
// Every other path gets a fixed placeholder. Each crawl request runs the
// source's pipeline synchronously for the year on the wall clock; requests for
// different sources share nothing but the fetcher.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pfrederiksen/racecal/internal/calendar"
	"github.com/pfrederiksen/racecal/internal/fetcher"
	"github.com/pfrederiksen/racecal/internal/logger"
	"github.com/pfrederiksen/racecal/internal/pipeline"
	"github.com/pfrederiksen/racecal/internal/source"
)

// Placeholder is the body served for unmatched paths
const Placeholder = "Hello World!"

const shutdownTimeout = 10 * time.Second

// Options configures a Server. Registry and Fetcher are required.
type Options struct {
	Registry *source.Registry
	Fetcher  fetcher.Fetcher
	Logger   *logger.Logger
	Metrics  *logger.Metrics
	// Now supplies the wall clock the crawl year is read from
	Now func() time.Time
}

// Server routes crawl requests to source pipelines
type Server struct {
	registry *source.Registry
	fetcher  fetcher.Fetcher
	log      *logger.Logger
	metrics  *logger.Metrics
	now      func() time.Time
	mux      *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		registry: opts.Registry,
		fetcher:  opts.Fetcher,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/crawl/{slug}", s.handleCrawl)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/", s.handlePlaceholder)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handlePlaceholder(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(Placeholder))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.handlePlaceholder(w, r)
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func (s *Server) handleCrawl(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	asICS := strings.HasSuffix(slug, ".ics")
	slug = strings.TrimSuffix(slug, ".ics")

	src, err := s.registry.Get(slug)
	if err != nil || r.Method != http.MethodGet {
		s.handlePlaceholder(w, r)
		return
	}

	now := s.now()
	s.metrics.IncrCounter("http.crawl." + src.Slug())
	series := s.runner(now.Year()).Run(r.Context(), src)

	if asICS {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(calendar.GenerateICS(series, now)))
		return
	}
	writeJSON(w, http.StatusOK, series)
}

func (s *Server) runner(year int) *pipeline.Runner {
	return pipeline.NewRunner(s.fetcher, year, s.log).WithMetrics(s.metrics)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", logger.Fields{"addr": addr, "sources": s.registry.Slugs()})
		errCh <- srv.ListenAndServe()
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
		s.log.Info("shutting down HTTP server", nil)
		return srv.Shutdown(shutdownCtx)
	}
}
