// Package server is the HTTP adapter over the bedforge pipeline.
//
// Routes:
//
//	GET  /api/layout/health
//	POST /api/layout/generate           JSON result with every bed inline
//	POST /api/layout/generate/{format}  one bed as svg, pdf or png
//	POST /api/jobs                      grouped run over registry templates
//
// Handlers are thin: they decode the request, resolve the template and hand
// the job to a [pipeline.Runner]. Errors are returned as
// {"error": {"code", "field", "message"}} with a status derived from the
// error code.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/bedforge/pkg/pipeline"
	"github.com/matzehuels/bedforge/pkg/render/plate"
	"github.com/matzehuels/bedforge/pkg/store"
)

// DefaultMaxBodyBytes bounds request bodies when Options leaves it unset.
const DefaultMaxBodyBytes = 10 << 20

// shutdownTimeout is how long in-flight requests get once the context ends.
const shutdownTimeout = 10 * time.Second

// Snapshotter yields the template registry a request runs against.
// *store.Store satisfies it; each call sees the latest imported templates.
type Snapshotter interface {
	Snapshot(ctx context.Context) (*store.Snapshot, error)
}

type staticSource struct{ snap *store.Snapshot }

func (s staticSource) Snapshot(context.Context) (*store.Snapshot, error) { return s.snap, nil }

// Static serves a fixed registry snapshot.
func Static(snap *store.Snapshot) Snapshotter {
	if snap == nil {
		snap = store.NewSnapshot(nil, nil)
	}
	return staticSource{snap: snap}
}

// Options configures a Server.
type Options struct {
	MaxBodyBytes int64
	Logger       *log.Logger
	// Assets resolves image and graphic references for every request.
	Assets plate.Assets
	// Defaults fills job options the request leaves unset.
	Defaults pipeline.Options
}

// Server handles layout requests.
type Server struct {
	runner   *pipeline.Runner
	registry Snapshotter
	opts     Options
	logger   *log.Logger
	router   chi.Router
}

// New creates a server. A nil registry serves an empty one.
func New(runner *pipeline.Runner, registry Snapshotter, opts Options) *Server {
	if registry == nil {
		registry = Static(nil)
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{runner: runner, registry: registry, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(s.limitBody)

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout/health", s.handleHealth)
		r.Post("/layout/generate", s.handleGenerate)
		r.Post("/layout/generate/{format}", s.handleGenerateFile)
		r.Post("/jobs", s.handleJobs)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
