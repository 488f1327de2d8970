// Package server wires the router: middleware stack, endpoint families,
// and their per-family rate limiters.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vidlens/vidlens/internal/apierr"
	"github.com/vidlens/vidlens/internal/config"
	"github.com/vidlens/vidlens/internal/server/handlers"
	"github.com/vidlens/vidlens/internal/server/middleware"
	"github.com/vidlens/vidlens/pkg/ratelimit"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Analysis *handlers.Analysis
	Browse   *handlers.Browse

	// Limits configures the per-family sliding windows.
	Limits config.RateLimitConfig

	Logger *zap.Logger
}

// Server owns the HTTP listener and router.
type Server struct {
	host    string
	port    int
	handler http.Handler
	logger  *zap.Logger
}

// New builds the router. Each endpoint family ("analysis", "youtube") gets
// its own limiter instance so exhausting one does not starve the other.
func New(host string, port int, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	max := deps.Limits.Max
	if max <= 0 {
		max = 10
	}
	window := deps.Limits.Window
	if window <= 0 {
		window = 5 * time.Minute
	}
	analysisLimiter := ratelimit.NewSlidingWindow(max, window)
	youtubeLimiter := ratelimit.NewSlidingWindow(max, window)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		apierr.NotFound(w, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		apierr.Write(w, http.StatusMethodNotAllowed, apierr.CodeMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/health", handlers.Health)
	r.Get("/version", handlers.VersionInfo)

	r.Route("/api", func(r chi.Router) {
		r.Route("/youtube", func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RateLimit(youtubeLimiter))
			r.Get("/playlists", deps.Browse.Playlists)
			r.Get("/videos", deps.Browse.PlaylistVideos)
		})

		r.Route("/analysis", func(r chi.Router) {
			// Status polling takes only the job id: no credential and no
			// rate limit, since the UI polls until a terminal state. Job
			// ids are unguessable uuids.
			r.Get("/status/{id}", deps.Analysis.JobStatus)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.RateLimit(analysisLimiter))
				r.Post("/playlist", deps.Analysis.StartPlaylist)
				r.Post("/video", deps.Analysis.AnalyzeVideo)
			})
		})
	})

	return &Server{host: host, port: port, handler: r, logger: logger}
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}
