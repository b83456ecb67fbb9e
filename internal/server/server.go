// Package server exposes the kolam generator, the canvas evaluator proxy,
// and the post feed over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kolamstudio/kolamstudio/internal/config"
	"github.com/kolamstudio/kolamstudio/internal/store"
	"github.com/kolamstudio/kolamstudio/pkg/cache"
	"github.com/kolamstudio/kolamstudio/pkg/eval"
)

// Server is the HTTP API. Construct it with New and run it with Run.
type Server struct {
	cfg    *config.Config
	log    *log.Logger
	posts  store.PostStore
	cache  cache.Cache
	keyer  cache.Keyer
	eval   *eval.Client
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithPostStore sets the post persistence backend.
func WithPostStore(ps store.PostStore) Option {
	return func(s *Server) { s.posts = ps }
}

// WithCache sets the render cache backend.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithEvaluator sets the evaluator client. When nil the evaluate
// endpoint answers 503.
func WithEvaluator(c *eval.Client) Option {
	return func(s *Server) { s.eval = c }
}

// New assembles the server. Defaults: in-memory posts, no cache,
// no evaluator.
func New(cfg *config.Config, opts ...Option) *Server {
	s := &Server{
		cfg:   cfg,
		log:   log.Default(),
		posts: store.NewMemoryStore(),
		cache: cache.NewNullCache(),
		keyer: cache.NewDefaultKeyer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/kolam", s.handleGenerate)
		r.Post("/evaluate", s.handleEvaluate)

		r.Route("/posts", func(r chi.Router) {
			r.Post("/", s.handleCreatePost)
			r.Get("/", s.handleListPosts)
			r.Get("/{id}", s.handleGetPost)
			r.Delete("/{id}", s.handleDeletePost)
		})
	})

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout.Duration,
		WriteTimeout: s.cfg.Server.WriteTimeout.Duration,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
