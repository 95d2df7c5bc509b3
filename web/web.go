// Package web exposes the roulette over HTTP: REST endpoints for the
// cuisine and restaurant wheels, a websocket reveal stream, health and
// prometheus metrics.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	srv    *http.Server
	svc    *Service
	logger *slog.Logger

	allowedOrigins []string
	started        time.Time
}

type Options struct {
	Addr        string
	CorsOrigins []string
}

func New(svc *Service, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	origins := opts.CorsOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	ans := Server{
		svc:            svc,
		logger:         logger,
		allowedOrigins: origins,
		started:        time.Now(),
		srv: &http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(securityHeaders)

	r.Get("/api/config", ans.getConfig)
	r.Get("/api/health", ans.getHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/cuisines", ans.getCuisines)
		r.Get("/address", ans.getAddress)
		r.Post("/search", ans.postSearch)
		r.Post("/spin/cuisine", ans.postSpinCuisine)
		r.Post("/spin/restaurant", ans.postSpinRestaurant)
		r.Get("/spin/stream", ans.spinStream)
	})

	ans.srv.Handler = r

	return &ans
}

func (s *Server) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		if err := s.srv.Shutdown(context.Background()); err != nil {
			s.logger.Error("server shutdown", "error", err)

			return
		}

		s.logger.Info("server stopped")
	}()

	fmt.Fprintf(os.Stderr, "visit http://localhost%s\n", s.srv.Addr)

	err := s.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Handler exposes the routed handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(w, r)
	})
}
