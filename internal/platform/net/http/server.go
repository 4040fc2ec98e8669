// Package http provides the platform http server and JSON response helpers
package http

import (
	"context"
	stdhttp "net/http"
	"time"

	"llmo/internal/platform/config"
	"llmo/internal/platform/logger"
	"llmo/internal/platform/net/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is a thin wrapper over chi + stdlib http.Server
type Server struct {
	addr string
	mux  *chi.Mux
	srv  *stdhttp.Server
}

// NewServer builds the server with the platform middleware stack mounted.
// Reads PORT and CORS_ORIGINS from the given config scope
func NewServer(cfg config.Conf) *Server {
	addr := cfg.MayString("PORT", ":4000")

	m := chi.NewRouter()
	m.Use(chimw.RequestID)
	m.Use(middleware.AccessLog(middleware.AccessLogOptions{
		Slow: cfg.MayDuration("SLOW_REQUEST", 2*time.Second),
	}))
	m.Use(middleware.RecoverJSON)
	if origins := cfg.MayString("CORS_ORIGINS", ""); origins != "" {
		m.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{origins},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	return &Server{
		addr: addr,
		mux:  m,
		srv: &stdhttp.Server{
			Addr:              addr,
			Handler:           m,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Router returns the underlying chi mux so callers can mount routes
func (s *Server) Router() chi.Router { return s.mux }

// Addr returns the listening address
func (s *Server) Addr() string { return s.addr }

// Run starts the server and blocks until shutdown
func (s *Server) Run(ctx context.Context) error {
	log := logger.Named("http")
	log.Info().Str("addr", s.addr).Msg("http listening")

	errc := make(chan error, 1)
	go func() { errc <- s.srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shCtx)
	case err := <-errc:
		if err == stdhttp.ErrServerClosed {
			return nil
		}
		return err
	}
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
