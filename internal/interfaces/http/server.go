// Package http serves the feed engine's read-mostly API: feeds,
// fact-check statuses, trust scores, tuning suggestions, and the
// engagement ingest endpoint.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/kurral/feedengine/internal/app"
	"github.com/kurral/feedengine/internal/metrics"
)

// ServerConfig holds listener settings.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns local-only defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the HTTP front for the service facade.
type Server struct {
	router  *mux.Router
	server  *http.Server
	service *app.Service
	metrics *metrics.Registry
	config  ServerConfig
}

// NewServer builds the router and the underlying http.Server.
func NewServer(config ServerConfig, service *app.Service, reg *metrics.Registry) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		metrics: reg,
		config:  config,
	}
	s.setupRoutes()
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      s.router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestIDMiddleware)
	s.router.Use(loggingMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	s.router.HandleFunc("/feed/{viewerID}", s.handleFeed).Methods(http.MethodGet)
	s.router.HandleFunc("/chirps/{id}/status", s.handleChirpStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/chirps/{id}/verification", s.handleVerification).Methods(http.MethodPut)
	s.router.HandleFunc("/authors/{id}/score", s.handleScore).Methods(http.MethodGet)
	s.router.HandleFunc("/viewers/{id}/suggestion", s.handleSuggestion).Methods(http.MethodGet)
	s.router.HandleFunc("/viewers/{id}/suggestion/accept", s.handleAcceptSuggestion).Methods(http.MethodPost)
	s.router.HandleFunc("/events", s.handleEngagement).Methods(http.MethodPost)
}

// Start serves until the context is canceled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.server.Addr).Msg("http server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("http server shutting down")
		return s.server.Shutdown(shutdownCtx)
	}
}

// Router exposes the mux for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
