package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"unyield-service-faceblur/domain/anonymize"
)

// Pipeline is the narrow surface the HTTP API needs from the anonymization
// service
type Pipeline interface {
	ProcessVideo(ctx context.Context, sourceURL string) *anonymize.Result
}

// Server wraps the HTTP API for the face-blur service
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// ServerConfig holds the dependencies for the HTTP API
type ServerConfig struct {
	Port      int
	Pipeline  Pipeline
	Logger    *slog.Logger
	StartTime time.Time
}

// NewServer creates the HTTP server with its router
func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
			// Uploads are fetched by URL, not streamed through this API, so
			// the read timeout can stay short. Writes wait on the pipeline.
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

// Start runs the server until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}
