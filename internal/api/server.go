package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"stockpulse/internal/adapters/config"
	"stockpulse/internal/metrics"
	"stockpulse/pkg/logger"
)

// HealthChecker reports the health of one dependency
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server exposes the webhook and operational endpoints
type Server struct {
	httpServer *http.Server
	checks     map[string]HealthChecker
	log        *logger.Logger
}

// NewServer builds the HTTP server with all routes registered
func NewServer(cfg config.ServerConfig, webhook *WebhookHandler, checks map[string]HealthChecker) *Server {
	s := &Server{
		checks: checks,
		log:    logger.Get().With("component", "http_server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/whatsapp", webhook.Handle)
	mux.HandleFunc("/", s.handleRoot)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown runs.
func (s *Server) Start() error {
	s.log.Infow("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("HTTP server shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"service": "stockpulse",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	result := map[string]string{"status": "ok"}
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			status = http.StatusServiceUnavailable
			result["status"] = "degraded"
			result[name] = err.Error()
			s.log.Warnw("Health check failed", "dependency", name, "error", err)
			continue
		}
		result[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}
