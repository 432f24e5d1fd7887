// Package stub serves a local stand-in for the TTS service so the portal can
// be exercised without the real synthesis backends. Speech is always a short
// silent WAV clip.
package stub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/tts-portal/internal/config"
)

// Server handles the stub HTTP API.
type Server struct {
	cfg     *config.StubConfig
	logger  *slog.Logger
	server  *http.Server
	presets PresetStore
	limiter *rate.Limiter
	router  chi.Router
}

// New creates a stub server. A nil store keeps presets in memory.
func New(cfg *config.StubConfig, logger *slog.Logger, presets PresetStore) *Server {
	if presets == nil {
		presets = NewMemoryStore()
	}

	s := &Server{
		cfg:     cfg,
		logger:  logger,
		presets: presets,
	}

	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimit)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(s.withAuth)

		r.With(s.withRateLimit).Post("/api/speak", s.handleSpeak)
		r.Get("/api/voices", s.handleVoices)
		r.Post("/api/prefs/preset", s.handleSavePreset)
		r.Get("/api/prefs/preset", s.handleGetPreset)
	})

	s.router = r

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the routed handler, for use with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting stub TTS server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down stub TTS server")
	return s.server.Shutdown(ctx)
}
