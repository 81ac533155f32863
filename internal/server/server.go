// Package server exposes the read API: leaderboard, users, markets, pricing
// quotes, and the WebSocket refresh feed.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Calibrhq/calibr-app-sub000/internal/domain"
	"github.com/Calibrhq/calibr-app-sub000/internal/server/handler"
	"github.com/Calibrhq/calibr-app-sub000/internal/server/middleware"
	"github.com/Calibrhq/calibr-app-sub000/internal/server/ws"
)

// rateLimitPerSecond caps requests per client IP when a rate limiter is
// configured.
const rateLimitPerSecond = 20

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // plaintext key; empty disables auth unless APIKeyHash is set
	APIKeyHash  string // PBKDF2 "salt:hash" credential
}

// Handlers aggregates all HTTP handlers that the server needs to register.
type Handlers struct {
	Health      *handler.HealthHandler
	Leaderboard *handler.LeaderboardHandler
	Markets     *handler.MarketHandler
	Quotes      *handler.QuoteHandler
}

// Server is the headless HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *slog.Logger
}

// NewServer creates a new Server with all routes registered on the ServeMux.
// It wires up middleware (rate limiting, logging, CORS, auth) and attaches
// the WebSocket hub. limiter may be nil to disable rate limiting.
func NewServer(cfg Config, handlers Handlers, wsHub *ws.Hub, limiter domain.RateLimiter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Health check (no auth required).
	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)

	// Leaderboard endpoints.
	mux.HandleFunc("GET /api/leaderboard", handlers.Leaderboard.GetLeaderboard)
	mux.HandleFunc("GET /api/users/{address}", handlers.Leaderboard.GetUser)

	// Market endpoints.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/{id}", handlers.Markets.GetMarket)

	// Pricing quote endpoints.
	mux.HandleFunc("GET /api/quote/risk", handlers.Quotes.GetRisk)
	mux.HandleFunc("GET /api/quote/cost", handlers.Quotes.GetCost)
	mux.HandleFunc("GET /api/quote/redeem", handlers.Quotes.GetRedemption)
	mux.HandleFunc("GET /api/quote/tier", handlers.Quotes.GetTier)

	// WebSocket endpoint.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	// Build the middleware chain.
	var h http.Handler = mux

	h = middleware.Auth(middleware.AuthConfig{
		Key:     cfg.APIKey,
		KeyHash: cfg.APIKeyHash,
	})(h)

	if limiter != nil {
		h = middleware.RateLimit(limiter, rateLimitPerSecond, time.Second)(h)
	}

	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		mux:        mux,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
