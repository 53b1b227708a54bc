// ABOUTME: HTTP server assembly wiring config, store, services, and routes
// ABOUTME: Owns the listener lifecycle and graceful shutdown

package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mk7/tradebot-backend/internal/accounts"
	"github.com/mk7/tradebot-backend/internal/analysis"
	"github.com/mk7/tradebot-backend/internal/auth"
	"github.com/mk7/tradebot-backend/internal/config"
	"github.com/mk7/tradebot-backend/internal/market"
	"github.com/mk7/tradebot-backend/internal/store"
)

// Server is the assembled HTTP API server.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	httpServer *http.Server

	store    *store.SQLiteStore
	accounts *accounts.Service
	prices   *market.CachedFetcher
	analysis *analysis.Service
}

// New assembles a server from configuration: opens the store, builds the
// token verifier and services, and registers all routes.
func New(cfg *config.Config) (*Server, error) {
	logger := slog.Default().With("component", "server")

	sqlStore, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("initializing store: %w", err)
	}

	verifier, err := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
	if err != nil {
		sqlStore.Close()
		return nil, fmt.Errorf("creating JWT verifier: %w", err)
	}

	accountSvc := accounts.NewService(sqlStore, sqlStore, verifier, cfg.Auth.TokenTTL)

	coingecko := market.NewCoinGeckoClient(cfg.Market.BaseURL, cfg.Market.Timeout)
	prices := market.NewCachedFetcher(coingecko, cfg.Market.CacheTTL)

	gemini := analysis.NewGeminiClient(cfg.Analysis.BaseURL, cfg.Analysis.APIKey, cfg.Analysis.Model, cfg.Analysis.Timeout)
	analysisSvc := analysis.NewService(gemini, prices)

	s := &Server{
		config:   cfg,
		logger:   logger,
		store:    sqlStore,
		accounts: accountSvc,
		prices:   prices,
		analysis: analysisSvc,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux, verifier)

	s.httpServer = &http.Server{
		Handler:           s.corsMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	return s, nil
}

// Store exposes the underlying store for bootstrap commands.
func (s *Server) Store() *store.SQLiteStore {
	return s.store
}

// Accounts exposes the account service for bootstrap commands.
func (s *Server) Accounts() *accounts.Service {
	return s.accounts
}

// registerRoutes wires all API routes with their middleware chains.
func (s *Server) registerRoutes(mux *http.ServeMux, verifier *auth.JWTVerifier) {
	authMiddleware := auth.HTTPAuthMiddleware(s.store, verifier)
	adminMiddleware := auth.RequireAdminHTTP()
	adminChain := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(adminMiddleware(h))
	}

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/auth/register", s.handleRegister)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.Handle("/api/auth/me", authMiddleware(http.HandlerFunc(s.handleMe)))
	mux.HandleFunc("/api/market/crypto-prices", s.handleCryptoPrices)
	mux.Handle("/api/analysis/gemini", authMiddleware(http.HandlerFunc(s.handleAnalysis)))
	mux.Handle("/api/admin/settings", adminChain(s.handleSettings))
	mux.Handle("/api/admin/users", adminChain(s.handleListUsers))
	mux.Handle("/api/admin/users/", adminChain(s.handleUserRoutes))
}

// corsMiddleware applies the configured CORS policy and answers preflight
// requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	allowed := s.config.CORS.AllowedOrigins

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			for _, a := range allowed {
				if a == "*" || a == origin {
					w.Header().Set("Access-Control-Allow-Origin", a)
					break
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	serverErr := s.waitForShutdownSignal(ctx, errCh)
	shutdownErr := s.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// waitForShutdownSignal waits for context cancellation or server error.
func (s *Server) waitForShutdownSignal(ctx context.Context, errCh chan error) error {
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
		return nil
	case err := <-errCh:
		s.logger.Error("server error", "error", err)
		return err
	}
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Shutdown(ctx)
}

// Shutdown stops the HTTP server and releases all resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	var errs []error
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.prices.Close()

	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}
