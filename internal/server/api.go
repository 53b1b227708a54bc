// ABOUTME: HTTP API handlers and JSON DTOs for the trading backend
// ABOUTME: Maps service errors onto the API's status code taxonomy

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mk7/tradebot-backend/internal/accounts"
	"github.com/mk7/tradebot-backend/internal/analysis"
	"github.com/mk7/tradebot-backend/internal/auth"
	"github.com/mk7/tradebot-backend/internal/market"
	"github.com/mk7/tradebot-backend/internal/store"
)

// serviceName is reported by the health endpoint.
const serviceName = "MK7 Trading Bot API"

// RegisterRequest is the JSON request body for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the embedded user object in token responses.
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

// TokenResponse is the JSON response for register and login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
}

// MeResponse is the JSON response for GET /api/auth/me.
type MeResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
	IsActive bool   `json:"is_active"`
}

// AdminUserResponse is one entry in the GET /api/admin/users listing.
// The password hash is never serialized.
type AdminUserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	UserType  string `json:"user_type"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// SettingsResponse is the JSON shape for GET /api/admin/settings.
type SettingsResponse struct {
	BasicPlanPrice   float64           `json:"basic_plan_price"`
	PremiumPlanPrice float64           `json:"premium_plan_price"`
	TradingAPIKeys   map[string]string `json:"trading_api_keys"`
	PaymentAPIKeys   map[string]string `json:"payment_api_keys"`
	UpdatedAt        string            `json:"updated_at"`
}

// SettingsUpdateRequest is the JSON request body for PUT /api/admin/settings.
type SettingsUpdateRequest struct {
	BasicPlanPrice   float64           `json:"basic_plan_price"`
	PremiumPlanPrice float64           `json:"premium_plan_price"`
	TradingAPIKeys   map[string]string `json:"trading_api_keys"`
	PaymentAPIKeys   map[string]string `json:"payment_api_keys"`
}

// MessageResponse is the JSON response for mutations that return a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// handleHealth handles GET /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
	})
}

// handleRegister handles POST /api/auth/register.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	req, err := parseRegisterRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := s.accounts.Register(r.Context(), req.Email, req.Password, req.FullName)
	if errors.Is(err, store.ErrEmailExists) {
		s.sendJSONError(w, http.StatusBadRequest, "Email already registered")
		return
	}
	if errors.Is(err, auth.ErrEmptyPassword) {
		s.sendJSONError(w, http.StatusBadRequest, "password is required")
		return
	}
	if err != nil {
		s.logger.Error("registration failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, tokenResponse(user, token))
}

// handleLogin handles POST /api/auth/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, token, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		s.sendJSONError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}
	if errors.Is(err, accounts.ErrAccountDisabled) {
		s.sendJSONError(w, http.StatusBadRequest, "Account is disabled")
		return
	}
	if err != nil {
		s.logger.Error("login failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, tokenResponse(user, token))
}

// handleMe handles GET /api/auth/me. Requires auth middleware.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	authCtx := auth.MustFromContext(r.Context())
	s.sendJSON(w, http.StatusOK, MeResponse{
		ID:       authCtx.UserID,
		Email:    authCtx.Email,
		FullName: authCtx.FullName,
		UserType: string(authCtx.Plan),
		IsActive: authCtx.Active,
	})
}

// handleCryptoPrices handles GET /api/market/crypto-prices.
func (s *Server) handleCryptoPrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	prices, err := s.prices.FetchPrices(r.Context())
	if err != nil {
		s.logger.Warn("crypto price fetch failed", "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "failed to fetch crypto prices")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(prices)
}

// handleAnalysis handles POST /api/analysis/gemini. Requires auth middleware.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Symbol == "" {
		s.sendJSONError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	result, err := s.analysis.Analyze(r.Context(), req)
	if errors.Is(err, analysis.ErrUpstream) || errors.Is(err, market.ErrUpstream) {
		s.logger.Warn("analysis failed", "symbol", req.Symbol, "error", err)
		s.sendJSONError(w, http.StatusBadGateway, "analysis failed")
		return
	}
	if err != nil {
		s.logger.Error("analysis failed", "symbol", req.Symbol, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, result)
}

// handleSettings handles GET and PUT /api/admin/settings. Requires admin chain.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetSettings(w, r)
	case http.MethodPut:
		s.handleUpdateSettings(w, r)
	default:
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.GetSettings(r.Context())
	if err != nil {
		s.logger.Error("loading settings failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, SettingsResponse{
		BasicPlanPrice:   settings.BasicPlanPrice.InexactFloat64(),
		PremiumPlanPrice: settings.PremiumPlanPrice.InexactFloat64(),
		TradingAPIKeys:   settings.TradingAPIKeys,
		PaymentAPIKeys:   settings.PaymentAPIKeys,
		UpdatedAt:        settings.UpdatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	settings := &store.Settings{
		BasicPlanPrice:   decimal.NewFromFloat(req.BasicPlanPrice),
		PremiumPlanPrice: decimal.NewFromFloat(req.PremiumPlanPrice),
		TradingAPIKeys:   req.TradingAPIKeys,
		PaymentAPIKeys:   req.PaymentAPIKeys,
	}
	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		s.logger.Error("updating settings failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, MessageResponse{Message: "Settings updated successfully"})
}

// handleListUsers handles GET /api/admin/users. Requires admin chain.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.logger.Error("listing users failed", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AdminUserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, AdminUserResponse{
			ID:        u.ID,
			Email:     u.Email,
			FullName:  u.FullName,
			UserType:  string(u.Plan),
			IsActive:  u.Active,
			CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	s.sendJSON(w, http.StatusOK, resp)
}

// handleUserRoutes dispatches /api/admin/users/{id}/upgrade. Requires admin chain.
func (s *Server) handleUserRoutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/users/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "upgrade" {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	if r.Method != http.MethodPut {
		s.sendJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	s.handleUpgradeUser(w, r, parts[0])
}

func (s *Server) handleUpgradeUser(w http.ResponseWriter, r *http.Request, userID string) {
	newPlan := r.URL.Query().Get("new_plan")
	plan, ok := store.ParsePlan(newPlan)
	if !ok {
		s.sendJSONError(w, http.StatusBadRequest, "Invalid plan type")
		return
	}

	actor := auth.MustFromContext(r.Context())
	user, err := s.accounts.UpgradePlan(r.Context(), actor.UserID, userID, plan)
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.logger.Error("plan upgrade failed", "user", userID, "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.sendJSON(w, http.StatusOK, MessageResponse{
		Message: "User plan updated to " + string(user.Plan),
	})
}

// tokenResponse builds the register/login response shape.
func tokenResponse(user *store.User, token string) TokenResponse {
	return TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
			UserType: string(user.Plan),
		},
	}
}

// parseRegisterRequest parses and validates a RegisterRequest from the given reader.
func parseRegisterRequest(r io.Reader) (*RegisterRequest, error) {
	var req RegisterRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}

	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return nil, errors.New("a valid email is required")
	}
	if req.Password == "" {
		return nil, errors.New("password is required")
	}
	if req.FullName == "" {
		return nil, errors.New("full_name is required")
	}

	return &req, nil
}

// sendJSON writes a JSON response with the given status.
func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response failed", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
