// ABOUTME: Authentication operations for the API client
// ABOUTME: Covers health, register, login, and identity lookup

package apiclient

import (
	"context"
	"net/http"
)

// User is the public user shape returned by auth endpoints.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
}

// Token is the response from register and login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Me is the authenticated user's own profile.
type Me struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	UserType string `json:"user_type"`
	IsActive bool   `json:"is_active"`
}

// Health is the service health response.
type Health struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// GetHealth checks the service health endpoint.
func (c *Client) GetHealth(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account and returns its token.
func (c *Client) Register(ctx context.Context, email, password, fullName string) (*Token, error) {
	req := map[string]string{
		"email":     email,
		"password":  password,
		"full_name": fullName,
	}
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates with email and password and returns a token.
// On success the client keeps the token for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	req := map[string]string{
		"email":    email,
		"password": password,
	}
	var out Token
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.token = out.AccessToken
	return &out, nil
}

// GetMe returns the authenticated user's profile.
func (c *Client) GetMe(ctx context.Context) (*Me, error) {
	var out Me
	if err := c.doJSON(ctx, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
