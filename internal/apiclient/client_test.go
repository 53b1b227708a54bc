// ABOUTME: Tests for the HTTP API client against a fake server
// ABOUTME: Verifies auth headers, request shapes, and error decoding

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_StoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "admin@mk7.com", body["email"])

		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-123",
			"token_type":   "bearer",
			"user": map[string]any{
				"id": "u1", "email": "admin@mk7.com", "full_name": "Admin", "user_type": "admin",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	tok, err := c.Login(context.Background(), "admin@mk7.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", tok.AccessToken)
	assert.Equal(t, "admin", tok.User.UserType)
	assert.Equal(t, "tok-123", c.token)
}

func TestGetMe_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"id": "u1", "email": "a@b.com", "full_name": "A", "user_type": "basic", "is_active": true,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok-123")
	me, err := c.GetMe(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", me.ID)
	assert.True(t, me.IsActive)
}

func TestAPIError_DecodesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "Invalid email or password"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid email or password", apiErr.Message)
}

func TestAPIError_NonJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetHealth(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestUpgradeUser_BuildsPathAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/admin/users/u1/upgrade", r.URL.Path)
		require.Equal(t, "premium", r.URL.Query().Get("new_plan"))
		json.NewEncoder(w).Encode(map[string]string{"message": "User plan updated to premium"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")
	msg, err := c.UpgradeUser(context.Background(), "u1", "premium")
	require.NoError(t, err)
	assert.Equal(t, "User plan updated to premium", msg)
}

func TestGetCryptoPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/market/crypto-prices", r.URL.Path)
		w.Write([]byte(`{"bitcoin":{"usd":43000.5,"usd_24h_change":-1.1,"usd_market_cap":840000000000}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	prices, err := c.GetCryptoPrices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 43000.5, prices["bitcoin"].USD)
	assert.Equal(t, -1.1, prices["bitcoin"].USD24hChange)
}

func TestUpdateSettings_RoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		var body Settings
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, 19.99, body.BasicPlanPrice)
		json.NewEncoder(w).Encode(map[string]string{"message": "Settings updated successfully"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")
	err := c.UpdateSettings(context.Background(), &Settings{
		BasicPlanPrice:   19.99,
		PremiumPlanPrice: 99.99,
		TradingAPIKeys:   map[string]string{},
		PaymentAPIKeys:   map[string]string{},
	})
	require.NoError(t, err)
}
