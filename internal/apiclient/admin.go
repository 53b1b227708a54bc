// ABOUTME: Admin operations for the API client
// ABOUTME: Covers user listing, plan upgrades, and platform settings

package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// AdminUser is the user shape returned by the admin user listing.
type AdminUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	UserType  string `json:"user_type"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// Settings is the admin settings singleton.
type Settings struct {
	BasicPlanPrice   float64           `json:"basic_plan_price"`
	PremiumPlanPrice float64           `json:"premium_plan_price"`
	TradingAPIKeys   map[string]string `json:"trading_api_keys"`
	PaymentAPIKeys   map[string]string `json:"payment_api_keys"`
	UpdatedAt        string            `json:"updated_at"`
}

// ListUsers returns every registered user.
func (c *Client) ListUsers(ctx context.Context) ([]AdminUser, error) {
	var out []AdminUser
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpgradeUser changes a user's plan and returns the server's confirmation.
func (c *Client) UpgradeUser(ctx context.Context, userID, newPlan string) (string, error) {
	path := fmt.Sprintf("/api/admin/users/%s/upgrade?new_plan=%s",
		url.PathEscape(userID), url.QueryEscape(newPlan))

	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPut, path, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// GetSettings returns the platform settings.
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var out Settings
	if err := c.doJSON(ctx, http.MethodGet, "/api/admin/settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateSettings replaces the platform settings.
func (c *Client) UpdateSettings(ctx context.Context, settings *Settings) error {
	return c.doJSON(ctx, http.MethodPut, "/api/admin/settings", settings, nil)
}
