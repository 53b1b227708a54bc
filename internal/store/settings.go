// ABOUTME: Settings singleton persistence on the SQLite store
// ABOUTME: Lazily creates defaults on first read and supports full-record updates

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// settingsRowID pins the singleton row. The schema enforces id = 1.
const settingsRowID = 1

// GetSettings returns the settings singleton, creating it with defaults
// on first read. The returned record is never nil on success.
func (s *SQLiteStore) GetSettings(ctx context.Context) (*Settings, error) {
	def := DefaultSettings()
	defTradingJSON, defPaymentJSON, err := marshalSettingsKeys(def)
	if err != nil {
		return nil, err
	}

	// Create the row if missing; concurrent first reads race safely.
	insert := `
		INSERT OR IGNORE INTO admin_settings (id, basic_plan_price, premium_plan_price, trading_api_keys, payment_api_keys, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, insert,
		settingsRowID,
		def.BasicPlanPrice.String(),
		def.PremiumPlanPrice.String(),
		defTradingJSON,
		defPaymentJSON,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return nil, fmt.Errorf("initializing settings: %w", err)
	}

	query := `
		SELECT basic_plan_price, premium_plan_price, trading_api_keys, payment_api_keys, updated_at
		FROM admin_settings
		WHERE id = ?
	`

	var settings Settings
	var basicStr, premiumStr, tradingJSON, paymentJSON, updatedAtStr string

	err = s.db.QueryRowContext(ctx, query, settingsRowID).Scan(
		&basicStr,
		&premiumStr,
		&tradingJSON,
		&paymentJSON,
		&updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}

	settings.BasicPlanPrice, err = decimal.NewFromString(basicStr)
	if err != nil {
		return nil, fmt.Errorf("parsing basic plan price: %w", err)
	}
	settings.PremiumPlanPrice, err = decimal.NewFromString(premiumStr)
	if err != nil {
		return nil, fmt.Errorf("parsing premium plan price: %w", err)
	}
	if err := json.Unmarshal([]byte(tradingJSON), &settings.TradingAPIKeys); err != nil {
		return nil, fmt.Errorf("unmarshaling trading API keys: %w", err)
	}
	if err := json.Unmarshal([]byte(paymentJSON), &settings.PaymentAPIKeys); err != nil {
		return nil, fmt.Errorf("unmarshaling payment API keys: %w", err)
	}
	settings.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &settings, nil
}

// UpdateSettings replaces the settings singleton with the given record.
// UpdatedAt is stamped by the store; the caller's value is ignored.
func (s *SQLiteStore) UpdateSettings(ctx context.Context, settings *Settings) error {
	tradingJSON, paymentJSON, err := marshalSettingsKeys(settings)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO admin_settings (id, basic_plan_price, premium_plan_price, trading_api_keys, payment_api_keys, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			basic_plan_price = excluded.basic_plan_price,
			premium_plan_price = excluded.premium_plan_price,
			trading_api_keys = excluded.trading_api_keys,
			payment_api_keys = excluded.payment_api_keys,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query,
		settingsRowID,
		settings.BasicPlanPrice.String(),
		settings.PremiumPlanPrice.String(),
		tradingJSON,
		paymentJSON,
		now.Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}

	settings.UpdatedAt = now
	s.logger.Info("updated settings",
		"basic_plan_price", settings.BasicPlanPrice,
		"premium_plan_price", settings.PremiumPlanPrice,
	)
	return nil
}

// marshalSettingsKeys serializes both key maps, treating nil as empty.
func marshalSettingsKeys(settings *Settings) (trading string, payment string, err error) {
	tradingKeys := settings.TradingAPIKeys
	if tradingKeys == nil {
		tradingKeys = map[string]string{}
	}
	paymentKeys := settings.PaymentAPIKeys
	if paymentKeys == nil {
		paymentKeys = map[string]string{}
	}

	tradingJSON, err := json.Marshal(tradingKeys)
	if err != nil {
		return "", "", fmt.Errorf("marshaling trading API keys: %w", err)
	}
	paymentJSON, err := json.Marshal(paymentKeys)
	if err != nil {
		return "", "", fmt.Errorf("marshaling payment API keys: %w", err)
	}
	return string(tradingJSON), string(paymentJSON), nil
}
