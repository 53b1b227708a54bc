// ABOUTME: Tests for the admin settings singleton store operations
// ABOUTME: Covers lazy default creation, updates, and key map accessors

package store

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSettings_Defaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)

	assert.True(t, settings.BasicPlanPrice.Equal(decimal.NewFromFloat(29.99)),
		"basic price: got %s", settings.BasicPlanPrice)
	assert.True(t, settings.PremiumPlanPrice.Equal(decimal.NewFromFloat(99.99)),
		"premium price: got %s", settings.PremiumPlanPrice)
	assert.Empty(t, settings.TradingAPIKeys)
	assert.Empty(t, settings.PaymentAPIKeys)
	assert.False(t, settings.UpdatedAt.IsZero())
}

func TestGetSettings_Stable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetSettings(ctx)
	require.NoError(t, err)

	// A second read must return the same row, not re-create defaults.
	second, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestUpdateSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)

	settings.BasicPlanPrice = decimal.NewFromFloat(19.99)
	settings.PremiumPlanPrice = decimal.NewFromFloat(149.50)
	settings.TradingAPIKeys = map[string]string{"binance": "key-123"}
	settings.PaymentAPIKeys = map[string]string{"stripe": "sk-456"}

	require.NoError(t, store.UpdateSettings(ctx, settings))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)

	assert.True(t, got.BasicPlanPrice.Equal(decimal.NewFromFloat(19.99)))
	assert.True(t, got.PremiumPlanPrice.Equal(decimal.NewFromFloat(149.50)))

	v, ok := got.TradingKey("binance")
	require.True(t, ok)
	assert.Equal(t, "key-123", v)

	v, ok = got.PaymentKey("stripe")
	require.True(t, ok)
	assert.Equal(t, "sk-456", v)

	_, ok = got.TradingKey("kraken")
	assert.False(t, ok)
}

func TestUpdateSettings_NilKeyMaps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	settings := DefaultSettings()
	settings.TradingAPIKeys = nil
	settings.PaymentAPIKeys = nil

	require.NoError(t, store.UpdateSettings(ctx, settings))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got.TradingAPIKeys)
	assert.NotNil(t, got.PaymentAPIKeys)
}

func TestUpdateSettings_BeforeFirstRead(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Updating before any read must create the row rather than fail.
	settings := DefaultSettings()
	settings.BasicPlanPrice = decimal.NewFromFloat(9.99)
	require.NoError(t, store.UpdateSettings(ctx, settings))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.True(t, got.BasicPlanPrice.Equal(decimal.NewFromFloat(9.99)))
}
