// ABOUTME: Market data and analysis operations for the API client
// ABOUTME: Covers crypto price lookup and AI market analysis

package apiclient

import (
	"context"
	"net/http"
)

// CoinPrice is one coin's entry in the crypto price listing.
type CoinPrice struct {
	USD          float64 `json:"usd"`
	USD24hChange float64 `json:"usd_24h_change"`
	USDMarketCap float64 `json:"usd_market_cap"`
}

// Analysis is the AI analysis response.
type Analysis struct {
	Symbol      string `json:"symbol"`
	Timeframe   string `json:"timeframe"`
	Analysis    string `json:"analysis"`
	GeneratedAt string `json:"generated_at"`
	Analyst     string `json:"analyst"`
}

// GetCryptoPrices returns current prices keyed by coin ID.
func (c *Client) GetCryptoPrices(ctx context.Context) (map[string]CoinPrice, error) {
	var out map[string]CoinPrice
	if err := c.doJSON(ctx, http.MethodGet, "/api/market/crypto-prices", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Analyze requests an AI market analysis for a symbol.
func (c *Client) Analyze(ctx context.Context, symbol, timeframe, analysisType string) (*Analysis, error) {
	req := map[string]string{
		"symbol":        symbol,
		"timeframe":     timeframe,
		"analysis_type": analysisType,
	}
	var out Analysis
	if err := c.doJSON(ctx, http.MethodPost, "/api/analysis/gemini", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
