// ABOUTME: CoinGecko price client behind the PriceFetcher interface
// ABOUTME: Fetches USD prices with 24h change and market cap for a fixed coin list

package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrUpstream indicates the market data provider failed or returned a
// non-success status. Handlers map it to 502.
var ErrUpstream = errors.New("market data provider unavailable")

// trackedCoins is the fixed list of CoinGecko coin IDs served by the
// crypto-prices endpoint.
const trackedCoins = "bitcoin,ethereum,binancecoin,cardano,solana,polygon,chainlink,litecoin"

// PriceFetcher fetches current prices for the tracked coins.
// The result is the provider's JSON document, passed through untouched.
type PriceFetcher interface {
	FetchPrices(ctx context.Context) (json.RawMessage, error)
}

// CoinGeckoClient implements PriceFetcher against the CoinGecko simple
// price API.
type CoinGeckoClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCoinGeckoClient creates a client for the given API base URL with a
// bounded request timeout.
func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default().With("component", "market"),
	}
}

// FetchPrices fetches USD prices with 24h change and market cap for the
// tracked coins. Any transport or non-200 failure maps to ErrUpstream.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context) (json.RawMessage, error) {
	q := url.Values{}
	q.Set("ids", trackedCoins)
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")
	q.Set("include_market_cap", "true")
	reqURL := c.baseURL + "/simple/price?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("price fetch failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("price fetch returned non-200", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUpstream, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid JSON response", ErrUpstream)
	}

	return json.RawMessage(body), nil
}

// pricesCacheKey is the single cache key used by CachedFetcher; the coin
// list is fixed so all requests share one upstream document.
const pricesCacheKey = "crypto-prices"

// CachedFetcher fronts a PriceFetcher with a TTL cache.
type CachedFetcher struct {
	fetcher PriceFetcher
	cache   *Cache
}

// NewCachedFetcher wraps fetcher with a TTL cache.
func NewCachedFetcher(fetcher PriceFetcher, ttl time.Duration) *CachedFetcher {
	return &CachedFetcher{
		fetcher: fetcher,
		cache:   NewCache(ttl, 16),
	}
}

// FetchPrices returns the cached document when fresh, otherwise fetches
// from upstream and caches the result. Upstream failures are never
// cached.
func (f *CachedFetcher) FetchPrices(ctx context.Context) (json.RawMessage, error) {
	if cached, ok := f.cache.Get(pricesCacheKey); ok {
		return cached, nil
	}

	prices, err := f.fetcher.FetchPrices(ctx)
	if err != nil {
		return nil, err
	}

	f.cache.Put(pricesCacheKey, prices)
	return prices, nil
}

// Close releases the cache's background resources.
func (f *CachedFetcher) Close() {
	f.cache.Close()
}
