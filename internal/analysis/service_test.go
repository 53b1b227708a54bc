// ABOUTME: Tests for the analysis service and the Gemini client
// ABOUTME: Covers prompt construction, price context, and provider failures

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mk7/tradebot-backend/internal/market"
)

// fakeGenerator records the prompt it was given.
type fakeGenerator struct {
	prompt string
	text   string
	err    error
}

func (g *fakeGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	g.prompt = prompt
	if g.err != nil {
		return "", g.err
	}
	return g.text, nil
}

// staticPrices implements market.PriceFetcher with a fixed document.
type staticPrices struct {
	doc json.RawMessage
	err error
}

func (p *staticPrices) FetchPrices(ctx context.Context) (json.RawMessage, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.doc, nil
}

func TestAnalyze_CryptoSymbolGetsPriceContext(t *testing.T) {
	gen := &fakeGenerator{text: "Bullish."}
	prices := &staticPrices{doc: json.RawMessage(`{"bitcoin":{"usd":43000}}`)}
	svc := NewService(gen, prices)

	result, err := svc.Analyze(context.Background(), Request{Symbol: "BTC"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if !strings.Contains(gen.prompt, "Current crypto prices:") {
		t.Errorf("prompt missing price context: %q", gen.prompt)
	}
	if !strings.Contains(gen.prompt, `"bitcoin"`) {
		t.Errorf("prompt missing price data: %q", gen.prompt)
	}
	if result.Analysis != "Bullish." {
		t.Errorf("unexpected analysis text: %q", result.Analysis)
	}
	if result.Analyst != "Gemini AI" {
		t.Errorf("unexpected analyst: %q", result.Analyst)
	}
	if result.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestAnalyze_Defaults(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	svc := NewService(gen, nil)

	result, err := svc.Analyze(context.Background(), Request{Symbol: "EURUSD"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Timeframe != "1d" {
		t.Errorf("expected default timeframe 1d, got %q", result.Timeframe)
	}
	if !strings.Contains(gen.prompt, "Analysis Type: technical") {
		t.Errorf("prompt missing default analysis type: %q", gen.prompt)
	}
}

func TestAnalyze_NonCryptoGenericContext(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	prices := &staticPrices{err: market.ErrUpstream}
	svc := NewService(gen, prices)

	// Non-crypto symbols never touch the price fetcher
	_, err := svc.Analyze(context.Background(), Request{Symbol: "EURUSD", Timeframe: "4h"})
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if !strings.Contains(gen.prompt, "Analyzing EURUSD in 4h timeframe") {
		t.Errorf("prompt missing generic context: %q", gen.prompt)
	}
}

func TestAnalyze_PriceFetchFailure(t *testing.T) {
	gen := &fakeGenerator{text: "ok"}
	prices := &staticPrices{err: market.ErrUpstream}
	svc := NewService(gen, prices)

	_, err := svc.Analyze(context.Background(), Request{Symbol: "ETH"})
	if !errors.Is(err, market.ErrUpstream) {
		t.Errorf("expected market.ErrUpstream, got %v", err)
	}
}

func TestAnalyze_GeneratorFailure(t *testing.T) {
	gen := &fakeGenerator{err: ErrUpstream}
	svc := NewService(gen, nil)

	_, err := svc.Analyze(context.Background(), Request{Symbol: "EURUSD"})
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestGeminiClient_GenerateContent(t *testing.T) {
	var gotPath string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Market looks stable."}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-pro", 5*time.Second)
	text, err := client.GenerateContent(context.Background(), "analyze BTC")
	if err != nil {
		t.Fatalf("GenerateContent failed: %v", err)
	}

	if text != "Market looks stable." {
		t.Errorf("unexpected text: %q", text)
	}
	if gotPath != "/models/gemini-pro:generateContent" {
		t.Errorf("unexpected path: %q", gotPath)
	}
	if len(gotBody.Contents) != 1 || gotBody.Contents[0].Parts[0].Text != "analyze BTC" {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
}

func TestGeminiClient_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-pro", 5*time.Second)
	_, err := client.GenerateContent(context.Background(), "analyze BTC")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}

func TestGeminiClient_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient(server.URL, "test-key", "gemini-pro", 5*time.Second)
	_, err := client.GenerateContent(context.Background(), "analyze BTC")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
}
