// ABOUTME: Market analysis service composing prices and the AI generator
// ABOUTME: Builds the analyst prompt and shapes the analysis result

package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mk7/tradebot-backend/internal/market"
)

// analystName is reported in every analysis result.
const analystName = "Gemini AI"

// cryptoSymbols are the symbols whose prompts include live price context.
var cryptoSymbols = map[string]bool{
	"BTC": true,
	"ETH": true,
	"BNB": true,
	"ADA": true,
	"SOL": true,
}

// Request describes an analysis to run.
type Request struct {
	Symbol       string `json:"symbol"`
	Timeframe    string `json:"timeframe"`
	AnalysisType string `json:"analysis_type"`
}

// applyDefaults fills the documented default values for omitted fields.
func (r *Request) applyDefaults() {
	if r.Timeframe == "" {
		r.Timeframe = "1d"
	}
	if r.AnalysisType == "" {
		r.AnalysisType = "technical"
	}
}

// Result is a completed market analysis.
type Result struct {
	Symbol      string    `json:"symbol"`
	Timeframe   string    `json:"timeframe"`
	Analysis    string    `json:"analysis"`
	GeneratedAt time.Time `json:"generated_at"`
	Analyst     string    `json:"analyst"`
}

// Service runs market analyses. Crypto symbols get live price data as
// prompt context; everything else gets a generic context line.
type Service struct {
	gen    Generator
	prices market.PriceFetcher
	logger *slog.Logger
}

// NewService creates an analysis service. prices may be nil, in which
// case crypto symbols fall back to the generic context.
func NewService(gen Generator, prices market.PriceFetcher) *Service {
	return &Service{
		gen:    gen,
		prices: prices,
		logger: slog.Default().With("component", "analysis"),
	}
}

// Analyze runs one analysis. Upstream failures surface as ErrUpstream
// (possibly from the price fetch).
func (s *Service) Analyze(ctx context.Context, req Request) (*Result, error) {
	req.applyDefaults()

	marketContext, err := s.buildMarketContext(ctx, req)
	if err != nil {
		return nil, err
	}

	analysisText, err := s.gen.GenerateContent(ctx, buildPrompt(req, marketContext))
	if err != nil {
		return nil, err
	}

	s.logger.Info("completed analysis", "symbol", req.Symbol, "timeframe", req.Timeframe)
	return &Result{
		Symbol:      req.Symbol,
		Timeframe:   req.Timeframe,
		Analysis:    analysisText,
		GeneratedAt: time.Now().UTC(),
		Analyst:     analystName,
	}, nil
}

// buildMarketContext fetches price context for crypto symbols.
func (s *Service) buildMarketContext(ctx context.Context, req Request) (string, error) {
	if s.prices != nil && cryptoSymbols[strings.ToUpper(req.Symbol)] {
		prices, err := s.prices.FetchPrices(ctx)
		if err != nil {
			return "", fmt.Errorf("fetching price context: %w", err)
		}
		return "Current crypto prices: " + string(prices), nil
	}
	return fmt.Sprintf("Analyzing %s in %s timeframe", req.Symbol, req.Timeframe), nil
}

// buildPrompt renders the analyst prompt for a request.
func buildPrompt(req Request, marketContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "As a professional trading analyst, analyze the following market data for %s:\n\n", req.Symbol)
	fmt.Fprintf(&b, "Market Context: %s\n", marketContext)
	fmt.Fprintf(&b, "Timeframe: %s\n", req.Timeframe)
	fmt.Fprintf(&b, "Analysis Type: %s\n\n", req.AnalysisType)
	b.WriteString("Please provide:\n")
	b.WriteString("1. Market Overview\n")
	b.WriteString("2. Technical Analysis (if applicable)\n")
	b.WriteString("3. Key Support/Resistance levels\n")
	b.WriteString("4. Trend Direction\n")
	b.WriteString("5. Risk Assessment\n")
	b.WriteString("6. Trading Recommendations\n\n")
	b.WriteString("Keep the analysis concise but comprehensive.\n")
	return b.String()
}
