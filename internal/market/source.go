package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"cartola-trader/internal/metrics"
)

// PriceSource returns the current quote for a ticker. Implementations never
// fail the caller: on any fetch problem they degrade to the catalog's static
// reference price, returning 0 only for a ticker the catalog does not know.
type PriceSource interface {
	Quote(ctx context.Context, ticker string) float64
}

// StaticSource serves quotes straight from the catalog's reference prices.
type StaticSource struct {
	catalog *Catalog
}

// NewStaticSource creates a price source backed only by the catalog table.
func NewStaticSource(catalog *Catalog) *StaticSource {
	return &StaticSource{catalog: catalog}
}

// Quote returns the static reference price, or 0 for an unknown ticker.
func (s *StaticSource) Quote(_ context.Context, ticker string) float64 {
	return s.catalog.StaticPrice(ticker)
}

// LiveSource fetches quotes from the brapi.dev API with a bounded timeout,
// falling back to the catalog's static price on any failure. A single attempt
// is made per call; the fallback substitutes for retry.
type LiveSource struct {
	catalog *Catalog
	client  *http.Client
	baseURL string
	token   string
	logger  zerolog.Logger
}

// LiveSourceConfig holds configuration for the live quote feed.
type LiveSourceConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// NewLiveSource creates a live price source over the given catalog.
func NewLiveSource(catalog *Catalog, cfg LiveSourceConfig) *LiveSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://brapi.dev/api/quote"
	}
	return &LiveSource{
		catalog: catalog,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		token:   cfg.Token,
		logger:  cfg.Logger.With().Str("component", "market").Logger(),
	}
}

// quoteResponse mirrors the brapi.dev quote payload.
type quoteResponse struct {
	Results []struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"results"`
}

// Quote returns the live market price for ticker. Unknown tickers quote 0;
// any fetch error quotes the static reference price instead.
func (s *LiveSource) Quote(ctx context.Context, ticker string) float64 {
	ticker = NormalizeTicker(ticker)
	if !s.catalog.Contains(ticker) {
		return 0
	}

	price, err := s.fetch(ctx, ticker)
	if err != nil {
		metrics.QuoteFallbacks.Inc()
		s.logger.Warn().
			Err(err).
			Str("ticker", ticker).
			Msg("live quote failed, using static price")
		return s.catalog.StaticPrice(ticker)
	}
	return price
}

func (s *LiveSource) fetch(ctx context.Context, ticker string) (float64, error) {
	if s.token == "" {
		return 0, fmt.Errorf("no API token configured")
	}

	endpoint := fmt.Sprintf("%s/%s?token=%s", s.baseURL, url.PathEscape(ticker), url.QueryEscape(s.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("building quote request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote API returned status %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding quote response: %w", err)
	}
	if len(payload.Results) == 0 {
		return 0, fmt.Errorf("quote API returned no results for %s", ticker)
	}

	price := payload.Results[0].RegularMarketPrice
	if price <= 0 {
		return 0, fmt.Errorf("quote API returned non-positive price %.4f for %s", price, ticker)
	}
	return price, nil
}
