// internal/pricing/http.go
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

// HTTPOracle fetches quotes from an external price feed over HTTP. Requests
// are rate limited so a burst of ledger operations cannot exhaust the feed's
// quota.
type HTTPOracle struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// HTTPOracleConfig configures an HTTPOracle.
type HTTPOracleConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per minute
}

// NewHTTPOracle creates an HTTPOracle for the given feed.
func NewHTTPOracle(cfg HTTPOracleConfig) *HTTPOracle {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 50 // requests per minute
	}

	return &HTTPOracle{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1),
	}
}

// priceResponse is the feed's quote payload.
type priceResponse struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// CurrentPrice fetches the quote for symbol. A feed response of 404 means the
// feed does not track the symbol and yields FallbackPrice; transport and
// decoding failures are returned as errors.
func (o *HTTPOracle) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := o.rateLimiter.Wait(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("price oracle: rate limit wait cancelled: %w", err)
	}

	endpoint := fmt.Sprintf("%s/prices/%s", o.baseURL, url.PathEscape(strings.ToLower(symbol)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price oracle: failed to build request: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price oracle: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return FallbackPrice, nil
	}
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("price oracle: unexpected status %d for symbol %s", resp.StatusCode, symbol)
	}

	var quote priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return decimal.Zero, fmt.Errorf("price oracle: failed to decode response: %w", err)
	}
	if quote.Price.LessThanOrEqual(decimal.Zero) {
		return FallbackPrice, nil
	}
	return quote.Price, nil
}
