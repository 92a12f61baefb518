package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/provider"
)

// ExchangeRateHostProvider implements provider.ExchangeRate for
// exchangerate.host style endpoints, queried with base=USD.
type ExchangeRateHostProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// ExchangeRateHostResponse represents the latest-rates response.
// Example: { "base": "USD", "date": "2026-10-17", "rates": { "USD": 1, "EUR": 0.92 } }
type ExchangeRateHostResponse struct {
	Success *bool              `json:"success,omitempty"`
	Base    string             `json:"base"`
	Date    string             `json:"date"`
	Rates   map[string]float64 `json:"rates"`
}

// NewExchangeRateHostProvider creates the fallback rate source.
func NewExchangeRateHostProvider(
	baseURL, apiKey string,
	timeout time.Duration,
	logger *slog.Logger,
) *ExchangeRateHostProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateHostProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (p *ExchangeRateHostProvider) requestURL() (string, error) {
	u, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid fallback url: %w", err)
	}
	q := u.Query()
	q.Set("base", domain.BaseCurrency)
	if p.apiKey != "" {
		q.Set("access_key", p.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchRates fetches the USD rate table
func (p *ExchangeRateHostProvider) FetchRates(ctx context.Context) (*provider.RateTable, error) {
	reqURL, err := p.requestURL()
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Fetching exchange rates", "provider", p.Name(), "url", p.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: API returned status %d: %s", domain.ErrSourceUnavailable, resp.StatusCode, string(body))
	}

	var apiResp ExchangeRateHostResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Success != nil && !*apiResp.Success {
		return nil, fmt.Errorf("%w: success=false", domain.ErrSourceRejected)
	}

	rates := domain.RateMap(apiResp.Rates)
	if !rates.Valid() {
		return nil, fmt.Errorf("%w: USD rate must be 1 and every rate positive", domain.ErrInvalidRates)
	}

	return &provider.RateTable{
		Rates:       rates,
		LastUpdated: apiResp.Date,
	}, nil
}

// Name returns the provider's name
func (p *ExchangeRateHostProvider) Name() string {
	return "exchangerate-host"
}

var _ provider.ExchangeRate = (*ExchangeRateHostProvider)(nil)
