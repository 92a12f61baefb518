package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/provider"
)

// ExchangeRateAPIProvider implements provider.ExchangeRate for the open
// exchangerate-api.com endpoint (https://open.er-api.com/v6/latest/USD).
type ExchangeRateAPIProvider struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// ExchangeRateAPIResponse represents the response from the open ExchangeRate API
// Example: { "result": "success", "base_code": "USD", "time_last_update_utc": "Sat, 18 Oct 2026 00:02:31 +0000", "rates": {...} }
type ExchangeRateAPIResponse struct {
	Result             string             `json:"result"`
	Provider           string             `json:"provider"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	TimeLastUpdateUTC  string             `json:"time_last_update_utc"`
	TimeNextUpdateUTC  string             `json:"time_next_update_utc"`
	BaseCode           string             `json:"base_code"`
	Rates              map[string]float64 `json:"rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// NewExchangeRateAPIProvider creates the primary rate source.
func NewExchangeRateAPIProvider(url string, timeout time.Duration, logger *slog.Logger) *ExchangeRateAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExchangeRateAPIProvider{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// FetchRates fetches the USD rate table
func (p *ExchangeRateAPIProvider) FetchRates(ctx context.Context) (*provider.RateTable, error) {
	p.logger.Debug("Fetching exchange rates", "provider", p.Name(), "url", p.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
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

	var apiResp ExchangeRateAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Result != "success" {
		return nil, fmt.Errorf("%w: result=%s error-type=%s", domain.ErrSourceRejected, apiResp.Result, apiResp.ErrorType)
	}

	rates := domain.RateMap(apiResp.Rates)
	if !rates.Valid() {
		return nil, fmt.Errorf("%w: USD rate must be 1 and every rate positive", domain.ErrInvalidRates)
	}

	return &provider.RateTable{
		Rates:       rates,
		LastUpdated: apiResp.TimeLastUpdateUTC,
	}, nil
}

// Name returns the provider's name
func (p *ExchangeRateAPIProvider) Name() string {
	return "exchangerate-api"
}

// Ensure ExchangeRateAPIProvider implements provider.ExchangeRate
var _ provider.ExchangeRate = (*ExchangeRateAPIProvider)(nil)
