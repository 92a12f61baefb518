package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	infra_cache "github.com/amirasaad/fxwidget/infra/cache"
	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/amirasaad/fxwidget/pkg/config"
	"github.com/amirasaad/fxwidget/pkg/currency"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/exchange"
	"github.com/amirasaad/fxwidget/pkg/metrics"
	"github.com/amirasaad/fxwidget/pkg/prefs"
	"github.com/amirasaad/fxwidget/pkg/provider"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubSource struct {
	rates domain.RateMap
	err   error
}

func (s *stubSource) FetchRates(_ context.Context) (*provider.RateTable, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &provider.RateTable{Rates: s.rates.Clone(), LastUpdated: "Sun, 18 Oct 2026 00:00:01 +0000"}, nil
}

func (s *stubSource) Name() string { return "stub" }

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestApp(t *testing.T, source provider.ExchangeRate, rl *config.RateLimit) *fiber.App {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := infra_cache.NewMemoryStore()
	records := exchange.NewRateRecords(store, "fxw:", logger, m)
	state := exchange.NewState(exchange.NewResolver(
		exchange.NewCacheStrategy(records, exchange.DefaultFreshness, nil),
		[]exchange.Strategy{exchange.NewRemoteStrategy(source, domain.SourcePrimary, records, m, nil)},
		logger,
		m,
	))

	deps := &app.Deps{
		Store:     store,
		State:     state,
		Prefs:     prefs.New(store, "fxw:", logger, m),
		Formatter: currency.NewFormatter("en-US", 2, 6),
		Metrics:   m,
		Registry:  reg,
		Logger:    logger,
	}
	cfg := &config.App{
		Env:       "test",
		RateLimit: rl,
		Widget:    &config.Widget{Locale: "en-US", ClientCookie: "fxw_client"},
	}
	return SetupApp(app.New(deps, cfg))
}

type WidgetAPITestSuite struct {
	suite.Suite
	source *stubSource
	app    *fiber.App
	cookie *http.Cookie
}

func (s *WidgetAPITestSuite) SetupTest() {
	s.source = &stubSource{rates: domain.RateMap{"USD": 1, "EUR": 0.92, "INR": 83}}
	s.app = newTestApp(s.T(), s.source, nil)
	s.cookie = nil
}

func (s *WidgetAPITestSuite) do(method, path, body string) (*http.Response, envelope) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint: errcheck

	for _, c := range resp.Cookies() {
		if c.Name == "fxw_client" {
			s.cookie = c
		}
	}

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if len(raw) > 0 && raw[0] == '{' {
		s.Require().NoError(json.Unmarshal(raw, &env))
	}
	return resp, env
}

func (s *WidgetAPITestSuite) decode(raw json.RawMessage, v any) {
	s.Require().NoError(json.Unmarshal(raw, v))
}

func (s *WidgetAPITestSuite) TestGetRates() {
	resp, env := s.do(fiber.MethodGet, "/api/rates", "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Require().NotNil(s.cookie, "client cookie should be issued")

	var rates RatesResponse
	s.decode(env.Data, &rates)
	s.Equal([]string{"EUR", "INR", "USD"}, rates.Currencies)
	s.Equal(domain.SourcePrimary, rates.Source)
	s.False(rates.Degraded)
	s.Equal("Rates updated Sun, 18 Oct 2026 00:00:01 +0000", env.Message)
}

func (s *WidgetAPITestSuite) TestConvertStoresPrefs() {
	resp, env := s.do(fiber.MethodGet, "/api/convert?amount=10&from=usd&to=inr", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var conv ConversionResponse
	s.decode(env.Data, &conv)
	s.InDelta(830, conv.Result, 1e-9)
	s.Equal("830", conv.Display.Result)
	s.Equal("1 USD = 83 INR", conv.Display.Caption)
	s.Equal("10 USD = 830 INR", env.Message)

	_, env = s.do(fiber.MethodGet, "/api/prefs", "")
	var p domain.UserPrefs
	s.decode(env.Data, &p)
	s.Equal(domain.UserPrefs{From: "USD", To: "INR", Amount: "10"}, p)
}

func (s *WidgetAPITestSuite) TestConvertUsesSavedCurrencies() {
	resp, env := s.do(fiber.MethodGet, "/api/convert?amount=100", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var conv ConversionResponse
	s.decode(env.Data, &conv)
	s.Equal("USD", conv.Prefs.From)
	s.Equal("EUR", conv.Prefs.To)
	s.InDelta(92, conv.Result, 1e-9)
}

func (s *WidgetAPITestSuite) TestConvertValidationErrors() {
	tests := []struct {
		name   string
		path   string
		detail string
	}{
		{"negative amount", "/api/convert?amount=-5&from=USD&to=EUR", currency.ErrInvalidAmount.Error()},
		{"not a number", "/api/convert?amount=NaN&from=USD&to=EUR", currency.ErrInvalidAmount.Error()},
		{"unknown currency", "/api/convert?amount=5&from=USD&to=XYZ", currency.ErrCurrencyNotAvailable.Error()},
		{"overflowing amount", "/api/convert?amount=1e308&from=USD&to=INR", currency.ErrInvalidAmount.Error()},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			req := httptest.NewRequest(fiber.MethodGet, tt.path, nil)
			resp, err := s.app.Test(req, -1)
			s.Require().NoError(err)
			defer resp.Body.Close() //nolint: errcheck

			s.Equal(fiber.StatusUnprocessableEntity, resp.StatusCode)
			s.Equal("application/problem+json", resp.Header.Get(fiber.HeaderContentType))

			var pd ProblemDetails
			s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
			s.Equal(tt.detail, pd.Detail)
			s.Equal("Conversion failed", pd.Title)
		})
	}
}

func (s *WidgetAPITestSuite) TestUpdatePrefs() {
	s.Run("invalid body", func() {
		resp, _ := s.do(fiber.MethodPut, "/api/prefs", `{"from":"US"}`)
		s.Equal(fiber.StatusBadRequest, resp.StatusCode)
	})

	s.Run("valid body converts", func() {
		resp, env := s.do(fiber.MethodPut, "/api/prefs", `{"from":"eur","to":"usd","amount":"92"}`)
		s.Require().Equal(fiber.StatusOK, resp.StatusCode)

		var conv ConversionResponse
		s.decode(env.Data, &conv)
		s.Equal(domain.UserPrefs{From: "EUR", To: "USD", Amount: "92"}, conv.Prefs)
		s.InDelta(100, conv.Result, 1e-9)
	})
}

func (s *WidgetAPITestSuite) TestSwapAndClear() {
	_, _ = s.do(fiber.MethodGet, "/api/convert?amount=2&from=USD&to=INR", "")

	resp, env := s.do(fiber.MethodPost, "/api/prefs/swap", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var conv ConversionResponse
	s.decode(env.Data, &conv)
	s.Equal(domain.UserPrefs{From: "INR", To: "USD", Amount: "2"}, conv.Prefs)

	resp, env = s.do(fiber.MethodDelete, "/api/prefs/amount", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var p domain.UserPrefs
	s.decode(env.Data, &p)
	s.Equal(domain.UserPrefs{From: "INR", To: "USD"}, p)
}

func (s *WidgetAPITestSuite) TestPrefsArePerClient() {
	_, _ = s.do(fiber.MethodGet, "/api/convert?amount=1&from=INR&to=EUR", "")

	s.cookie = nil
	_, env := s.do(fiber.MethodGet, "/api/prefs", "")
	var p domain.UserPrefs
	s.decode(env.Data, &p)
	s.Equal(domain.DefaultPrefs(), p)
}

func (s *WidgetAPITestSuite) TestRefreshKeepsPreviousRates() {
	_, _ = s.do(fiber.MethodGet, "/api/rates", "")

	s.source.err = errors.New("connection refused")
	resp, env := s.do(fiber.MethodPost, "/api/rates/refresh", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)

	var rates RatesResponse
	s.decode(env.Data, &rates)
	s.Equal(domain.SourcePrevious, rates.Source)
	s.Contains(rates.Currencies, "INR")
}

func (s *WidgetAPITestSuite) TestHealthAndMetrics() {
	_, _ = s.do(fiber.MethodGet, "/api/convert?amount=1&from=USD&to=EUR", "")

	resp, _ := s.do(fiber.MethodGet, "/health", "")
	s.Equal(fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/metrics", nil)
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close() //nolint: errcheck
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), `fxwidget_conversions_total{outcome="ok"} 1`)
	s.Contains(string(body), `fxwidget_rate_resolutions_total{source="primary"} 1`)
}

func TestWidgetAPITestSuite(t *testing.T) {
	suite.Run(t, new(WidgetAPITestSuite))
}

func TestDegradedRates(t *testing.T) {
	a := newTestApp(t, &stubSource{err: errors.New("offline")}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/rates", nil)
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var rates RatesResponse
	require.NoError(t, json.Unmarshal(env.Data, &rates))

	assert.True(t, rates.Degraded)
	assert.Equal(t, []string{"USD"}, rates.Currencies)
	assert.Equal(t, "Could not load exchange rates. Only USD is available.", env.Message)
}

func TestNonPositiveSourceRatesAreRejected(t *testing.T) {
	a := newTestApp(t, &stubSource{rates: domain.RateMap{"USD": 1, "EUR": 0, "XXX": -2}}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/api/convert?amount=10&from=EUR&to=USD", nil)
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck

	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, currency.ErrCurrencyNotAvailable.Error(), pd.Detail)

	req = httptest.NewRequest(fiber.MethodGet, "/api/rates", nil)
	resp, err = a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var rates RatesResponse
	require.NoError(t, json.Unmarshal(env.Data, &rates))
	assert.True(t, rates.Degraded)
	assert.Equal(t, []string{"USD"}, rates.Currencies)
}

func TestErrorHandlerUsesStatusText(t *testing.T) {
	a := newTestApp(t, &stubSource{rates: domain.RateMap{"USD": 1}}, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/nope", nil)
	resp, err := a.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint: errcheck

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
	var pd ProblemDetails
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pd))
	assert.Equal(t, "Not Found", pd.Title)
	assert.Equal(t, fiber.StatusNotFound, pd.Status)
}

func TestRateLimit(t *testing.T) {
	a := newTestApp(t, &stubSource{rates: domain.RateMap{"USD": 1}}, &config.RateLimit{
		MaxRequests: 2,
		Window:      time.Minute,
	})

	for i := range 3 {
		req := httptest.NewRequest(fiber.MethodGet, "/health", nil)
		resp, err := a.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()

		if i < 2 {
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, "Expected OK for request %d", i+1)
		} else {
			assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode, "Expected Too Many Requests for request %d", i+1)
		}
	}
}
