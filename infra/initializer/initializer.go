package initializer

import (
	"context"
	"fmt"
	"log/slog"

	infra_provider "github.com/amirasaad/fxwidget/infra/provider"
	"github.com/amirasaad/fxwidget/pkg/app"
	"github.com/amirasaad/fxwidget/pkg/config"
	"github.com/amirasaad/fxwidget/pkg/currency"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/exchange"
	"github.com/amirasaad/fxwidget/pkg/metrics"
	"github.com/amirasaad/fxwidget/pkg/prefs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// InitializeDependencies initializes all the application dependencies.
// Rates are not resolved here; callers resolve before serving.
func InitializeDependencies(cfg *config.App) (
	deps *app.Deps,
	err error,
) {
	deps = &app.Deps{}
	logger := SetupLogger(cfg.Log, nil)
	deps.Logger = logger

	deps.Registry = prometheus.NewRegistry()
	deps.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	deps.Metrics = metrics.New(deps.Registry)

	opened, err := NewStore(context.Background(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	if opened.Closer != nil {
		deps.Closers = append(deps.Closers, opened.Closer)
	}
	store := opened.Store
	deps.Store = store
	logger.Info("Store ready", "driver", opened.Driver)

	prefix := cfg.Store.KeyPrefix
	records := exchange.NewRateRecords(store, prefix, logger, deps.Metrics)
	deps.State = exchange.NewState(NewResolver(cfg.ExchangeRate, records, deps.Metrics, logger))
	deps.Prefs = prefs.New(store, prefix, logger, deps.Metrics)

	widgetCfg := cfg.Widget
	if widgetCfg == nil {
		widgetCfg = &config.Widget{Locale: "en-US"}
	}
	deps.Formatter = currency.NewFormatter(widgetCfg.Locale, widgetCfg.AmountDigits, widgetCfg.RateDigits)

	return deps, nil
}

// NewResolver builds the resolution chain: persisted rates, the primary
// source and, when enabled, the fallback source.
func NewResolver(
	cfg *config.ExchangeRate,
	records *exchange.RateRecords,
	m *metrics.Metrics,
	logger *slog.Logger,
) *exchange.Resolver {
	remotes := []exchange.Strategy{
		exchange.NewRemoteStrategy(
			infra_provider.NewExchangeRateAPIProvider(cfg.PrimaryURL, cfg.HTTPTimeout, logger),
			domain.SourcePrimary,
			records,
			m,
			nil,
		),
	}
	if cfg.EnableFallback && cfg.FallbackURL != "" {
		remotes = append(remotes, exchange.NewRemoteStrategy(
			infra_provider.NewExchangeRateHostProvider(cfg.FallbackURL, cfg.FallbackApiKey, cfg.HTTPTimeout, logger),
			domain.SourceFallback,
			records,
			m,
			nil,
		))
	}

	return exchange.NewResolver(
		exchange.NewCacheStrategy(records, cfg.CacheFreshness, nil),
		remotes,
		logger,
		m,
	)
}
