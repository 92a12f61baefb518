package app

import (
	"errors"
	"io"
	"log/slog"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/amirasaad/fxwidget/pkg/config"
	"github.com/amirasaad/fxwidget/pkg/currency"
	"github.com/amirasaad/fxwidget/pkg/exchange"
	"github.com/amirasaad/fxwidget/pkg/metrics"
	"github.com/amirasaad/fxwidget/pkg/prefs"
	"github.com/amirasaad/fxwidget/pkg/service/widget"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps contains the dependencies shared by the server and the CLI
type Deps struct {
	Store     cache.Store
	State     *exchange.State
	Prefs     *prefs.Store
	Formatter *currency.Formatter
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Logger    *slog.Logger
	// Closers release store connections on shutdown
	Closers []io.Closer
}

// Close releases every registered resource.
func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.Closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type App struct {
	Deps          *Deps
	Config        *config.App
	WidgetService *widget.Service
}

func New(deps *Deps, cfg *config.App) *App {
	return &App{
		Deps:   deps,
		Config: cfg,
		WidgetService: widget.New(
			deps.State,
			deps.Prefs,
			deps.Formatter,
			deps.Metrics,
			deps.Logger,
		),
	}
}
