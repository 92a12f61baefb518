// Package widget implements the user-facing conversion widget on top of the
// resolved session rates and the persisted preferences.
package widget

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/amirasaad/fxwidget/pkg/currency"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/exchange"
	"github.com/amirasaad/fxwidget/pkg/metrics"
	"github.com/amirasaad/fxwidget/pkg/prefs"
)

// Conversion outcomes reported to metrics.
const (
	outcomeOK                   = "ok"
	outcomeInvalidAmount        = "invalid_amount"
	outcomeCurrencyNotAvailable = "currency_not_available"
)

// Result is what the widget shows after a user action.
type Result struct {
	Prefs      domain.UserPrefs
	Conversion *currency.Conversion
	Display    *currency.Display
}

// Service coordinates rates, conversions and preferences for one or more
// clients.
type Service struct {
	state     *exchange.State
	prefs     *prefs.Store
	formatter *currency.Formatter
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// New creates a widget service.
func New(
	state *exchange.State,
	store *prefs.Store,
	formatter *currency.Formatter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if formatter == nil {
		formatter = currency.NewFormatter("en-US", 0, 0)
	}
	return &Service{
		state:     state,
		prefs:     store,
		formatter: formatter,
		metrics:   m,
		logger:    logger,
	}
}

// Formatter returns the display formatter.
func (s *Service) Formatter() *currency.Formatter {
	return s.formatter
}

// Resolution returns the current rates, resolving them on first use.
func (s *Service) Resolution(ctx context.Context) domain.Resolution {
	if res, ok := s.state.Current(); ok {
		return res
	}
	return s.state.Resolve(ctx)
}

// Refresh re-fetches rates from the remote sources.
func (s *Service) Refresh(ctx context.Context) domain.Resolution {
	res := s.state.Refresh(ctx)
	s.logger.Info("Rates refreshed", "source", res.Source, "currencies", len(res.Rates))
	return res
}

// Currencies lists the selectable currency codes in ascending order.
func (s *Service) Currencies(ctx context.Context) []string {
	return s.Resolution(ctx).Rates.Codes()
}

// Prefs returns the client's saved preferences.
func (s *Service) Prefs(ctx context.Context, clientID string) domain.UserPrefs {
	return s.prefs.Load(ctx, clientID)
}

// Convert converts amount and stores the submitted values as the client's
// preferences, even when the conversion is rejected.
func (s *Service) Convert(ctx context.Context, clientID, amount, from, to string) (*Result, error) {
	p := domain.UserPrefs{
		From:   currency.NormalizeCode(from),
		To:     currency.NormalizeCode(to),
		Amount: strings.TrimSpace(amount),
	}
	s.prefs.Save(ctx, clientID, p)
	return s.convert(ctx, p)
}

// Swap exchanges the selected currencies. The stored amount is converted
// again when one is set.
func (s *Service) Swap(ctx context.Context, clientID string) (*Result, error) {
	p := s.prefs.Load(ctx, clientID).Swapped()
	s.prefs.Save(ctx, clientID, p)
	return s.convertIfSet(ctx, p)
}

// Select changes the currency selection. Blank codes keep the current value.
func (s *Service) Select(ctx context.Context, clientID, from, to string) (*Result, error) {
	p := s.prefs.Load(ctx, clientID)
	if code := currency.NormalizeCode(from); code != "" {
		p.From = code
	}
	if code := currency.NormalizeCode(to); code != "" {
		p.To = code
	}
	s.prefs.Save(ctx, clientID, p)
	return s.convertIfSet(ctx, p)
}

// SetAmount stores the entered amount and converts it when not blank.
func (s *Service) SetAmount(ctx context.Context, clientID, amount string) (*Result, error) {
	p := s.prefs.Load(ctx, clientID)
	p.Amount = strings.TrimSpace(amount)
	s.prefs.Save(ctx, clientID, p)
	return s.convertIfSet(ctx, p)
}

// Update replaces the client's preferences and converts the amount when
// one is set.
func (s *Service) Update(ctx context.Context, clientID string, p domain.UserPrefs) (*Result, error) {
	p.From = currency.NormalizeCode(p.From)
	p.To = currency.NormalizeCode(p.To)
	p.Amount = strings.TrimSpace(p.Amount)
	s.prefs.Save(ctx, clientID, p)
	return s.convertIfSet(ctx, p)
}

// Clear empties the amount and keeps the currency selection.
func (s *Service) Clear(ctx context.Context, clientID string) domain.UserPrefs {
	p := s.prefs.Load(ctx, clientID)
	p.Amount = ""
	s.prefs.Save(ctx, clientID, p)
	return p
}

func (s *Service) convertIfSet(ctx context.Context, p domain.UserPrefs) (*Result, error) {
	if p.Amount == "" {
		return &Result{Prefs: p}, nil
	}
	return s.convert(ctx, p)
}

func (s *Service) convert(ctx context.Context, p domain.UserPrefs) (*Result, error) {
	result := &Result{Prefs: p}

	amount, err := currency.ParseAmount(p.Amount)
	if err != nil {
		s.observe(err)
		return result, err
	}
	c, err := currency.Convert(amount, p.From, p.To, s.Resolution(ctx).Rates)
	if err != nil {
		s.observe(err)
		return result, err
	}
	s.observe(nil)

	display := s.formatter.Display(c)
	result.Conversion = c
	result.Display = &display
	return result, nil
}

func (s *Service) observe(err error) {
	switch {
	case err == nil:
		s.metrics.ObserveConversion(outcomeOK)
	case errors.Is(err, currency.ErrInvalidAmount):
		s.metrics.ObserveConversion(outcomeInvalidAmount)
	case errors.Is(err, currency.ErrCurrencyNotAvailable):
		s.metrics.ObserveConversion(outcomeCurrencyNotAvailable)
	}
}
