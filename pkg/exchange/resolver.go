package exchange

import (
	"context"
	"log/slog"
	"slices"

	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/metrics"
)

// Resolver runs the rate resolution chain: persisted cache, then each remote
// source in order, then the degraded default. It never fails.
type Resolver struct {
	cached  Strategy
	remotes []Strategy
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewResolver creates a resolver. cached may be nil; remotes are tried in
// the given order, one request each, never concurrently.
func NewResolver(
	cached Strategy,
	remotes []Strategy,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{cached: cached, remotes: remotes, logger: logger, metrics: m}
}

// Resolve produces rates for a new session.
func (r *Resolver) Resolve(ctx context.Context) domain.Resolution {
	chain := r.remotes
	if r.cached != nil {
		chain = append([]Strategy{r.cached}, r.remotes...)
	}
	return r.run(ctx, chain, nil)
}

// Refresh asks the remote sources first, bypassing the persisted cache. If
// they all fail the previous resolution is kept. With no previous resolution
// the cache is consulted last, after the remotes.
func (r *Resolver) Refresh(ctx context.Context, previous *domain.Resolution) domain.Resolution {
	if previous != nil || r.cached == nil {
		return r.run(ctx, r.remotes, previous)
	}
	chain := append(slices.Clone(r.remotes), r.cached)
	return r.run(ctx, chain, nil)
}

func (r *Resolver) run(ctx context.Context, chain []Strategy, previous *domain.Resolution) domain.Resolution {
	for _, step := range chain {
		res, err := step.Resolve(ctx)
		if err != nil {
			if step == r.cached {
				r.logger.Debug("No usable cached rates", "reason", err)
			} else {
				r.logger.Warn("Rate source failed, trying next", "source", step.Name(), "error", err)
			}
			continue
		}
		r.logger.Info("Exchange rates resolved",
			"source", res.Source,
			"step", step.Name(),
			"currencies", len(res.Rates),
			"last_updated", res.Meta.LastUpdated,
		)
		r.metrics.ObserveResolution(string(res.Source))
		return *res
	}

	if previous != nil && previous.Rates.Valid() && previous.Source != domain.SourceDegraded {
		r.logger.Warn("All rate sources failed, keeping previous rates",
			"last_updated", previous.Meta.LastUpdated)
		r.metrics.ObserveResolution(string(domain.SourcePrevious))
		return domain.Resolution{
			Rates:  previous.Rates,
			Meta:   previous.Meta,
			Source: domain.SourcePrevious,
			Status: previousStatus(previous.Meta.LastUpdated),
		}
	}

	r.logger.Error("All rate sources failed, only USD is available")
	r.metrics.ObserveResolution(string(domain.SourceDegraded))
	return domain.Resolution{
		Rates:  domain.DegradedRates(),
		Source: domain.SourceDegraded,
		Status: degradedStatus,
	}
}
