package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/metrics"
	"github.com/amirasaad/fxwidget/pkg/provider"
)

// DefaultFreshness is how long persisted rates are trusted without a fetch.
const DefaultFreshness = 12 * time.Hour

// fetchedLabelLayout formats the local fetch time when a source sends no label.
const fetchedLabelLayout = time.RFC1123Z

// Strategy is one step of the rate resolution chain. It either produces a
// complete resolution or reports why it could not.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context) (*domain.Resolution, error)
}

// CacheStrategy serves rates persisted by an earlier successful fetch.
type CacheStrategy struct {
	records   *RateRecords
	freshness time.Duration
	now       func() time.Time
}

// NewCacheStrategy creates the cached-rate step. A nil now uses time.Now.
func NewCacheStrategy(records *RateRecords, freshness time.Duration, now func() time.Time) *CacheStrategy {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if now == nil {
		now = time.Now
	}
	return &CacheStrategy{records: records, freshness: freshness, now: now}
}

func (s *CacheStrategy) Name() string {
	return string(domain.SourceCached)
}

// Resolve returns the persisted rates only if they are anchored on USD and
// younger than the freshness window.
func (s *CacheStrategy) Resolve(ctx context.Context) (*domain.Resolution, error) {
	rates, meta, err := s.records.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !rates.Valid() {
		return nil, domain.ErrInvalidRates
	}
	if age := meta.Age(s.now()); age >= s.freshness {
		return nil, fmt.Errorf("%w: age %s", domain.ErrCacheStale, age.Round(time.Second))
	}
	return &domain.Resolution{
		Rates:  rates,
		Meta:   meta,
		Source: domain.SourceCached,
		Status: cachedStatus(meta.LastUpdated),
	}, nil
}

// RemoteStrategy fetches from a remote source and persists what it got.
type RemoteStrategy struct {
	source  provider.ExchangeRate
	kind    domain.Source
	records *RateRecords
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRemoteStrategy creates a remote step. kind is SourcePrimary or
// SourceFallback and only affects status reporting.
func NewRemoteStrategy(
	source provider.ExchangeRate,
	kind domain.Source,
	records *RateRecords,
	m *metrics.Metrics,
	now func() time.Time,
) *RemoteStrategy {
	if now == nil {
		now = time.Now
	}
	return &RemoteStrategy{source: source, kind: kind, records: records, metrics: m, now: now}
}

func (s *RemoteStrategy) Name() string {
	return string(s.kind) + ":" + s.source.Name()
}

func (s *RemoteStrategy) Resolve(ctx context.Context) (*domain.Resolution, error) {
	started := time.Now()
	table, err := s.source.FetchRates(ctx)
	s.metrics.ObserveSourceFetch(s.source.Name(), started, err)
	if err != nil {
		return nil, err
	}
	if !table.Rates.Valid() {
		return nil, domain.ErrInvalidRates
	}

	fetchedAt := s.now()
	label := table.LastUpdated
	if label == "" {
		label = fetchedAt.Format(fetchedLabelLayout)
	}
	meta := domain.RateMeta{SavedAt: fetchedAt, LastUpdated: label}
	s.records.Save(ctx, table.Rates, meta)

	status := updatedStatus(label)
	if s.kind == domain.SourceFallback {
		status = fallbackStatus(label)
	}
	return &domain.Resolution{
		Rates:  table.Rates,
		Meta:   meta,
		Source: s.kind,
		Status: status,
	}, nil
}

const degradedStatus = "Could not load exchange rates. Only USD is available."

func cachedStatus(label string) string {
	return fmt.Sprintf("Using cached rates (last updated %s)", label)
}

func updatedStatus(label string) string {
	return fmt.Sprintf("Rates updated %s", label)
}

func fallbackStatus(label string) string {
	return fmt.Sprintf("Rates updated %s (backup source)", label)
}

func previousStatus(label string) string {
	return fmt.Sprintf("Could not refresh exchange rates. Showing rates from %s.", label)
}
