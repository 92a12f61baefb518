package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/fxwidget/pkg/cache"
	"github.com/amirasaad/fxwidget/pkg/domain"
	"github.com/amirasaad/fxwidget/pkg/metrics"
)

const (
	ratesKey = "rates"
	metaKey  = "meta"
)

// persistedMeta is the stored form of domain.RateMeta.
type persistedMeta struct {
	SavedAt        int64  `json:"savedAt"` // epoch millis
	LastUpdatedStr string `json:"lastUpdatedStr"`
}

// RateRecords reads and writes the rates and meta records. Storage failures
// never escape: a failed read is "no cache", a failed write is skipped.
type RateRecords struct {
	store   cache.Store
	prefix  string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRateRecords creates the persisted rate cache over store.
func NewRateRecords(
	store cache.Store,
	prefix string,
	logger *slog.Logger,
	m *metrics.Metrics,
) *RateRecords {
	if logger == nil {
		logger = slog.Default()
	}
	return &RateRecords{store: store, prefix: prefix, logger: logger, metrics: m}
}

// Load returns the persisted rates and meta. The error explains why nothing
// usable was found and is meant for logging only.
func (r *RateRecords) Load(ctx context.Context) (domain.RateMap, domain.RateMeta, error) {
	rawRates, err := r.store.Get(ctx, r.prefix+ratesKey)
	if err != nil {
		return nil, domain.RateMeta{}, r.readFailed(ratesKey, err)
	}
	rawMeta, err := r.store.Get(ctx, r.prefix+metaKey)
	if err != nil {
		return nil, domain.RateMeta{}, r.readFailed(metaKey, err)
	}

	var rates domain.RateMap
	if err := json.Unmarshal(rawRates, &rates); err != nil {
		return nil, domain.RateMeta{}, r.readFailed(ratesKey, fmt.Errorf("corrupt record: %w", err))
	}
	var meta persistedMeta
	if err := json.Unmarshal(rawMeta, &meta); err != nil {
		return nil, domain.RateMeta{}, r.readFailed(metaKey, fmt.Errorf("corrupt record: %w", err))
	}

	return rates, domain.RateMeta{
		SavedAt:     time.UnixMilli(meta.SavedAt),
		LastUpdated: meta.LastUpdatedStr,
	}, nil
}

func (r *RateRecords) readFailed(record string, err error) error {
	if !errors.Is(err, cache.ErrCacheMiss) {
		r.metrics.ObserveStoreError("get")
	}
	return fmt.Errorf("%s record: %w", record, err)
}

// Save overwrites both records. Failures are logged and swallowed.
func (r *RateRecords) Save(ctx context.Context, rates domain.RateMap, meta domain.RateMeta) {
	rawRates, err := json.Marshal(rates)
	if err != nil {
		r.writeFailed(ratesKey, err)
		return
	}
	rawMeta, err := json.Marshal(persistedMeta{
		SavedAt:        meta.SavedAt.UnixMilli(),
		LastUpdatedStr: meta.LastUpdated,
	})
	if err != nil {
		r.writeFailed(metaKey, err)
		return
	}

	if err := r.store.Set(ctx, r.prefix+ratesKey, rawRates); err != nil {
		r.writeFailed(ratesKey, err)
		return
	}
	if err := r.store.Set(ctx, r.prefix+metaKey, rawMeta); err != nil {
		r.writeFailed(metaKey, err)
	}
}

func (r *RateRecords) writeFailed(record string, err error) {
	r.metrics.ObserveStoreError("set")
	r.logger.Warn("Failed to persist exchange rates, write skipped", "record", record, "error", err)
}
