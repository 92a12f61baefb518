package domain

import "errors"

// Common domain errors
var (
	// ErrInvalidRates is returned when a rate table is not anchored on the base currency.
	ErrInvalidRates = errors.New("invalid rate table")
	// ErrSourceUnavailable is returned when a rate source cannot serve a table.
	ErrSourceUnavailable = errors.New("rate source unavailable")
	// ErrSourceRejected is returned when a rate source answers with an unsuccessful result.
	ErrSourceRejected = errors.New("rate source rejected request")
	// ErrCacheStale is returned when persisted rates are older than the freshness window.
	ErrCacheStale = errors.New("cached rates are stale")
)
