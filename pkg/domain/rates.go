package domain

import (
	"maps"
	"math"
	"slices"
	"time"
)

// BaseCurrency is the currency every rate in a RateMap is expressed against.
const BaseCurrency = "USD"

// RateMap maps an uppercase currency code to the number of units of that
// currency one USD buys.
type RateMap map[string]float64

// Valid reports whether the map is anchored on the base currency and every
// rate is a finite positive number.
func (m RateMap) Valid() bool {
	if m == nil {
		return false
	}
	if base, ok := m[BaseCurrency]; !ok || base != 1 {
		return false
	}
	for _, v := range m {
		if !validRate(v) {
			return false
		}
	}
	return true
}

func validRate(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Has reports whether code is present in the map.
func (m RateMap) Has(code string) bool {
	_, ok := m[code]
	return ok
}

// Codes returns the currency codes in ascending order.
func (m RateMap) Codes() []string {
	return slices.Sorted(maps.Keys(m))
}

// Clone returns a copy that can be modified without touching the original.
func (m RateMap) Clone() RateMap {
	return maps.Clone(m)
}

// DegradedRates is the rate table used when no source could be reached.
func DegradedRates() RateMap {
	return RateMap{BaseCurrency: 1}
}

// RateMeta describes when a RateMap was obtained.
type RateMeta struct {
	SavedAt     time.Time
	LastUpdated string
}

// Age returns how long ago the rates were saved, relative to now.
func (m RateMeta) Age(now time.Time) time.Duration {
	return now.Sub(m.SavedAt)
}

// Source identifies which step of the resolution chain produced a RateMap.
type Source string

const (
	SourceCached   Source = "cached"
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceDegraded Source = "degraded"
	SourcePrevious Source = "previous"
)

// Resolution is the outcome of resolving rates for a session.
type Resolution struct {
	Rates  RateMap
	Meta   RateMeta
	Source Source
	// Status is a human readable message describing the path taken.
	Status string
}

// Degraded reports whether only the base currency is available.
func (r Resolution) Degraded() bool {
	return r.Source == SourceDegraded
}
