package provider

import (
	"context"

	"github.com/amirasaad/fxwidget/pkg/domain"
)

// RateTable is a full USD-based rate table as returned by a remote source.
type RateTable struct {
	Rates domain.RateMap
	// LastUpdated is the source's own update label, empty when it sent none.
	LastUpdated string
}

// ExchangeRate defines the interface for external exchange rate sources.
type ExchangeRate interface {
	// FetchRates fetches the complete rate table relative to USD.
	FetchRates(ctx context.Context) (*RateTable, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}
