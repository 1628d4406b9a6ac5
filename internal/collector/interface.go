package collector

import (
	"context"
	"time"

	"github.com/newthinker/prism/internal/core"
)

// Provider supplies daily closing prices for a symbol
type Provider interface {
	// Name identifies the provider in config and logs
	Name() string

	// FetchHistory returns prices in ascending date order for [start, end].
	// Unknown symbols return core.ErrSymbolNotFound.
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]core.PricePoint, error)
}
