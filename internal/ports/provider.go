package ports

import (
	"context"
	"time"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

// BarProvider supplies ordered intraday bar series per symbol and interval.
// Implementations own gap checking and indicator precomputation; the core
// treats the returned series as immutable.
type BarProvider interface {
	// GetBars retrieves the most recent historical bars for the given symbol
	// and interval, up to a limit, ordered by open time ascending.
	GetBars(ctx context.Context, symbol, interval string, limit int) ([]*domain.Bar, error)

	// GetBarsRange retrieves all bars between start and end, paginating as
	// needed, ordered by open time ascending.
	GetBarsRange(ctx context.Context, symbol, interval string, start, end time.Time) ([]*domain.Bar, error)

	// Ping checks connectivity to the data source.
	Ping(ctx context.Context) error
}
