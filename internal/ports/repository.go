package ports

import (
	"context"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

// SetupRepository stores detected trade setups for later analysis.
type SetupRepository interface {
	// CreateSetup saves a setup record and returns its assigned ID.
	CreateSetup(ctx context.Context, setup *domain.TradeSetup) (int64, error)
	// CountSetupsBySymbol counts stored setups for a symbol.
	CountSetupsBySymbol(ctx context.Context, symbol string) (int, error)
}

// ResultRepository stores terminal trade results.
type ResultRepository interface {
	// CreateResult saves a trade result and returns its assigned ID.
	CreateResult(ctx context.Context, result *domain.TradeResult) (int64, error)
	// FindResultsBySymbol retrieves the most recent results for a symbol, up to a limit.
	FindResultsBySymbol(ctx context.Context, symbol string, limit int) ([]*domain.TradeResult, error)
	// CountByOutcome tallies stored results per terminal outcome.
	CountByOutcome(ctx context.Context) (map[domain.Outcome]int, error)
	// GetTotalPNL sums realized profit and loss across all stored results.
	GetTotalPNL(ctx context.Context) (float64, error)
}
