package planner

import (
	"fmt"
	"math"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// Config holds the risk parameters used to turn a graded setup into a plan.
type Config struct {
	Capital              float64
	RiskFractionPerTrade float64
	Leverage             float64
	StopBufferAbs        float64 // Absolute buffer placed beyond the retest extreme
	TickSize             float64
}

// Planner derives deterministic trade plans from setups. It holds no state
// beyond its configuration and is safe for concurrent use.
type Planner struct {
	cfg Config
}

// New creates a Planner.
func New(cfg Config) *Planner {
	return &Planner{cfg: cfg}
}

// Plan builds the executable plan for a setup at the given reward:risk ratio.
//
// The entry is the retest bar's extreme in the trade direction; the stop sits
// a fixed buffer beyond the opposite extreme. Position size is risk-budgeted
// and then capped by buying power. Plans that cannot be expressed (degenerate
// stop distance, or a size below one share) return a sentinel error; callers
// record these as no-trade outcomes rather than failures.
func (p *Planner) Plan(setup *domain.TradeSetup, rewardRisk float64) (*domain.TradePlan, error) {
	retestBar := setup.Retest.Bar
	dir := setup.Breakout.Direction

	var entry, stop float64
	if dir == domain.Long {
		entry = retestBar.High
		stop = retestBar.Low - p.cfg.StopBufferAbs
	} else {
		entry = retestBar.Low
		stop = retestBar.High + p.cfg.StopBufferAbs
	}
	entry = p.roundTick(entry)
	stop = p.roundTick(stop)

	stopDist := (entry - stop) * dir.Sign()
	if stopDist < p.cfg.TickSize {
		return nil, fmt.Errorf("stop distance %.4f below one tick: %w", stopDist, ports.ErrInvalidStopDistance)
	}
	if entry <= 0 {
		return nil, fmt.Errorf("non-positive entry price %.4f: %w", entry, ports.ErrInvalidStopDistance)
	}

	target := p.roundTick(entry + dir.Sign()*rewardRisk*stopDist)

	riskBudget := p.cfg.Capital * p.cfg.RiskFractionPerTrade
	byRisk := riskBudget / stopDist
	byBuyingPower := p.cfg.Capital * p.cfg.Leverage / entry
	shares := int(math.Floor(math.Min(byRisk, byBuyingPower)))
	if shares < 1 {
		return nil, fmt.Errorf("risk budget %.2f cannot fund one share at stop distance %.4f: %w",
			riskBudget, stopDist, ports.ErrUnfundablePlan)
	}

	return &domain.TradePlan{
		Direction:     dir,
		Entry:         entry,
		Stop:          stop,
		Target:        target,
		Shares:        shares,
		StopDistance:  stopDist,
		RewardRisk:    rewardRisk,
		RiskPlanned:   riskBudget,
		RiskEffective: float64(shares) * stopDist,
		PositionValue: float64(shares) * entry,
	}, nil
}

func (p *Planner) roundTick(price float64) float64 {
	return math.Round(price/p.cfg.TickSize) * p.cfg.TickSize
}
