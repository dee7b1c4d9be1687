package simulator

import (
	"fmt"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// Simulate replays a trade plan against the session bars that follow the
// entry fill and returns exactly one terminal result.
//
// The fill is assumed at the plan's entry price at the open of bars[0]. Each
// bar is tested stop first: when a single bar spans both stop and target, the
// trade is a loss. A trade still open after the last bar is force-closed at
// that bar's close.
func Simulate(plan *domain.TradePlan, bars []*domain.Bar) (*domain.TradeResult, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars after entry: %w", ports.ErrInsufficientData)
	}

	result := &domain.TradeResult{
		Direction: plan.Direction,
		Entry:     plan.Entry,
		EntryTime: bars[0].OpenTime,
		Shares:    plan.Shares,
	}

	for _, bar := range bars {
		if stopHit(plan, bar) {
			return finish(result, plan, domain.OutcomeLoss, plan.Stop, bar), nil
		}
		if targetHit(plan, bar) {
			return finish(result, plan, domain.OutcomeWin, plan.Target, bar), nil
		}
	}

	last := bars[len(bars)-1]
	return finish(result, plan, domain.OutcomeForcedClose, last.Close, last), nil
}

func stopHit(plan *domain.TradePlan, bar *domain.Bar) bool {
	if plan.Direction == domain.Long {
		return bar.Low <= plan.Stop
	}
	return bar.High >= plan.Stop
}

func targetHit(plan *domain.TradePlan, bar *domain.Bar) bool {
	if plan.Direction == domain.Long {
		return bar.High >= plan.Target
	}
	return bar.Low <= plan.Target
}

func finish(r *domain.TradeResult, plan *domain.TradePlan, outcome domain.Outcome, exit float64, bar *domain.Bar) *domain.TradeResult {
	r.Outcome = outcome
	r.ExitPrice = exit
	r.ExitTime = bar.CloseTime
	r.PNL = (exit - plan.Entry) * plan.Direction.Sign() * float64(plan.Shares)
	return r
}
