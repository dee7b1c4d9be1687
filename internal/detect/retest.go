package detect

import (
	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

// RetestConfig holds the retest acceptance thresholds.
type RetestConfig struct {
	// CloseEpsilonTicks is the tolerance, in ticks, applied to the close-side
	// test only. The touch test gets no tolerance.
	CloseEpsilonTicks float64
	TickSize          float64
	// VWAPBandPct is the tolerance band around the bar's volume-weighted
	// reference price that must contain the close. A touching, holding bar
	// whose close falls outside the band terminates the scan with no event.
	VWAPBandPct float64
}

// Retest walks the fine-granularity bars in time order, considering only bars
// that open at or after the breakout bar's close time, and accepts the first
// bar whose wick reaches the breakout level and whose close holds the correct
// side. No-touch bars are skipped. Returns the event and the index of the
// accepted bar in fine, or nil when the session exhausts without a retest.
func Retest(fine []*domain.Bar, brk *domain.BreakoutEvent, cfg RetestConfig) (*domain.RetestEvent, int) {
	epsilon := cfg.CloseEpsilonTicks * cfg.TickSize

	for i, bar := range fine {
		if bar.OpenTime.Before(brk.Bar.CloseTime) {
			continue
		}
		if !wickReachesLevel(bar, brk) {
			continue
		}
		if !closeHolds(bar, brk, epsilon) {
			continue
		}
		if !vwapAligned(bar, cfg.VWAPBandPct) {
			// Touched and held but out of line with the reference price:
			// the pullback is suspect, so the whole scan stops here.
			return nil, -1
		}
		return buildRetestEvent(bar, brk), i
	}
	return nil, -1
}

func wickReachesLevel(bar *domain.Bar, brk *domain.BreakoutEvent) bool {
	if brk.Direction == domain.Long {
		return bar.Low <= brk.Level
	}
	return bar.High >= brk.Level
}

func closeHolds(bar *domain.Bar, brk *domain.BreakoutEvent, epsilon float64) bool {
	if brk.Direction == domain.Long {
		return bar.Close >= brk.Level-epsilon
	}
	return bar.Close <= brk.Level+epsilon
}

func vwapAligned(bar *domain.Bar, bandPct float64) bool {
	if bar.VWAP <= 0 {
		return true // Reference price unavailable; degrade gracefully
	}
	band := bar.VWAP * bandPct
	diff := bar.Close - bar.VWAP
	if diff < 0 {
		diff = -diff
	}
	return diff <= band
}

func buildRetestEvent(bar *domain.Bar, brk *domain.BreakoutEvent) *domain.RetestEvent {
	var pierce float64
	if rng := bar.Range(); rng > 0 {
		if brk.Direction == domain.Long {
			pierce = (brk.Level - bar.Low) / rng
		} else {
			pierce = (bar.High - brk.Level) / rng
		}
		if pierce < 0 {
			pierce = 0
		}
	}

	var volRatio float64
	if brk.Volume > 0 {
		volRatio = bar.Volume / brk.Volume
	}

	return &domain.RetestEvent{
		Bar:          bar,
		PierceDepth:  pierce,
		BodyFraction: bar.BodyFraction(),
		CloseHeld:    true,
		VolumeRatio:  volRatio,
	}
}
