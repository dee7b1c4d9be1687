package detect

import "github.com/ascendro-ca/break-and-retest/internal/domain"

// BreakoutConfig holds the breakout acceptance thresholds.
type BreakoutConfig struct {
	// OpenTolerancePct allows the breakout bar to have opened slightly beyond
	// the range boundary (gap continuation), as a fraction of price.
	OpenTolerancePct float64
	// CloseToleranceAbs is the absolute tolerance applied to the close-beyond-level test.
	CloseToleranceAbs float64
	// VolumeMinRatio is the minimum breakout volume relative to the bar's
	// trailing volume moving average.
	VolumeMinRatio float64
	// OpeningRangeBarCount marks how many leading bars form the opening range;
	// those bars are never scanned.
	OpeningRangeBarCount int
}

// Breakout scans the coarse series after the opening-range bars for the first
// bar that closes beyond the band in the given direction with confirming
// volume. Returns nil when no bar qualifies; that is a no-signal outcome, not
// an error.
func Breakout(coarse []*domain.Bar, rng *domain.OpeningRange, dir domain.Direction, cfg BreakoutConfig) *domain.BreakoutEvent {
	start := cfg.OpeningRangeBarCount
	if start <= 0 {
		start = 1
	}
	for _, bar := range coarse[min(start, len(coarse)):] {
		if qualifiesBreakout(bar, rng, dir, cfg) {
			level := rng.High
			if dir == domain.Short {
				level = rng.Low
			}
			return &domain.BreakoutEvent{
				Direction: dir,
				Level:     level,
				Bar:       bar,
				Volume:    bar.Volume,
			}
		}
	}
	return nil
}

func qualifiesBreakout(bar *domain.Bar, rng *domain.OpeningRange, dir domain.Direction, cfg BreakoutConfig) bool {
	if cfg.VolumeMinRatio > 0 && bar.Volume < cfg.VolumeMinRatio*bar.VolMA {
		return false
	}
	if dir == domain.Long {
		openedInside := bar.Open <= rng.High*(1+cfg.OpenTolerancePct)
		closedBeyond := bar.Close >= rng.High-cfg.CloseToleranceAbs
		return openedInside && closedBeyond
	}
	openedInside := bar.Open >= rng.Low*(1-cfg.OpenTolerancePct)
	closedBeyond := bar.Close <= rng.Low+cfg.CloseToleranceAbs
	return openedInside && closedBeyond
}
