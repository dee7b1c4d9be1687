package detect

import (
	"fmt"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// OpeningRange derives the session's reference band from the first barCount
// coarse-granularity bars (usually just the first). The band is the highest
// high and lowest low across those bars.
func OpeningRange(coarse []*domain.Bar, barCount int) (*domain.OpeningRange, error) {
	if barCount <= 0 {
		barCount = 1
	}
	if len(coarse) == 0 {
		return nil, fmt.Errorf("no bars in session: %w", ports.ErrInsufficientData)
	}
	if len(coarse) < barCount {
		return nil, fmt.Errorf("session has %d bars, opening range needs %d: %w",
			len(coarse), barCount, ports.ErrInsufficientData)
	}

	rng := &domain.OpeningRange{
		High: coarse[0].High,
		Low:  coarse[0].Low,
		Bar:  coarse[0],
	}
	for _, b := range coarse[1:barCount] {
		if b.High > rng.High {
			rng.High = b.High
		}
		if b.Low < rng.Low {
			rng.Low = b.Low
		}
	}
	return rng, nil
}
