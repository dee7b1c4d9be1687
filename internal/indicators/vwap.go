package indicators

import "github.com/ascendro-ca/break-and-retest/internal/domain"

// VWAP computes the cumulative session volume-weighted average price for each
// bar, using the typical price (H+L+C)/3. Bars before any volume has traded
// fall back to their typical price.
func VWAP(bars []*domain.Bar) []float64 {
	out := make([]float64, len(bars))
	var cumTPV, cumVol float64
	for i, b := range bars {
		typical := (b.High + b.Low + b.Close) / 3
		cumTPV += typical * b.Volume
		cumVol += b.Volume
		if cumVol > 0 {
			out[i] = cumTPV / cumVol
		} else {
			out[i] = typical
		}
	}
	return out
}
