package indicators

import "github.com/ascendro-ca/break-and-retest/internal/domain"

// VolumeMA computes a trailing simple moving average of bar volume.
// The window shrinks at the start of the series (min periods 1), matching how
// the data provider precomputes the indicator for early-session bars.
func VolumeMA(bars []*domain.Bar, period int) []float64 {
	if period <= 0 {
		period = 1
	}
	out := make([]float64, len(bars))
	var sum float64
	for i, b := range bars {
		sum += b.Volume
		if i >= period {
			sum -= bars[i-period].Volume
		}
		n := i + 1
		if n > period {
			n = period
		}
		out[i] = sum / float64(n)
	}
	return out
}
