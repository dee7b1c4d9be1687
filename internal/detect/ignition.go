package detect

import "github.com/ascendro-ca/break-and-retest/internal/domain"

// Ignition examines the single fine-granularity bar immediately following the
// accepted retest bar for a decisive continuation move. There is no scanning:
// the candidate is fixed at one bar after the retest. Returns nil when the
// retest bar was the last bar of the session.
func Ignition(fine []*domain.Bar, retestIdx int, retest *domain.RetestEvent, dir domain.Direction) *domain.IgnitionEvent {
	next := retestIdx + 1
	if retestIdx < 0 || next >= len(fine) {
		return nil
	}
	bar := fine[next]

	var brokeExtreme bool
	var oppositeWick float64
	if dir == domain.Long {
		extreme := retest.Bar.High
		brokeExtreme = bar.High > extreme && bar.Close > extreme
		oppositeWick = bar.UpperWickFraction()
	} else {
		extreme := retest.Bar.Low
		brokeExtreme = bar.Low < extreme && bar.Close < extreme
		oppositeWick = bar.LowerWickFraction()
	}

	var volVsRetest float64
	if retest.Bar.Volume > 0 {
		volVsRetest = bar.Volume / retest.Bar.Volume
	}
	var volVsSession float64
	if bar.VolMA > 0 {
		volVsSession = bar.Volume / bar.VolMA
	}

	return &domain.IgnitionEvent{
		Bar:                  bar,
		BrokeRetestExtreme:   brokeExtreme,
		BodyFraction:         bar.BodyFraction(),
		OppositeWickFraction: oppositeWick,
		VolumeVsRetest:       volVsRetest,
		VolumeVsSession:      volVsSession,
	}
}
