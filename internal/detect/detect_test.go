package detect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

var sessionStart = time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)

func coarseBar(idx int, open, high, low, close, volume, volMA float64) *domain.Bar {
	return &domain.Bar{
		OpenTime:  sessionStart.Add(time.Duration(idx) * 5 * time.Minute),
		CloseTime: sessionStart.Add(time.Duration(idx+1) * 5 * time.Minute),
		Open:      open, High: high, Low: low, Close: close,
		Volume: volume, VolMA: volMA,
	}
}

func fineBar(minute int, open, high, low, close, volume float64) *domain.Bar {
	return &domain.Bar{
		OpenTime:  sessionStart.Add(time.Duration(minute) * time.Minute),
		CloseTime: sessionStart.Add(time.Duration(minute+1) * time.Minute),
		Open:      open, High: high, Low: low, Close: close,
		Volume: volume,
	}
}

func TestOpeningRange(t *testing.T) {
	bars := []*domain.Bar{
		coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
		coarseBar(1, 100.20, 100.90, 99.30, 100.40, 1200, 1100),
	}

	t.Run("single bar", func(t *testing.T) {
		rng, err := OpeningRange(bars, 1)
		require.NoError(t, err)
		assert.InDelta(t, 100.50, rng.High, 1e-9)
		assert.InDelta(t, 99.50, rng.Low, 1e-9)
		assert.Same(t, bars[0], rng.Bar)
	})

	t.Run("band widens over multiple bars", func(t *testing.T) {
		rng, err := OpeningRange(bars, 2)
		require.NoError(t, err)
		assert.InDelta(t, 100.90, rng.High, 1e-9)
		assert.InDelta(t, 99.30, rng.Low, 1e-9)
	})

	t.Run("empty session", func(t *testing.T) {
		_, err := OpeningRange(nil, 1)
		assert.ErrorIs(t, err, ports.ErrInsufficientData)
	})

	t.Run("fewer bars than requested", func(t *testing.T) {
		_, err := OpeningRange(bars, 3)
		assert.ErrorIs(t, err, ports.ErrInsufficientData)
	})
}

func TestBreakout(t *testing.T) {
	rng := &domain.OpeningRange{High: 100.50, Low: 99.50}
	cfg := BreakoutConfig{
		OpenTolerancePct:     0.0025,
		CloseToleranceAbs:    0.01,
		VolumeMinRatio:       1.0,
		OpeningRangeBarCount: 1,
	}

	t.Run("first qualifying long bar wins", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
			coarseBar(1, 100.20, 100.60, 100.00, 100.30, 1500, 1000), // closes inside
			coarseBar(2, 100.30, 101.60, 100.10, 101.40, 2000, 1000), // breaks out
			coarseBar(3, 101.40, 102.00, 101.20, 101.90, 2500, 1200), // later, ignored
		}

		brk := Breakout(coarse, rng, domain.Long, cfg)
		require.NotNil(t, brk)
		assert.Equal(t, domain.Long, brk.Direction)
		assert.InDelta(t, 100.50, brk.Level, 1e-9)
		assert.Same(t, coarse[2], brk.Bar)
		assert.InDelta(t, 2000, brk.Volume, 1e-9)
	})

	t.Run("short breaks the low boundary", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
			coarseBar(1, 100.10, 100.20, 98.80, 99.00, 1800, 1000),
		}

		brk := Breakout(coarse, rng, domain.Short, cfg)
		require.NotNil(t, brk)
		assert.InDelta(t, 99.50, brk.Level, 1e-9)
	})

	t.Run("low volume disqualifies", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
			coarseBar(1, 100.30, 101.60, 100.10, 101.40, 500, 1000),
		}
		assert.Nil(t, Breakout(coarse, rng, domain.Long, cfg))
	})

	t.Run("gap open beyond tolerance disqualifies", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
			// Opens at 101.00, well past 100.50 * 1.0025.
			coarseBar(1, 101.00, 101.60, 100.90, 101.40, 2000, 1000),
		}
		assert.Nil(t, Breakout(coarse, rng, domain.Long, cfg))
	})

	t.Run("opening range bars are never scanned", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 101.60, 99.50, 101.40, 5000, 1000),
		}
		assert.Nil(t, Breakout(coarse, rng, domain.Long, cfg))
	})

	t.Run("no qualifying bar", func(t *testing.T) {
		coarse := []*domain.Bar{
			coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
			coarseBar(1, 100.20, 100.40, 100.00, 100.30, 1500, 1000),
		}
		assert.Nil(t, Breakout(coarse, rng, domain.Long, cfg))
	})
}

func longBreakout() *domain.BreakoutEvent {
	return &domain.BreakoutEvent{
		Direction: domain.Long,
		Level:     100.50,
		Bar:       coarseBar(1, 100.20, 101.60, 100.10, 101.40, 2000, 1000),
		Volume:    2000,
	}
}

func TestRetest(t *testing.T) {
	cfg := RetestConfig{CloseEpsilonTicks: 1, TickSize: 0.01, VWAPBandPct: 0.001}

	t.Run("accepts first touching holding bar", func(t *testing.T) {
		fine := []*domain.Bar{
			fineBar(10, 100.90, 101.00, 100.70, 100.80, 300), // never touches the level
			fineBar(11, 100.52, 100.80, 100.48, 100.78, 400), // taps and holds
			fineBar(12, 100.60, 100.70, 100.40, 100.55, 350),
		}

		ev, idx := Retest(fine, longBreakout(), cfg)
		require.NotNil(t, ev)
		assert.Equal(t, 1, idx)
		assert.Same(t, fine[1], ev.Bar)
		assert.True(t, ev.CloseHeld)
		assert.InDelta(t, 0.0625, ev.PierceDepth, 1e-9)
		assert.InDelta(t, 0.8125, ev.BodyFraction, 1e-9)
		assert.InDelta(t, 0.20, ev.VolumeRatio, 1e-9)
	})

	t.Run("bars before breakout close are ignored", func(t *testing.T) {
		fine := []*domain.Bar{
			// Opens during the breakout bar; would otherwise qualify.
			fineBar(8, 100.52, 100.80, 100.48, 100.78, 400),
		}

		ev, idx := Retest(fine, longBreakout(), cfg)
		assert.Nil(t, ev)
		assert.Equal(t, -1, idx)
	})

	t.Run("touch without hold is skipped not terminal", func(t *testing.T) {
		fine := []*domain.Bar{
			fineBar(10, 100.60, 100.70, 100.30, 100.35, 500), // touches, closes below
			fineBar(11, 100.52, 100.80, 100.48, 100.78, 400), // clean retest later
		}

		ev, idx := Retest(fine, longBreakout(), cfg)
		require.NotNil(t, ev)
		assert.Equal(t, 1, idx)
	})

	t.Run("close epsilon tolerates a one-tick shortfall", func(t *testing.T) {
		fine := []*domain.Bar{
			fineBar(10, 100.55, 100.70, 100.45, 100.49, 400),
		}

		ev, _ := Retest(fine, longBreakout(), cfg)
		require.NotNil(t, ev)
		assert.True(t, ev.CloseHeld)
	})

	t.Run("vwap misalignment terminates the scan", func(t *testing.T) {
		first := fineBar(10, 100.52, 100.80, 100.48, 100.78, 400)
		first.VWAP = 99.00 // close is far outside the band
		fine := []*domain.Bar{
			first,
			fineBar(11, 100.52, 100.80, 100.48, 100.78, 400), // never reached
		}

		ev, idx := Retest(fine, longBreakout(), cfg)
		assert.Nil(t, ev)
		assert.Equal(t, -1, idx)
	})

	t.Run("short retest mirrors the geometry", func(t *testing.T) {
		brk := &domain.BreakoutEvent{
			Direction: domain.Short,
			Level:     99.50,
			Bar:       coarseBar(1, 100.10, 100.20, 98.80, 99.00, 1800, 1000),
			Volume:    1800,
		}
		fine := []*domain.Bar{
			fineBar(10, 99.30, 99.55, 99.20, 99.25, 360),
		}

		ev, idx := Retest(fine, brk, cfg)
		require.NotNil(t, ev)
		assert.Equal(t, 0, idx)
		// Pierce above the level: (99.55 - 99.50) / 0.35.
		assert.InDelta(t, 0.05/0.35, ev.PierceDepth, 1e-9)
	})
}

func TestIgnition(t *testing.T) {
	retestBar := fineBar(10, 100.52, 100.80, 100.48, 100.78, 400)
	retest := &domain.RetestEvent{Bar: retestBar, CloseHeld: true}

	t.Run("bar after retest ignites", func(t *testing.T) {
		next := fineBar(11, 100.81, 101.25, 100.75, 101.21, 800)
		next.VolMA = 500
		fine := []*domain.Bar{retestBar, next}

		ev := Ignition(fine, 0, retest, domain.Long)
		require.NotNil(t, ev)
		assert.Same(t, next, ev.Bar)
		assert.True(t, ev.BrokeRetestExtreme)
		assert.InDelta(t, 0.80, ev.BodyFraction, 1e-9)
		assert.InDelta(t, 0.08, ev.OppositeWickFraction, 1e-9)
		assert.InDelta(t, 2.0, ev.VolumeVsRetest, 1e-9)
		assert.InDelta(t, 1.6, ev.VolumeVsSession, 1e-9)
	})

	t.Run("intrabar break without close beyond does not count", func(t *testing.T) {
		next := fineBar(11, 100.70, 100.85, 100.60, 100.75, 450)
		fine := []*domain.Bar{retestBar, next}

		ev := Ignition(fine, 0, retest, domain.Long)
		require.NotNil(t, ev)
		assert.False(t, ev.BrokeRetestExtreme)
	})

	t.Run("retest on final bar yields nothing", func(t *testing.T) {
		fine := []*domain.Bar{retestBar}
		assert.Nil(t, Ignition(fine, 0, retest, domain.Long))
	})

	t.Run("short direction uses the low extreme", func(t *testing.T) {
		shortRetest := &domain.RetestEvent{
			Bar: fineBar(10, 99.30, 99.55, 99.20, 99.25, 360), CloseHeld: true,
		}
		next := fineBar(11, 99.24, 99.26, 98.90, 98.95, 700)
		fine := []*domain.Bar{shortRetest.Bar, next}

		ev := Ignition(fine, 0, shortRetest, domain.Short)
		require.NotNil(t, ev)
		assert.True(t, ev.BrokeRetestExtreme)
	})
}
