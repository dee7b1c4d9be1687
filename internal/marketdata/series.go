package marketdata

import (
	"fmt"
	"sort"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/indicators"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// ValidateSeries checks the core input contract for one session series:
// ordered, strictly increasing timestamps. It fails fast rather than
// attempting repair; repair belongs to the data-provider collaborator.
func ValidateSeries(bars []*domain.Bar) error {
	if len(bars) == 0 {
		return ports.ErrInsufficientData
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].OpenTime.After(bars[i-1].OpenTime) {
			return fmt.Errorf("bar %d at %s does not advance past %s: %w",
				i, bars[i].OpenTime, bars[i-1].OpenTime, ports.ErrMalformedSeries)
		}
	}
	return nil
}

// Enrich populates the trailing volume MA and session VWAP on a copy of the
// series. Providers call this once per session before handing bars to the
// core; the core never mutates enriched bars.
func Enrich(bars []*domain.Bar, volumeMAPeriod int) []*domain.Bar {
	volMA := indicators.VolumeMA(bars, volumeMAPeriod)
	vwap := indicators.VWAP(bars)
	out := make([]*domain.Bar, len(bars))
	for i, b := range bars {
		cp := *b
		cp.VolMA = volMA[i]
		cp.VWAP = vwap[i]
		out[i] = &cp
	}
	return out
}

// SplitSessions groups a continuous bar history into per-day sessions keyed
// by the bar's local calendar date (YYYY-MM-DD). Sessions come back in date
// order with bars in their original order.
func SplitSessions(bars []*domain.Bar) []Session {
	grouped := make(map[string][]*domain.Bar)
	for _, b := range bars {
		date := b.OpenTime.Format("2006-01-02")
		grouped[date] = append(grouped[date], b)
	}
	dates := make([]string, 0, len(grouped))
	for d := range grouped {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	sessions := make([]Session, 0, len(dates))
	for _, d := range dates {
		sessions = append(sessions, Session{Date: d, Bars: grouped[d]})
	}
	return sessions
}

// Session is one trading day's worth of bars at a single granularity.
type Session struct {
	Date string
	Bars []*domain.Bar
}
