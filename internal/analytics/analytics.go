package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/pipeline"
)

// GradeStats aggregates outcomes for one setup grade.
type GradeStats struct {
	Trades  int
	Wins    int
	Losses  int
	Forced  int
	PNL     float64
	WinRate float64 // Wins / decided trades (forced closes excluded)
}

// Summary is the aggregate view over a whole backtest run.
type Summary struct {
	Symbol       string
	Sessions     int
	Trades       int
	Wins         int
	Losses       int
	ForcedCloses int
	WinRate      float64
	TotalPNL     float64
	AvgPNL       float64
	ByGrade      map[domain.Grade]GradeStats
	Funnel       pipeline.Funnel
}

// Summarize folds per-session reports into one Summary. Reports may arrive in
// any order; the summary is order-independent.
func Summarize(symbol string, reports []*pipeline.SessionReport) *Summary {
	s := &Summary{
		Symbol:  symbol,
		ByGrade: make(map[domain.Grade]GradeStats),
	}

	for _, r := range reports {
		s.Sessions++
		s.Funnel.Add(r.Funnel)
		for _, res := range r.Results {
			s.Trades++
			s.TotalPNL += res.PNL

			gs := s.ByGrade[res.Grade]
			gs.Trades++
			gs.PNL += res.PNL
			switch res.Outcome {
			case domain.OutcomeWin:
				s.Wins++
				gs.Wins++
			case domain.OutcomeLoss:
				s.Losses++
				gs.Losses++
			case domain.OutcomeForcedClose:
				s.ForcedCloses++
				gs.Forced++
			}
			s.ByGrade[res.Grade] = gs
		}
	}

	if decided := s.Wins + s.Losses; decided > 0 {
		s.WinRate = float64(s.Wins) / float64(decided)
	}
	if s.Trades > 0 {
		s.AvgPNL = s.TotalPNL / float64(s.Trades)
	}
	for grade, gs := range s.ByGrade {
		if decided := gs.Wins + gs.Losses; decided > 0 {
			gs.WinRate = float64(gs.Wins) / float64(decided)
			s.ByGrade[grade] = gs
		}
	}
	return s
}

// Format renders the summary as a plain-text report block.
func (s *Summary) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Backtest Summary: %s ===\n", s.Symbol)
	fmt.Fprintf(&b, "Sessions: %d  Trades: %d\n", s.Sessions, s.Trades)
	fmt.Fprintf(&b, "Wins: %d  Losses: %d  Forced closes: %d  Win rate: %.1f%%\n",
		s.Wins, s.Losses, s.ForcedCloses, s.WinRate*100)
	fmt.Fprintf(&b, "Total PNL: %.2f  Avg PNL/trade: %.2f\n", s.TotalPNL, s.AvgPNL)
	fmt.Fprintf(&b, "Funnel: no-breakout=%d no-retest=%d candidates=%d quality-rejected=%d plan-rejected=%d executed=%d\n",
		s.Funnel.NoBreakout, s.Funnel.NoRetest, s.Funnel.Candidates,
		s.Funnel.QualityRejected, s.Funnel.PlanRejected, s.Funnel.Executed)

	grades := make([]domain.Grade, 0, len(s.ByGrade))
	for g := range s.ByGrade {
		grades = append(grades, g)
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i] > grades[j] })
	for _, g := range grades {
		gs := s.ByGrade[g]
		fmt.Fprintf(&b, "  [%s] trades=%d wins=%d losses=%d forced=%d pnl=%.2f win-rate=%.1f%%\n",
			g, gs.Trades, gs.Wins, gs.Losses, gs.Forced, gs.PNL, gs.WinRate*100)
	}
	return b.String()
}
