package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/detect"
	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/grading"
	"github.com/ascendro-ca/break-and-retest/internal/marketdata"
	"github.com/ascendro-ca/break-and-retest/internal/planner"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
	"github.com/ascendro-ca/break-and-retest/internal/simulator"
)

// SessionInput is one trading day's enriched bars at both granularities.
type SessionInput struct {
	Symbol string
	Date   string // YYYY-MM-DD
	Coarse []*domain.Bar
	Fine   []*domain.Bar
}

// Funnel counts where candidates dropped out of the session run. Counters are
// per direction scan, so a session contributes up to two increments.
type Funnel struct {
	NoBreakout      int
	NoRetest        int
	Candidates      int // Setups that completed detection
	QualityRejected int
	PlanRejected    int
	Executed        int
}

// Add accumulates another funnel into this one.
func (f *Funnel) Add(other Funnel) {
	f.NoBreakout += other.NoBreakout
	f.NoRetest += other.NoRetest
	f.Candidates += other.Candidates
	f.QualityRejected += other.QualityRejected
	f.PlanRejected += other.PlanRejected
	f.Executed += other.Executed
}

// SessionReport is the complete output of one session run. Rejected setups
// stay in Setups with no matching plan or result.
type SessionReport struct {
	Symbol  string
	Date    string
	Setups  []*domain.TradeSetup
	Plans   []*domain.TradePlan
	Results []*domain.TradeResult
	Funnel  Funnel
}

// Orchestrator drives one session through detection, grading, planning, and
// simulation according to the configured pipeline level. It is stateless
// between sessions and safe for concurrent use across sessions.
type Orchestrator struct {
	cfg     *config.Config
	grader  *grading.Grader
	planner *planner.Planner
	log     ports.Logger
}

// New builds an Orchestrator from resolved configuration.
func New(cfg *config.Config, log ports.Logger) *Orchestrator {
	return &Orchestrator{
		cfg: cfg,
		grader: grading.New(grading.Thresholds{
			RetestPierceAMax:          cfg.RetestPierceAMax,
			RetestPierceBMax:          cfg.RetestPierceBMax,
			RetestVolumeAMaxRatio:     cfg.RetestVolumeAMaxRatio,
			RetestVolumeBMaxRatio:     cfg.RetestVolumeBMaxRatio,
			IgnitionVolumeRetestMult:  cfg.IgnitionVolumeRetestMult,
			IgnitionVolumeSessionMult: cfg.IgnitionVolumeSessionMult,
		}),
		planner: planner.New(planner.Config{
			Capital:              cfg.Capital,
			RiskFractionPerTrade: cfg.RiskFractionPerTrade,
			Leverage:             cfg.Leverage,
			StopBufferAbs:        cfg.StopBufferAbs,
			TickSize:             cfg.TickSize,
		}),
		log: log,
	}
}

// RunSession processes one session. Detection runs once per direction; at
// most one setup per direction can come out of a session. Running the same
// input twice yields identical reports.
func (o *Orchestrator) RunSession(ctx context.Context, in SessionInput) (*SessionReport, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	rng, err := detect.OpeningRange(in.Coarse, o.cfg.OpeningRangeBarCount)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", in.Date, err)
	}

	report := &SessionReport{Symbol: in.Symbol, Date: in.Date}
	for _, dir := range []domain.Direction{domain.Long, domain.Short} {
		if err := o.runDirection(ctx, in, rng, dir, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func validateInput(in SessionInput) error {
	// Malformed or empty series are hard faults, not no-signal outcomes.
	for name, series := range map[string][]*domain.Bar{"coarse": in.Coarse, "fine": in.Fine} {
		if err := marketdata.ValidateSeries(series); err != nil {
			return fmt.Errorf("session %s %s series: %w", in.Date, name, err)
		}
	}
	return nil
}

func (o *Orchestrator) runDirection(ctx context.Context, in SessionInput, rng *domain.OpeningRange, dir domain.Direction, report *SessionReport) error {
	brk := detect.Breakout(in.Coarse, rng, dir, detect.BreakoutConfig{
		OpenTolerancePct:     o.cfg.BreakoutOpenTolerancePct,
		CloseToleranceAbs:    o.cfg.BreakoutCloseToleranceAbs,
		VolumeMinRatio:       o.cfg.BreakoutVolumeMinRatio,
		OpeningRangeBarCount: o.cfg.OpeningRangeBarCount,
	})
	if brk == nil {
		report.Funnel.NoBreakout++
		return nil
	}

	retest, retestIdx := detect.Retest(in.Fine, brk, detect.RetestConfig{
		CloseEpsilonTicks: o.cfg.RetestCloseEpsilonTicks,
		TickSize:          o.cfg.TickSize,
		VWAPBandPct:       o.cfg.RetestVWAPBandPct,
	})
	if retest == nil {
		report.Funnel.NoRetest++
		return nil
	}

	setup := &domain.TradeSetup{
		Symbol:   in.Symbol,
		Session:  in.Date,
		Range:    *rng,
		Breakout: *brk,
		Retest:   *retest,
	}
	report.Setups = append(report.Setups, setup)
	report.Funnel.Candidates++

	o.log.Debug(ctx, "candidate setup detected", map[string]interface{}{
		"session": in.Date, "direction": string(dir),
		"level": brk.Level, "retest_bar": retest.Bar.OpenTime,
	})

	if o.cfg.PipelineLevel == config.LevelCandidatesOnly {
		return nil
	}

	quality := o.cfg.PipelineLevel == config.LevelQualityFiltered
	if quality {
		setup.Ignition = detect.Ignition(in.Fine, retestIdx, retest, dir)
		setup.Grades.Breakout = o.grader.Breakout(brk)
		setup.Grades.Retest = o.grader.Retest(retest)
		setup.Grades.Ignition = o.grader.Ignition(setup.Ignition)
		setup.Overall = o.grader.Overall(setup.Grades)

		if !o.stagesClear(setup.Grades) {
			report.Funnel.QualityRejected++
			o.log.Debug(ctx, "setup below quality bar", map[string]interface{}{
				"session": in.Date, "direction": string(dir), "overall": setup.Overall.String(),
			})
			return nil
		}
	}

	rr := o.cfg.MinRewardRiskRatio
	if quality {
		rr = o.cfg.RewardRiskFor(setup.Overall)
	}

	plan, err := o.planner.Plan(setup, rr)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidStopDistance) || errors.Is(err, ports.ErrUnfundablePlan) {
			report.Funnel.PlanRejected++
			o.log.Debug(ctx, "plan rejected", map[string]interface{}{
				"session": in.Date, "direction": string(dir), "reason": err.Error(),
			})
			return nil
		}
		return err
	}

	if quality {
		setup.Grades.RewardRisk = o.grader.RewardRisk(plan.RewardRisk)
		setup.Overall = o.grader.Overall(setup.Grades)
		if !setup.Grades.RewardRisk.AtLeast(o.cfg.MinStageGrade) {
			report.Funnel.QualityRejected++
			return nil
		}
	}

	// The fill is assumed at the planned entry on the bar after the retest.
	// A retest on the session's final bar leaves nothing to simulate.
	entryBars := in.Fine[retestIdx+1:]
	if len(entryBars) == 0 {
		report.Funnel.PlanRejected++
		o.log.Debug(ctx, "no bars after retest to fill entry", map[string]interface{}{
			"session": in.Date, "direction": string(dir),
		})
		return nil
	}
	report.Plans = append(report.Plans, plan)

	result, err := simulator.Simulate(plan, entryBars)
	if err != nil {
		return err
	}
	result.Symbol = in.Symbol
	result.Session = in.Date
	result.Grade = setup.Overall
	report.Results = append(report.Results, result)
	report.Funnel.Executed++

	o.log.Info(ctx, "trade simulated", map[string]interface{}{
		"session": in.Date, "direction": string(dir),
		"outcome": string(result.Outcome), "pnl": result.PNL, "grade": setup.Overall.String(),
	})
	return nil
}

// stagesClear reports whether every evaluated stage meets the configured
// minimum grade. Unevaluated stages (GradeNone) are exempt.
func (o *Orchestrator) stagesClear(g domain.StageGrades) bool {
	for _, grade := range g.Participating() {
		if !grade.AtLeast(o.cfg.MinStageGrade) {
			return false
		}
	}
	return true
}
