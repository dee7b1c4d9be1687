package grading

import "github.com/ascendro-ca/break-and-retest/internal/domain"

// Thresholds is the fixed table of grading bands. It is resolved once from
// configuration and never recomputed per call.
type Thresholds struct {
	// Retest bands
	RetestPierceAMax      float64 // Max pierce depth for an A retest
	RetestPierceBMax      float64 // Max pierce depth for a B retest
	RetestVolumeAMaxRatio float64 // Max retest/breakout volume for an A retest
	RetestVolumeBMaxRatio float64 // Above this the retest is rejected outright

	// Ignition volume-surge multipliers
	IgnitionVolumeRetestMult  float64
	IgnitionVolumeSessionMult float64
}

// DefaultThresholds returns the baseline grading table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		RetestPierceAMax:          0.10,
		RetestPierceBMax:          0.30,
		RetestVolumeAMaxRatio:     0.30,
		RetestVolumeBMaxRatio:     0.60,
		IgnitionVolumeRetestMult:  1.5,
		IgnitionVolumeSessionMult: 1.3,
	}
}

// Grader assigns discrete quality grades from bar geometry and volume ratios.
// All methods are pure functions of their inputs and the threshold table.
type Grader struct {
	t Thresholds
}

// New creates a Grader with the given threshold table.
func New(t Thresholds) *Grader {
	return &Grader{t: t}
}

// Breakout grades the breakout bar from body strength and volume confirmation
// (volume relative to the bar's trailing moving average).
func (g *Grader) Breakout(e *domain.BreakoutEvent) domain.Grade {
	if e == nil {
		return domain.GradeNone
	}
	bar := e.Bar
	body := bar.BodyFraction()

	var volRatio float64
	if bar.VolMA > 0 {
		volRatio = bar.Volume / bar.VolMA
	}

	directional := bar.IsBullish()
	if e.Direction == domain.Short {
		directional = bar.IsBearish()
	}

	switch {
	case directional && body >= 0.70 && volRatio >= 2.0:
		return domain.GradeAPlus
	case directional && body >= 0.65 && volRatio >= 1.5:
		return domain.GradeA
	case body >= 0.45 && volRatio >= 1.0:
		return domain.GradeB
	case body >= 0.25:
		return domain.GradeC
	default:
		return domain.GradeReject
	}
}

// Retest grades pullback quality: a shallow pierce on light volume with a
// strong close is the ideal "tap and go".
func (g *Grader) Retest(e *domain.RetestEvent) domain.Grade {
	if e == nil {
		return domain.GradeNone
	}
	if !e.CloseHeld {
		return domain.GradeReject
	}
	if e.VolumeRatio > g.t.RetestVolumeBMaxRatio {
		return domain.GradeReject
	}

	cleanTap := e.PierceDepth <= g.t.RetestPierceAMax && e.VolumeRatio <= g.t.RetestVolumeAMaxRatio
	switch {
	case cleanTap && e.BodyFraction >= 0.75 && e.PierceDepth <= g.t.RetestPierceAMax/2:
		return domain.GradeAPlus
	case cleanTap && e.BodyFraction >= 0.60:
		return domain.GradeA
	case e.PierceDepth <= g.t.RetestPierceBMax && e.BodyFraction >= 0.40:
		return domain.GradeB
	default:
		return domain.GradeC
	}
}

// Ignition grades the continuation bar. Absent ignition (nil) degrades to a
// neutral GradeNone contribution rather than failing.
func (g *Grader) Ignition(e *domain.IgnitionEvent) domain.Grade {
	if e == nil {
		return domain.GradeNone
	}

	surge := e.VolumeVsRetest >= g.t.IgnitionVolumeRetestMult &&
		e.VolumeVsSession >= g.t.IgnitionVolumeSessionMult

	switch {
	case e.BrokeRetestExtreme && e.BodyFraction >= 0.85 && e.OppositeWickFraction <= 0.10 && surge:
		return domain.GradeAPlus
	case e.BrokeRetestExtreme && e.BodyFraction >= 0.70 && e.OppositeWickFraction <= 0.10 && surge:
		return domain.GradeA
	case e.BrokeRetestExtreme && e.BodyFraction >= 0.50 && e.OppositeWickFraction <= 0.30 && e.VolumeVsRetest > 1.0:
		return domain.GradeB
	default:
		return domain.GradeC
	}
}

// RewardRisk grades a plan's reward:risk ratio.
func (g *Grader) RewardRisk(rr float64) domain.Grade {
	switch {
	case rr >= 3.0:
		return domain.GradeAPlus
	case rr >= 2.0:
		return domain.GradeA
	case rr >= 1.5:
		return domain.GradeB
	case rr >= 1.0:
		return domain.GradeC
	default:
		return domain.GradeReject
	}
}

// Overall combines per-stage grades into the setup grade: the minimum of the
// participating grades. Stages left at GradeNone do not participate.
func (g *Grader) Overall(stages domain.StageGrades) domain.Grade {
	return stages.Min()
}
