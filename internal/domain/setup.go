package domain

// StageGrades holds the per-stage quality grades of a setup. Stages that were
// not evaluated at the active pipeline level stay GradeNone.
type StageGrades struct {
	Breakout   Grade
	Retest     Grade
	Ignition   Grade
	RewardRisk Grade
}

// Participating returns the evaluated grades in stage order.
func (s StageGrades) Participating() []Grade {
	out := make([]Grade, 0, 4)
	for _, g := range []Grade{s.Breakout, s.Retest, s.Ignition, s.RewardRisk} {
		if g != GradeNone {
			out = append(out, g)
		}
	}
	return out
}

// Min returns the lowest evaluated grade, or GradeNone when nothing was graded.
func (s StageGrades) Min() Grade {
	return MinGrade(s.Breakout, s.Retest, s.Ignition, s.RewardRisk)
}

// TradeSetup aggregates the detection events of one candidate occurrence.
// It is the unit passed between orchestrator, planner, and simulator.
type TradeSetup struct {
	Symbol   string
	Session  string // Session date, YYYY-MM-DD
	Range    OpeningRange
	Breakout BreakoutEvent
	Retest   RetestEvent
	Ignition *IgnitionEvent // nil when no ignition bar exists or the stage was skipped
	Grades   StageGrades
	Overall  Grade
}
