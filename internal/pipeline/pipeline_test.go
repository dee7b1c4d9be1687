package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...map[string]interface{})        {}
func (nopLogger) Info(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Warn(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Error(context.Context, error, string, ...map[string]interface{}) {}

func testConfig(level config.PipelineLevel) *config.Config {
	return &config.Config{
		Symbol:                    "ETHUSDT",
		OpeningRangeBarCount:      1,
		BreakoutOpenTolerancePct:  0.0025,
		BreakoutCloseToleranceAbs: 0.01,
		BreakoutVolumeMinRatio:    1.0,
		RetestPierceAMax:          0.10,
		RetestPierceBMax:          0.30,
		RetestVolumeAMaxRatio:     0.30,
		RetestVolumeBMaxRatio:     0.60,
		RetestCloseEpsilonTicks:   1,
		RetestVWAPBandPct:         0.001,
		IgnitionVolumeRetestMult:  1.5,
		IgnitionVolumeSessionMult: 1.3,
		VolumeMAPeriod:            20,
		TickSize:                  0.01,
		Capital:                   10000,
		RiskFractionPerTrade:      0.01,
		Leverage:                  1.0,
		MinRewardRiskRatio:        2.0,
		RewardRiskByGrade:         map[domain.Grade]float64{},
		StopBufferAbs:             0.05,
		PipelineLevel:             level,
		MinStageGrade:             domain.GradeC,
	}
}

var sessionStart = time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)

func coarseBar(idx int, open, high, low, close, volume, volMA float64) *domain.Bar {
	return &domain.Bar{
		OpenTime:  sessionStart.Add(time.Duration(idx) * 5 * time.Minute),
		CloseTime: sessionStart.Add(time.Duration(idx+1) * 5 * time.Minute),
		Symbol:    "ETHUSDT", Interval: "5m",
		Open: open, High: high, Low: low, Close: close,
		Volume: volume, VolMA: volMA,
	}
}

func fineBar(minute int, open, high, low, close, volume, volMA float64) *domain.Bar {
	return &domain.Bar{
		OpenTime:  sessionStart.Add(time.Duration(minute) * time.Minute),
		CloseTime: sessionStart.Add(time.Duration(minute+1) * time.Minute),
		Symbol:    "ETHUSDT", Interval: "1m",
		Open: open, High: high, Low: low, Close: close,
		Volume: volume, VolMA: volMA,
	}
}

// winningSession builds a session with a clean long setup: opening range
// 99.50-100.50, breakout at bar two, a shallow retest of 100.50 right after
// the breakout closes, an igniting bar, then a push through the target.
func winningSession() SessionInput {
	coarse := []*domain.Bar{
		coarseBar(0, 100.00, 100.50, 99.50, 100.20, 1000, 1000),
		coarseBar(1, 100.20, 101.60, 100.10, 101.40, 2000, 1000),
		coarseBar(2, 101.40, 101.60, 101.20, 101.50, 800, 1000),
	}
	fine := []*domain.Bar{
		// Retest: wick taps 100.48, close holds well above the 100.50 level.
		fineBar(10, 100.52, 100.80, 100.48, 100.78, 400, 500),
		// Ignition: breaks the retest high on doubled volume.
		fineBar(11, 100.81, 101.25, 100.75, 101.21, 800, 500),
		// Continuation through the 2R target.
		fineBar(12, 101.21, 101.60, 101.10, 101.55, 900, 500),
	}
	return SessionInput{Symbol: "ETHUSDT", Date: "2024-03-11", Coarse: coarse, Fine: fine}
}

func TestRunSession_QualityFiltered_WinningLong(t *testing.T) {
	o := New(testConfig(config.LevelQualityFiltered), nopLogger{})

	report, err := o.RunSession(context.Background(), winningSession())
	require.NoError(t, err)

	require.Len(t, report.Setups, 1)
	setup := report.Setups[0]
	assert.Equal(t, domain.Long, setup.Breakout.Direction)
	assert.InDelta(t, 100.50, setup.Breakout.Level, 1e-9)
	require.NotNil(t, setup.Ignition)

	assert.Equal(t, domain.GradeAPlus, setup.Grades.Breakout)
	assert.Equal(t, domain.GradeA, setup.Grades.Retest)
	assert.Equal(t, domain.GradeA, setup.Grades.Ignition)
	assert.Equal(t, domain.GradeA, setup.Grades.RewardRisk)
	assert.Equal(t, domain.GradeA, setup.Overall)

	require.Len(t, report.Plans, 1)
	plan := report.Plans[0]
	assert.InDelta(t, 100.80, plan.Entry, 1e-9)
	assert.InDelta(t, 100.43, plan.Stop, 1e-9)
	assert.InDelta(t, 101.54, plan.Target, 1e-9)
	assert.Equal(t, 99, plan.Shares)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.Equal(t, domain.OutcomeWin, res.Outcome)
	assert.InDelta(t, (101.54-100.80)*99, res.PNL, 1e-6)
	assert.Equal(t, domain.GradeA, res.Grade)
	assert.Equal(t, "2024-03-11", res.Session)

	// The short scan found no breakout; the long scan executed.
	assert.Equal(t, Funnel{NoBreakout: 1, Candidates: 1, Executed: 1}, report.Funnel)
}

func TestRunSession_CandidatesOnly_StopsAfterDetection(t *testing.T) {
	o := New(testConfig(config.LevelCandidatesOnly), nopLogger{})

	report, err := o.RunSession(context.Background(), winningSession())
	require.NoError(t, err)

	require.Len(t, report.Setups, 1)
	setup := report.Setups[0]
	assert.Nil(t, setup.Ignition)
	assert.Equal(t, domain.GradeNone, setup.Grades.Breakout)
	assert.Equal(t, domain.GradeNone, setup.Overall)
	assert.Empty(t, report.Plans)
	assert.Empty(t, report.Results)
	assert.Equal(t, Funnel{NoBreakout: 1, Candidates: 1}, report.Funnel)
}

func TestRunSession_BaseExecution_TradesUngraded(t *testing.T) {
	o := New(testConfig(config.LevelBaseExecution), nopLogger{})

	report, err := o.RunSession(context.Background(), winningSession())
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.Equal(t, domain.GradeNone, report.Results[0].Grade)
	assert.Equal(t, domain.GradeNone, report.Setups[0].Overall)
	// Base execution uses the configured minimum ratio, same 2R target.
	assert.InDelta(t, 101.54, report.Plans[0].Target, 1e-9)
}

func TestRunSession_QualityFilterRejectsHeavyRetest(t *testing.T) {
	o := New(testConfig(config.LevelQualityFiltered), nopLogger{})

	in := winningSession()
	// Retest volume at 70% of breakout volume grades Reject.
	in.Fine[0].Volume = 1400

	report, err := o.RunSession(context.Background(), in)
	require.NoError(t, err)

	assert.Len(t, report.Setups, 1)
	assert.Equal(t, domain.GradeReject, report.Setups[0].Grades.Retest)
	assert.Empty(t, report.Plans)
	assert.Empty(t, report.Results)
	assert.Equal(t, Funnel{NoBreakout: 1, Candidates: 1, QualityRejected: 1}, report.Funnel)
}

func TestRunSession_VWAPMisalignmentTerminatesRetestScan(t *testing.T) {
	o := New(testConfig(config.LevelQualityFiltered), nopLogger{})

	in := winningSession()
	// The touching, holding bar closes far from the session reference price.
	in.Fine[0].VWAP = 90.0

	report, err := o.RunSession(context.Background(), in)
	require.NoError(t, err)

	assert.Empty(t, report.Setups)
	assert.Equal(t, Funnel{NoBreakout: 1, NoRetest: 1}, report.Funnel)
}

func TestRunSession_RetestOnFinalBarCannotFill(t *testing.T) {
	o := New(testConfig(config.LevelQualityFiltered), nopLogger{})

	in := winningSession()
	in.Fine = in.Fine[:1]

	report, err := o.RunSession(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, report.Setups, 1)
	assert.Nil(t, report.Setups[0].Ignition)
	assert.Equal(t, domain.GradeNone, report.Setups[0].Grades.Ignition)
	assert.Empty(t, report.Plans)
	assert.Equal(t, Funnel{NoBreakout: 1, Candidates: 1, PlanRejected: 1}, report.Funnel)
}

func TestRunSession_MalformedSeries(t *testing.T) {
	o := New(testConfig(config.LevelBaseExecution), nopLogger{})

	in := winningSession()
	in.Fine[2].OpenTime = in.Fine[0].OpenTime // duplicate timestamp

	_, err := o.RunSession(context.Background(), in)
	assert.ErrorIs(t, err, ports.ErrMalformedSeries)
}

func TestRunSession_EmptySeries(t *testing.T) {
	o := New(testConfig(config.LevelBaseExecution), nopLogger{})

	in := winningSession()
	in.Coarse = nil

	_, err := o.RunSession(context.Background(), in)
	assert.ErrorIs(t, err, ports.ErrInsufficientData)
}

func TestRunSession_Idempotent(t *testing.T) {
	o := New(testConfig(config.LevelQualityFiltered), nopLogger{})

	first, err := o.RunSession(context.Background(), winningSession())
	require.NoError(t, err)
	second, err := o.RunSession(context.Background(), winningSession())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
