package optimization

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/analytics"
	"github.com/ascendro-ca/break-and-retest/internal/pipeline"
	"github.com/ascendro-ca/break-and-retest/internal/ports"
)

// Parameter names accepted by the sweep.
const (
	ParamMinRewardRiskRatio     = "min_reward_risk_ratio"
	ParamRiskFractionPerTrade   = "risk_fraction_per_trade"
	ParamStopBufferAbs          = "stop_buffer_abs"
	ParamBreakoutVolumeMinRatio = "breakout_volume_min_ratio"
	ParamRetestPierceBMax       = "retest_pierce_b_max"
	ParamOpeningRangeBarCount   = "opening_range_bar_count"
)

// ParameterRange defines the sweep grid for one parameter.
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// Result is the outcome of running the full session set under one parameter
// combination.
type Result struct {
	Parameters map[string]float64
	Summary    *analytics.Summary
	Score      float64
}

// Config holds the sweep definition.
type Config struct {
	Ranges []ParameterRange
	Score  func(*analytics.Summary) float64
}

// Optimizer grid-searches pipeline parameters over a fixed session set. Each
// combination gets its own orchestrator; combinations run concurrently.
type Optimizer struct {
	base *config.Config
	cfg  Config
	log  ports.Logger
}

// New creates an Optimizer over a base configuration. The base is never
// mutated; each combination works on a copy.
func New(base *config.Config, cfg Config, log ports.Logger) *Optimizer {
	if cfg.Score == nil {
		cfg.Score = DefaultScore
	}
	return &Optimizer{base: base, cfg: cfg, log: log}
}

// Optimize runs every parameter combination against the sessions and returns
// results sorted by score, best first.
func (o *Optimizer) Optimize(ctx context.Context, sessions []pipeline.SessionInput) ([]Result, error) {
	combinations := o.generateCombinations()
	resultChan := make(chan Result, len(combinations))
	errChan := make(chan error, len(combinations))
	var wg sync.WaitGroup

	for _, params := range combinations {
		wg.Add(1)
		go func(params map[string]float64) {
			defer wg.Done()

			cfg, err := applyParams(o.base, params)
			if err != nil {
				errChan <- err
				return
			}

			orch := pipeline.New(cfg, o.log)
			reports := make([]*pipeline.SessionReport, 0, len(sessions))
			for _, in := range sessions {
				report, err := orch.RunSession(ctx, in)
				if err != nil {
					errChan <- fmt.Errorf("params %v: %w", params, err)
					return
				}
				reports = append(reports, report)
			}

			summary := analytics.Summarize(cfg.Symbol, reports)
			resultChan <- Result{
				Parameters: params,
				Summary:    summary,
				Score:      o.cfg.Score(summary),
			}
		}(params)
	}

	go func() {
		wg.Wait()
		close(resultChan)
		close(errChan)
	}()

	results := make([]Result, 0, len(combinations))
	for r := range resultChan {
		results = append(results, r)
	}
	if err := <-errChan; err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results, nil
}

// generateCombinations expands the ranges into the full cartesian grid.
func (o *Optimizer) generateCombinations() []map[string]float64 {
	var combinations []map[string]float64
	current := make(map[string]float64)

	var generate func(int)
	generate = func(idx int) {
		if idx == len(o.cfg.Ranges) {
			combo := make(map[string]float64, len(current))
			for k, v := range current {
				combo[k] = v
			}
			combinations = append(combinations, combo)
			return
		}
		p := o.cfg.Ranges[idx]
		// Half-step epsilon guards the float accumulation at the top end.
		for value := p.Min; value <= p.Max+p.Step/2; value += p.Step {
			v := value
			if p.IsInt {
				v = math.Round(v)
			}
			current[p.Name] = v
			generate(idx + 1)
		}
	}
	generate(0)
	return combinations
}

// applyParams copies the base config and overrides the swept parameters.
func applyParams(base *config.Config, params map[string]float64) (*config.Config, error) {
	cfg := *base
	for name, value := range params {
		switch name {
		case ParamMinRewardRiskRatio:
			cfg.MinRewardRiskRatio = value
		case ParamRiskFractionPerTrade:
			cfg.RiskFractionPerTrade = value
		case ParamStopBufferAbs:
			cfg.StopBufferAbs = value
		case ParamBreakoutVolumeMinRatio:
			cfg.BreakoutVolumeMinRatio = value
		case ParamRetestPierceBMax:
			cfg.RetestPierceBMax = value
		case ParamOpeningRangeBarCount:
			cfg.OpeningRangeBarCount = int(value)
		default:
			return nil, fmt.Errorf("unknown sweep parameter %q: %w", name, ports.ErrConfigurationError)
		}
	}
	return &cfg, nil
}

// DefaultScore favors total profit, discounted by an unreliable win rate.
// Parameter sets that never trade score to negative infinity so they sort
// behind any set that traded.
func DefaultScore(s *analytics.Summary) float64 {
	if s.Trades == 0 {
		return math.Inf(-1)
	}
	return s.TotalPNL * (0.5 + 0.5*s.WinRate)
}
