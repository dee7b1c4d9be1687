package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/ascendro-ca/break-and-retest/internal/adapters/logger"
	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

// PipelineLevel selects which stages the orchestrator runs for a backtest.
// It is a configuration input, not a runtime state change: each run operates
// in exactly one level for its duration.
type PipelineLevel string

const (
	LevelCandidatesOnly  PipelineLevel = "candidates-only"
	LevelBaseExecution   PipelineLevel = "base-execution"
	LevelQualityFiltered PipelineLevel = "quality-filtered"
)

// ParsePipelineLevel converts a string to a PipelineLevel.
func ParsePipelineLevel(s string) (PipelineLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(LevelCandidatesOnly), "0", "candidates":
		return LevelCandidatesOnly, nil
	case string(LevelBaseExecution), "1", "base":
		return LevelBaseExecution, nil
	case string(LevelQualityFiltered), "2", "quality":
		return LevelQualityFiltered, nil
	default:
		return "", fmt.Errorf("unknown pipeline level %q", s)
	}
}

// Config holds all application configuration, resolved once at startup and
// passed explicitly down through the pipeline.
type Config struct {
	// Data source
	Symbol         string
	CoarseInterval string // Breakout-scan granularity (e.g., "5m")
	FineInterval   string // Retest/ignition granularity (e.g., "1m")
	CoarseDataPath string
	FineDataPath   string

	// Binance API (fetch_bars only; backtesting reads CSVs)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Detection parameters
	OpeningRangeBarCount      int
	BreakoutOpenTolerancePct  float64 // Gap-continuation tolerance on the breakout bar's open
	BreakoutCloseToleranceAbs float64
	BreakoutVolumeMinRatio    float64 // Breakout volume vs trailing volume MA
	RetestPierceAMax          float64
	RetestPierceBMax          float64
	RetestVolumeAMaxRatio     float64
	RetestVolumeBMaxRatio     float64
	RetestCloseEpsilonTicks   float64
	RetestVWAPBandPct         float64
	IgnitionVolumeRetestMult  float64
	IgnitionVolumeSessionMult float64
	VolumeMAPeriod            int
	TickSize                  float64

	// Risk parameters
	Capital              float64
	RiskFractionPerTrade float64
	Leverage             float64
	MinRewardRiskRatio   float64
	RewardRiskByGrade    map[domain.Grade]float64
	StopBufferAbs        float64

	// Pipeline
	PipelineLevel PipelineLevel
	MinStageGrade domain.Grade // QualityFiltered: every evaluated stage must clear this

	// Database
	DBPath string

	// Logging
	LogLevel logger.LogLevel
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var errs []string

	cfg.Symbol = getEnv("SYMBOL", "ETHUSDT")
	if cfg.Symbol == "" {
		errs = append(errs, "SYMBOL must be set")
	}
	cfg.CoarseInterval = getEnv("COARSE_INTERVAL", "5m")
	cfg.FineInterval = getEnv("FINE_INTERVAL", "1m")
	cfg.CoarseDataPath = getEnv("COARSE_DATA_PATH", "")
	cfg.FineDataPath = getEnv("FINE_DATA_PATH", "")

	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", true)

	cfg.OpeningRangeBarCount = getEnvAsInt("OPENING_RANGE_BAR_COUNT", 1)
	if cfg.OpeningRangeBarCount <= 0 {
		errs = append(errs, "OPENING_RANGE_BAR_COUNT must be positive")
	}

	cfg.BreakoutOpenTolerancePct = getEnvAsFloat("BREAKOUT_OPEN_TOLERANCE_PCT", 0.0025)
	if cfg.BreakoutOpenTolerancePct < 0 {
		errs = append(errs, "BREAKOUT_OPEN_TOLERANCE_PCT cannot be negative")
	}
	cfg.BreakoutCloseToleranceAbs = getEnvAsFloat("BREAKOUT_CLOSE_TOLERANCE_ABS", 0.01)
	if cfg.BreakoutCloseToleranceAbs < 0 {
		errs = append(errs, "BREAKOUT_CLOSE_TOLERANCE_ABS cannot be negative")
	}
	cfg.BreakoutVolumeMinRatio = getEnvAsFloat("BREAKOUT_VOLUME_MIN_RATIO", 1.0)
	if cfg.BreakoutVolumeMinRatio < 0 {
		errs = append(errs, "BREAKOUT_VOLUME_MIN_RATIO cannot be negative")
	}

	cfg.RetestPierceAMax = getEnvAsFloat("RETEST_PIERCE_A_MAX", 0.10)
	cfg.RetestPierceBMax = getEnvAsFloat("RETEST_PIERCE_B_MAX", 0.30)
	if cfg.RetestPierceAMax > cfg.RetestPierceBMax {
		errs = append(errs, "RETEST_PIERCE_A_MAX must not exceed RETEST_PIERCE_B_MAX")
	}
	cfg.RetestVolumeAMaxRatio = getEnvAsFloat("RETEST_VOLUME_A_MAX_RATIO", 0.30)
	cfg.RetestVolumeBMaxRatio = getEnvAsFloat("RETEST_VOLUME_B_MAX_RATIO", 0.60)
	if cfg.RetestVolumeAMaxRatio > cfg.RetestVolumeBMaxRatio {
		errs = append(errs, "RETEST_VOLUME_A_MAX_RATIO must not exceed RETEST_VOLUME_B_MAX_RATIO")
	}
	cfg.RetestCloseEpsilonTicks = getEnvAsFloat("RETEST_CLOSE_EPSILON_TICKS", 1)
	if cfg.RetestCloseEpsilonTicks < 0 {
		errs = append(errs, "RETEST_CLOSE_EPSILON_TICKS cannot be negative")
	}
	cfg.RetestVWAPBandPct = getEnvAsFloat("RETEST_VWAP_BAND_PCT", 0.001)
	if cfg.RetestVWAPBandPct < 0 {
		errs = append(errs, "RETEST_VWAP_BAND_PCT cannot be negative")
	}

	cfg.IgnitionVolumeRetestMult = getEnvAsFloat("IGNITION_VOLUME_RETEST_MULT", 1.5)
	cfg.IgnitionVolumeSessionMult = getEnvAsFloat("IGNITION_VOLUME_SESSION_MULT", 1.3)

	cfg.VolumeMAPeriod = getEnvAsInt("VOLUME_MA_PERIOD", 20)
	if cfg.VolumeMAPeriod <= 0 {
		errs = append(errs, "VOLUME_MA_PERIOD must be positive")
	}
	cfg.TickSize = getEnvAsFloat("TICK_SIZE", 0.01)
	if cfg.TickSize <= 0 {
		errs = append(errs, "TICK_SIZE must be positive")
	}

	cfg.Capital = getEnvAsFloat("CAPITAL", 10000.0)
	if cfg.Capital <= 0 {
		errs = append(errs, "CAPITAL must be positive")
	}
	cfg.RiskFractionPerTrade = getEnvAsFloat("RISK_FRACTION_PER_TRADE", 0.01)
	if cfg.RiskFractionPerTrade <= 0 || cfg.RiskFractionPerTrade >= 1.0 {
		errs = append(errs, "RISK_FRACTION_PER_TRADE must be between 0.0 and 1.0 (exclusive)")
	}
	cfg.Leverage = getEnvAsFloat("LEVERAGE", 1.0)
	if cfg.Leverage <= 0 {
		errs = append(errs, "LEVERAGE must be positive")
	}
	cfg.MinRewardRiskRatio = getEnvAsFloat("MIN_REWARD_RISK_RATIO", 2.0)
	if cfg.MinRewardRiskRatio <= 0 {
		errs = append(errs, "MIN_REWARD_RISK_RATIO must be positive")
	}
	cfg.StopBufferAbs = getEnvAsFloat("STOP_BUFFER_ABS", 0.05)
	if cfg.StopBufferAbs < 0 {
		errs = append(errs, "STOP_BUFFER_ABS cannot be negative")
	}

	// Per-grade reward:risk overrides; unset grades fall back to the minimum ratio.
	cfg.RewardRiskByGrade = map[domain.Grade]float64{}
	for grade, key := range map[domain.Grade]string{
		domain.GradeAPlus: "RR_OVERRIDE_APLUS",
		domain.GradeA:     "RR_OVERRIDE_A",
		domain.GradeB:     "RR_OVERRIDE_B",
		domain.GradeC:     "RR_OVERRIDE_C",
	} {
		if v := getEnvAsFloat(key, 0); v > 0 {
			cfg.RewardRiskByGrade[grade] = v
		}
	}

	levelStr := getEnv("PIPELINE_LEVEL", string(LevelCandidatesOnly))
	level, err := ParsePipelineLevel(levelStr)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid PIPELINE_LEVEL: %v", err))
	}
	cfg.PipelineLevel = level

	minGrade, err := domain.ParseGrade(getEnv("MIN_STAGE_GRADE", "C"))
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_STAGE_GRADE: %v", err))
	} else if minGrade == domain.GradeNone {
		errs = append(errs, "MIN_STAGE_GRADE must name a concrete grade")
	}
	cfg.MinStageGrade = minGrade

	cfg.DBPath = getEnv("DB_PATH", "./data/break_and_retest.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	cfg.LogLevel = logger.ParseLevel(getEnv("LOG_LEVEL", "INFO"))

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// RewardRiskFor returns the reward:risk ratio for a setup grade, falling back
// to the configured minimum when no override exists for that grade.
func (c *Config) RewardRiskFor(grade domain.Grade) float64 {
	if rr, ok := c.RewardRiskByGrade[grade]; ok {
		return rr
	}
	return c.MinRewardRiskRatio
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
