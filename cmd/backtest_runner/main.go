package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/logger"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/sqlite"
	"github.com/ascendro-ca/break-and-retest/internal/analytics"
	"github.com/ascendro-ca/break-and-retest/internal/domain"
	"github.com/ascendro-ca/break-and-retest/internal/marketdata"
	"github.com/ascendro-ca/break-and-retest/internal/pipeline"
	"github.com/ascendro-ca/break-and-retest/internal/utils"
)

const sessionWorkers = 4

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	if cfg.CoarseDataPath == "" || cfg.FineDataPath == "" {
		log.Fatalf("FATAL: COARSE_DATA_PATH and FINE_DATA_PATH must point to bar CSV files")
	}

	// 2. Load both granularities from CSV concurrently
	var coarse, fine []*domain.Bar
	var coarseErr, fineErr error
	var loadWg sync.WaitGroup
	loadWg.Add(2)
	go func() {
		defer loadWg.Done()
		coarse, coarseErr = utils.ReadBarsFromCSV(cfg.CoarseDataPath)
	}()
	go func() {
		defer loadWg.Done()
		fine, fineErr = utils.ReadBarsFromCSV(cfg.FineDataPath)
	}()
	loadWg.Wait()
	if coarseErr != nil {
		appLogger.Error(ctx, coarseErr, "Error loading coarse bars", map[string]interface{}{"path": cfg.CoarseDataPath})
		log.Fatalf("FATAL: %v", coarseErr)
	}
	if fineErr != nil {
		appLogger.Error(ctx, fineErr, "Error loading fine bars", map[string]interface{}{"path": cfg.FineDataPath})
		log.Fatalf("FATAL: %v", fineErr)
	}
	appLogger.Info(ctx, "Loaded bar history", map[string]interface{}{
		"coarse": len(coarse), "fine": len(fine), "symbol": cfg.Symbol,
	})

	// 3. Split into per-day sessions and pair the granularities by date
	sessions := pairSessions(ctx, appLogger, cfg, coarse, fine)
	if len(sessions) == 0 {
		log.Fatalf("FATAL: no sessions with both coarse and fine bars")
	}
	appLogger.Info(ctx, "Sessions prepared", map[string]interface{}{
		"count": len(sessions), "level": string(cfg.PipelineLevel),
	})

	// 4. Run sessions through the pipeline on a small worker pool
	orch := pipeline.New(cfg, appLogger)
	reports := make([]*pipeline.SessionReport, len(sessions))
	jobs := make(chan int)
	var runWg sync.WaitGroup
	for w := 0; w < sessionWorkers; w++ {
		runWg.Add(1)
		go func() {
			defer runWg.Done()
			for i := range jobs {
				report, err := orch.RunSession(ctx, sessions[i])
				if err != nil {
					appLogger.Error(ctx, err, "Session failed", map[string]interface{}{"date": sessions[i].Date})
					continue
				}
				reports[i] = report
			}
		}()
	}
	for i := range sessions {
		jobs <- i
	}
	close(jobs)
	runWg.Wait()

	completed := make([]*pipeline.SessionReport, 0, len(reports))
	for _, r := range reports {
		if r != nil {
			completed = append(completed, r)
		}
	}

	// 5. Summarize
	summary := analytics.Summarize(cfg.Symbol, completed)
	fmt.Print(summary.Format())

	// 6. Persist setups and results
	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		appLogger.Error(ctx, err, "FATAL: Failed to open results database")
		log.Fatalf("FATAL: %v", err)
	}
	defer repo.Close()

	var allResults []*domain.TradeResult
	for _, report := range completed {
		for _, setup := range report.Setups {
			if _, err := repo.CreateSetup(ctx, setup); err != nil {
				appLogger.Error(ctx, err, "Error storing setup", map[string]interface{}{"session": report.Date})
			}
		}
		for _, result := range report.Results {
			if _, err := repo.CreateResult(ctx, result); err != nil {
				appLogger.Error(ctx, err, "Error storing result", map[string]interface{}{"session": report.Date})
			}
			allResults = append(allResults, result)
		}
	}

	// 7. Export results for offline analysis
	resultsFile := fmt.Sprintf("data/backtest_results_%s_%s.csv", cfg.Symbol, cfg.PipelineLevel)
	if err := utils.WriteResultsToCSV(allResults, resultsFile); err != nil {
		appLogger.Error(ctx, err, "Error writing results CSV", map[string]interface{}{"filename": resultsFile})
	} else {
		appLogger.Info(ctx, "Results saved", map[string]interface{}{"filename": resultsFile, "count": len(allResults)})
	}
}

// pairSessions groups both bar histories by calendar date, enriches each
// granularity, and keeps only the dates present in both.
func pairSessions(ctx context.Context, appLogger *logger.StdLogger, cfg *config.Config, coarse, fine []*domain.Bar) []pipeline.SessionInput {
	fineByDate := make(map[string][]*domain.Bar)
	for _, s := range marketdata.SplitSessions(fine) {
		fineByDate[s.Date] = s.Bars
	}

	var sessions []pipeline.SessionInput
	for _, s := range marketdata.SplitSessions(coarse) {
		fineBars, ok := fineByDate[s.Date]
		if !ok {
			appLogger.Warn(ctx, "Skipping session without fine bars", map[string]interface{}{"date": s.Date})
			continue
		}
		sessions = append(sessions, pipeline.SessionInput{
			Symbol: cfg.Symbol,
			Date:   s.Date,
			Coarse: marketdata.Enrich(s.Bars, cfg.VolumeMAPeriod),
			Fine:   marketdata.Enrich(fineBars, cfg.VolumeMAPeriod),
		})
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date < sessions[j].Date })
	return sessions
}
