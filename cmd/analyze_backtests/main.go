package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/logger"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/sqlite"
	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

const recentLimit = 50

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open results database: %v", err)
	}
	defer repo.Close()

	setupCount, err := repo.CountSetupsBySymbol(ctx, cfg.Symbol)
	if err != nil {
		log.Fatalf("Error counting setups: %v", err)
	}
	counts, err := repo.CountByOutcome(ctx)
	if err != nil {
		log.Fatalf("Error counting outcomes: %v", err)
	}
	totalPNL, err := repo.GetTotalPNL(ctx)
	if err != nil {
		log.Fatalf("Error summing PNL: %v", err)
	}

	wins := counts[domain.OutcomeWin]
	losses := counts[domain.OutcomeLoss]
	forced := counts[domain.OutcomeForcedClose]
	trades := wins + losses + forced

	fmt.Printf("=== Stored Backtests: %s ===\n", cfg.Symbol)
	fmt.Printf("Setups detected: %d\n", setupCount)
	fmt.Printf("Trades: %d  Wins: %d  Losses: %d  Forced closes: %d\n", trades, wins, losses, forced)
	if decided := wins + losses; decided > 0 {
		fmt.Printf("Win rate: %.1f%%\n", float64(wins)/float64(decided)*100)
	}
	fmt.Printf("Total PNL: %.2f\n\n", totalPNL)

	results, err := repo.FindResultsBySymbol(ctx, cfg.Symbol, recentLimit)
	if err != nil {
		log.Fatalf("Error loading recent results: %v", err)
	}
	if len(results) == 0 {
		fmt.Println("No trades stored. Run the backtest runner first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Session\tDir\tOutcome\tEntry\tExit\tShares\tPNL\tGrade\t")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%d\t%.2f\t%s\t\n",
			r.Session, r.Direction, r.Outcome, r.Entry, r.ExitPrice, r.Shares, r.PNL, r.Grade)
	}
	w.Flush()
}
