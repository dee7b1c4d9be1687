package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ascendro-ca/break-and-retest/config"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/binanceclient"
	"github.com/ascendro-ca/break-and-retest/internal/adapters/logger"
	"github.com/ascendro-ca/break-and-retest/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}

	end := time.Now()
	start := end.AddDate(0, -3, 0) // 3 months of history

	// 4. Fetch both detection granularities
	for _, interval := range []string{cfg.CoarseInterval, cfg.FineInterval} {
		fmt.Printf("Fetching bars for %s %s from %s to %s...\n", cfg.Symbol, interval, start, end)
		bars, err := client.GetBarsRange(context.Background(), cfg.Symbol, interval, start, end)
		if err != nil {
			appLogger.Error(context.Background(), err, "Error fetching bars", map[string]interface{}{"interval": interval})
			log.Fatalf("Error fetching bars: %v", err)
		}
		appLogger.Info(context.Background(), "Fetched bars", map[string]interface{}{"interval": interval, "count": len(bars)})

		filename := fmt.Sprintf("data/%s_%s_%s_to_%s.csv", cfg.Symbol, interval, start.Format("20060102"), end.Format("20060102"))
		if err := utils.WriteBarsToCSV(bars, filename); err != nil {
			appLogger.Error(context.Background(), err, "Error writing CSV", map[string]interface{}{"filename": filename})
			log.Fatalf("Error writing CSV: %v", err)
		}
		appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
	}
}
