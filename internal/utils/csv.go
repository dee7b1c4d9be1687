package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

var barHeader = []string{"open_time", "close_time", "symbol", "interval", "open", "high", "low", "close", "volume"}

// WriteBarsToCSV writes raw bars (no derived indicator columns) to a file.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write(barHeader)
	for _, b := range bars {
		writer.Write([]string{
			b.OpenTime.Format(time.RFC3339),
			b.CloseTime.Format(time.RFC3339),
			b.Symbol,
			b.Interval,
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV loads bars written by WriteBarsToCSV (or by the fetch
// command). Indicator fields come back zero; callers enrich before use.
func ReadBarsFromCSV(filename string) ([]*domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filename, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s is empty", filename)
	}

	bars := make([]*domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) != len(barHeader) {
			return nil, fmt.Errorf("%s row %d: expected %d columns, got %d", filename, i+2, len(barHeader), len(rec))
		}
		bar, err := parseBarRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", filename, i+2, err)
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseBarRecord(rec []string) (*domain.Bar, error) {
	openTime, err := time.Parse(time.RFC3339, rec[0])
	if err != nil {
		return nil, fmt.Errorf("open_time: %w", err)
	}
	closeTime, err := time.Parse(time.RFC3339, rec[1])
	if err != nil {
		return nil, fmt.Errorf("close_time: %w", err)
	}

	bar := &domain.Bar{
		OpenTime:  openTime,
		CloseTime: closeTime,
		Symbol:    rec[2],
		Interval:  rec[3],
	}
	for i, dst := range []*float64{&bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume} {
		v, err := strconv.ParseFloat(rec[4+i], 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", barHeader[4+i], err)
		}
		*dst = v
	}
	return bar, nil
}

// WriteResultsToCSV writes simulated trade results to a file.
func WriteResultsToCSV(results []*domain.TradeResult, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"symbol", "session", "direction", "outcome", "entry", "exit_price", "entry_time", "exit_time", "shares", "pnl", "grade"})
	for _, r := range results {
		writer.Write([]string{
			r.Symbol,
			r.Session,
			string(r.Direction),
			string(r.Outcome),
			strconv.FormatFloat(r.Entry, 'f', -1, 64),
			strconv.FormatFloat(r.ExitPrice, 'f', -1, 64),
			r.EntryTime.Format(time.RFC3339),
			r.ExitTime.Format(time.RFC3339),
			strconv.Itoa(r.Shares),
			strconv.FormatFloat(r.PNL, 'f', -1, 64),
			r.Grade.String(),
		})
	}
	return writer.Error()
}
