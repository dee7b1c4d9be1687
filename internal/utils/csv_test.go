package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ascendro-ca/break-and-retest/internal/domain"
)

func TestBarsCSVRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	start := time.Date(2024, 3, 11, 9, 30, 0, 0, time.UTC)
	bars := []*domain.Bar{
		{
			OpenTime: start, CloseTime: start.Add(time.Minute),
			Symbol: "ETHUSDT", Interval: "1m",
			Open: 100.5, High: 101.25, Low: 100.1, Close: 101.0, Volume: 1234.5,
		},
		{
			OpenTime: start.Add(time.Minute), CloseTime: start.Add(2 * time.Minute),
			Symbol: "ETHUSDT", Interval: "1m",
			Open: 101.0, High: 101.5, Low: 100.9, Close: 101.4, Volume: 980,
		},
	}

	require.NoError(t, WriteBarsToCSV(bars, path))

	got, err := ReadBarsFromCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, bars[0].OpenTime, got[0].OpenTime)
	assert.Equal(t, "ETHUSDT", got[0].Symbol)
	assert.InDelta(t, 101.25, got[0].High, 1e-9)
	assert.InDelta(t, 980.0, got[1].Volume, 1e-9)
	// Derived indicator fields are not persisted.
	assert.Zero(t, got[0].VolMA)
	assert.Zero(t, got[0].VWAP)
}

func TestReadBarsFromCSV_BadRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	content := "open_time,close_time,symbol,interval,open,high,low,close,volume\n" +
		"2024-03-11T09:30:00Z,2024-03-11T09:31:00Z,ETHUSDT,1m,100,101,99,not-a-number,500\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := ReadBarsFromCSV(path)
	assert.ErrorContains(t, err, "row 2")
}

func TestReadBarsFromCSV_MissingFile(t *testing.T) {
	_, err := ReadBarsFromCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestWriteResultsToCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	results := []*domain.TradeResult{
		{
			Symbol: "ETHUSDT", Session: "2024-03-11",
			Direction: domain.Long, Outcome: domain.OutcomeWin,
			Entry: 100.80, ExitPrice: 101.54,
			EntryTime: time.Date(2024, 3, 11, 9, 41, 0, 0, time.UTC),
			ExitTime:  time.Date(2024, 3, 11, 9, 43, 0, 0, time.UTC),
			Shares:    99, PNL: 73.26, Grade: domain.GradeA,
		},
	}

	require.NoError(t, WriteResultsToCSV(results, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "win")
	assert.Contains(t, string(data), "2024-03-11")
	assert.Contains(t, string(data), ",A\n")
}
