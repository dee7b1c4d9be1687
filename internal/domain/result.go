package domain

import "time"

// Outcome is the terminal state of a simulated trade.
type Outcome string

const (
	OutcomeWin         Outcome = "win"
	OutcomeLoss        Outcome = "loss"
	OutcomeForcedClose Outcome = "forced-close" // Session ended before stop or target was reached
)

// TradeResult is the terminal record of one executed TradePlan. Exactly one
// exists per executed plan; no further mutation.
type TradeResult struct {
	ID        int64 // Assigned by the repository on persist
	Symbol    string
	Session   string
	Direction Direction
	Outcome   Outcome
	Entry     float64
	ExitPrice float64
	ExitTime  time.Time
	EntryTime time.Time
	Shares    int
	PNL       float64
	Grade     Grade
}
