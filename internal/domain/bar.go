package domain

import "time"

// Bar represents a single OHLCV bar with provider-precomputed rolling indicators.
// Bars are immutable once produced by the data provider.
type Bar struct {
	OpenTime  time.Time // Start time of the interval
	CloseTime time.Time // End time of the interval
	Symbol    string    // Trading symbol
	Interval  string    // Bar interval (e.g., "1m", "5m")
	Open      float64   // Opening price
	High      float64   // Highest price
	Low       float64   // Lowest price
	Close     float64   // Closing price
	Volume    float64   // Trading volume
	VolMA     float64   // Trailing volume moving average
	VWAP      float64   // Session volume-weighted average price
}

// Range returns the high-low span of the bar.
func (b *Bar) Range() float64 {
	return b.High - b.Low
}

// BodyFraction returns the candle body as a fraction of its range.
// Degenerate (zero-range) bars yield 0 rather than dividing by zero.
func (b *Bar) BodyFraction() float64 {
	rng := b.Range()
	if rng <= 0 {
		return 0
	}
	body := b.Close - b.Open
	if body < 0 {
		body = -body
	}
	return body / rng
}

// UpperWickFraction returns the upper wick as a fraction of the bar range.
func (b *Bar) UpperWickFraction() float64 {
	rng := b.Range()
	if rng <= 0 {
		return 0
	}
	top := b.Close
	if b.Open > b.Close {
		top = b.Open
	}
	return (b.High - top) / rng
}

// LowerWickFraction returns the lower wick as a fraction of the bar range.
func (b *Bar) LowerWickFraction() float64 {
	rng := b.Range()
	if rng <= 0 {
		return 0
	}
	bottom := b.Close
	if b.Open < b.Close {
		bottom = b.Open
	}
	return (bottom - b.Low) / rng
}

// IsBullish reports whether the bar closed above its open.
func (b *Bar) IsBullish() bool { return b.Close > b.Open }

// IsBearish reports whether the bar closed below its open.
func (b *Bar) IsBearish() bool { return b.Close < b.Open }
