package domain

// OpeningRange is the high/low band established by the first bar(s) of a
// trading session. Immutable for the session.
type OpeningRange struct {
	High float64
	Low  float64
	Bar  *Bar // First bar of the session (band reference)
}

// BreakoutEvent records a bar closing beyond the opening range with volume
// confirmation. Created once per direction scan, never mutated.
type BreakoutEvent struct {
	Direction Direction
	Level     float64 // Opening-range boundary that was broken
	Bar       *Bar
	Volume    float64 // Volume of the breakout bar
}

// RetestEvent records the first fine-granularity bar after the breakout that
// revisits the breakout level and holds. Only one per BreakoutEvent.
type RetestEvent struct {
	Bar          *Bar
	PierceDepth  float64 // Distance from level to wick extreme, as a fraction of bar range
	BodyFraction float64
	CloseHeld    bool    // Close on the correct side of the level (within tolerance)
	VolumeRatio  float64 // Retest volume relative to breakout volume
}

// IgnitionEvent records the bar immediately following an accepted retest.
type IgnitionEvent struct {
	Bar                  *Bar
	BrokeRetestExtreme   bool // Broke the retest extreme intrabar and closed beyond it
	BodyFraction         float64
	OppositeWickFraction float64 // Wick on the side opposite the trade direction
	VolumeVsRetest       float64 // Volume relative to the retest bar's volume
	VolumeVsSession      float64 // Volume relative to the trailing session average
}
