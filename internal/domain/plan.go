package domain

// TradePlan is the executable plan derived deterministically from a TradeSetup
// and a risk configuration. Never mutated after creation.
type TradePlan struct {
	Direction     Direction
	Entry         float64
	Stop          float64
	Target        float64
	Shares        int
	StopDistance  float64
	RewardRisk    float64
	RiskPlanned   float64 // Configured capital-at-risk budget
	RiskEffective float64 // Shares * stop distance after buying-power capping
	PositionValue float64
}
