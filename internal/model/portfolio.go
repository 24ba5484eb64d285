package model

// PositionSummary is one holding valued at the latest available NAV.
// All monetary values are rounded to two decimal places.
type PositionSummary struct {
	SchemeCode         string  `json:"schemeCode"`
	FundName           string  `json:"fundName"`
	TotalUnits         float64 `json:"totalUnits"`
	InvestedAmount     float64 `json:"investedAmount"`
	LatestNav          float64 `json:"latestNav"`
	NavDate            string  `json:"navDate"`
	CurrentValue       float64 `json:"currentValue"`
	UnrealizedGainLoss float64 `json:"unrealizedGainLoss"`
}

// PortfolioSummary is the current state of a user's paper portfolio.
type PortfolioSummary struct {
	UserID                  string            `json:"userId"`
	Balance                 float64           `json:"balance"`
	TotalInvested           float64           `json:"totalInvested"`
	TotalValue              float64           `json:"totalValue"`
	TotalUnrealizedGainLoss float64           `json:"totalUnrealizedGainLoss"`
	Positions               []PositionSummary `json:"positions"`
}
