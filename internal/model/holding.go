package model

// Holding is a user's aggregated position in one fund. TotalUnits and
// InvestedAmount are only ever updated through atomic delta statements
// (col = col + ?), never read-modify-write, so concurrent installments for
// the same user cannot race.
type Holding struct {
	UserID         string  `json:"userId"`
	SchemeCode     string  `json:"schemeCode"`
	TotalUnits     float64 `json:"totalUnits"`
	InvestedAmount float64 `json:"investedAmount"`
}
