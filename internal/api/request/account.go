package request

// DepositRequest is the body for adding paper money to an account.
type DepositRequest struct {
	Amount float64 `json:"amount"`
}

// TradeRequest is the body for a lump-sum buy or sell.
type TradeRequest struct {
	SchemeCode string  `json:"schemeCode"`
	Amount     float64 `json:"amount"`
}
