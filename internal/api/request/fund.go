package request

// AddFundRequest is the body for registering a fund scheme. Name, fund
// house and category default to the NAV provider's metadata when omitted.
type AddFundRequest struct {
	SchemeCode string `json:"schemeCode"`
	Name       string `json:"name,omitempty"`
	FundHouse  string `json:"fundHouse,omitempty"`
	Category   string `json:"category,omitempty"`
}

// SetNavTokenRequest is the body for storing the NAV provider API token.
type SetNavTokenRequest struct {
	Token string `json:"token"`
}
