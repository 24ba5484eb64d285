package model

// Fund represents a mutual fund scheme from the database
type Fund struct {
	SchemeCode string `json:"schemeCode"`
	Name       string `json:"name"`
	FundHouse  string `json:"fundHouse"`
	Category   string `json:"category"`
}

// NavPrice is the published net asset value of a scheme on a calendar day.
type NavPrice struct {
	ID         string  `json:"id"`
	SchemeCode string  `json:"schemeCode"`
	Date       string  `json:"date"`
	Nav        float64 `json:"nav"`
}
