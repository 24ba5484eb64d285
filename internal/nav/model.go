package nav

// Response is the raw payload returned by the NAV API for a single scheme.
// NAV values arrive as strings and dates use the provider's DD-MM-YYYY
// format; ParseLatest converts both to internal representations.
type Response struct {
	Meta   Meta        `json:"meta"`
	Data   []DataPoint `json:"data"`
	Status string      `json:"status"`
}

// Meta describes the scheme the response belongs to.
type Meta struct {
	FundHouse      string `json:"fund_house"`
	SchemeType     string `json:"scheme_type"`
	SchemeCategory string `json:"scheme_category"`
	SchemeCode     int    `json:"scheme_code"`
	SchemeName     string `json:"scheme_name"`
}

// DataPoint is one published NAV observation.
type DataPoint struct {
	Date string `json:"date"`
	Nav  string `json:"nav"`
}

// Quote is a parsed NAV observation with the date normalized to the
// canonical "YYYY-MM-DD" form.
type Quote struct {
	SchemeCode string
	SchemeName string
	FundHouse  string
	Category   string
	Date       string
	Nav        float64
}
