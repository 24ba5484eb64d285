package request

// CreatePlanRequest is the body for creating a recurring plan.
type CreatePlanRequest struct {
	SchemeCode       string  `json:"schemeCode"`
	TargetSchemeCode string  `json:"targetSchemeCode,omitempty"`
	Type             string  `json:"type"`
	Amount           float64 `json:"amount"`
	Frequency        string  `json:"frequency"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate,omitempty"`
	Installments     *int    `json:"installments,omitempty"`
}
