package model

// Decision is the structured, intent-tagged verdict of a turn. Which fields are set
// depends on (Intent, Status).
type Decision struct {
	Intent Intent `json:"intent"`
	Status Status `json:"status"`

	// NEED_INPUT
	Need []SlotName `json:"need,omitempty"`

	// provide_policy_number and customer-record intents
	PolicyNumber string `json:"policy_number,omitempty"`
	PolicyStatus string `json:"policy_status,omitempty"`
	Plan         string `json:"plan,omitempty"`
	ClaimMethod  string `json:"claim_method,omitempty"`
	CanCashless  *bool  `json:"can_cashless,omitempty"`

	// rs_search
	City      string         `json:"city,omitempty"`
	RSMode    RSMode         `json:"rs_mode,omitempty"`
	Hospitals []HospitalItem `json:"hospitals,omitempty"`

	// document intents
	Source string `json:"source,omitempty"`
	Page   string `json:"page,omitempty"`
	Quote  string `json:"quote,omitempty"`
}
