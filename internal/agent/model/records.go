package model

// Record is an external store payload. Field names are not controlled by this service,
// so access goes through nlu.FieldAlias rather than fixed struct fields.
type Record map[string]any

// Filter is an exact-match equality condition on a payload key.
type Filter struct {
	Key   string
	Value string
}

// EvidenceChunk is a retrieved passage of the policy document.
type EvidenceChunk struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Page   string `json:"page"`
}

// HospitalItem is a partner hospital as presented in a decision.
type HospitalItem struct {
	Name     string `json:"name"`
	Cashless string `json:"cashless"`
}
