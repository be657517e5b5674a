package model

// AppState stores per-invocation bookkeeping for the Eino Graph.
// Concurrency model:
//   - Registered as Graph Local State via compose.WithGenLocalState.
//   - Read/written only inside Eino state handlers or compose.ProcessState,
//     which serialize access, so no mutex is needed.
//   - Turn data itself flows along the edges as *TurnState.
type AppState struct {
	SessionID string
	Visited   []string // node keys in execution order
	Route     string   // node chosen by the requirements branch
}

// Seen reports whether node already ran in this invocation.
func (s *AppState) Seen(node string) bool {
	for _, v := range s.Visited {
		if v == node {
			return true
		}
	}
	return false
}

// TurnInput is the graph input for one user utterance.
type TurnInput struct {
	SessionID string         `json:"session_id"`
	Utterance string         `json:"utterance"`
	Memory    *SessionMemory `json:"-"`
}

// TurnState is owned by a single invocation and discarded afterwards. Anything that
// must outlive the turn is copied into Memory explicitly.
type TurnState struct {
	SessionID     string
	Utterance     string
	Memory        *SessionMemory
	Slots         Slots
	Intent        Intent
	MissingFields []SlotName

	Customer     Record
	CustomerHits CustomerLookupInfo
	Hospitals    []Record
	Evidence     []EvidenceChunk

	Decision *Decision
	Answer   string
}

// CustomerLookupInfo describes how a customer lookup was resolved.
type CustomerLookupInfo struct {
	Found   bool     `json:"found"`
	KeyUsed string   `json:"key_used"`
	Tried   []string `json:"tried"`
	Via     string   `json:"via,omitempty"` // exact | semantic
}

// TurnResult is the graph output rendered by the front end.
type TurnResult struct {
	SessionID     string             `json:"session_id"`
	Answer        string             `json:"answer"`
	Intent        Intent             `json:"intent"`
	MissingFields []SlotName         `json:"missing_fields"`
	Slots         Slots              `json:"slots"`
	CustomerFound bool               `json:"customer_found"`
	Decision      Decision           `json:"decision"`
	Lookup        CustomerLookupInfo `json:"lookup"`
	Route         []string           `json:"route,omitempty"`
}
