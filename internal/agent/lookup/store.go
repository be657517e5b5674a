// Package lookup adapts the external stores to the dialogue engine. Every adapter
// returns an explicit Outcome; store errors are logged and downgraded, never raised.
package lookup

import (
	"context"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

// RecordStore is a keyed collection of loosely typed payloads (customers, partner hospitals).
type RecordStore interface {
	// Scroll returns up to limit records matching every filter exactly. No filters means any record.
	Scroll(ctx context.Context, collection string, filters []model.Filter, limit int) ([]model.Record, error)

	// Search returns up to k records nearest to vector.
	Search(ctx context.Context, collection string, vector []float64, k int) ([]model.Record, error)
}

// DocumentStore is the semantically searchable policy document.
type DocumentStore interface {
	Search(ctx context.Context, vector []float64, k int) ([]model.EvidenceChunk, error)
}

// Outcome tags an adapter result.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// CustomerResult is the result of LookupCustomerRecord.
type CustomerResult struct {
	Outcome Outcome
	Record  model.Record
	Info    model.CustomerLookupInfo
}

// HospitalResult is the result of LookupPartnerHospitals.
type HospitalResult struct {
	Outcome Outcome
	Records []model.Record
}

// EvidenceResult is the result of RetrieveDocumentEvidence.
type EvidenceResult struct {
	Outcome Outcome
	Chunks  []model.EvidenceChunk
}
