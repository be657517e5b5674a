package lookup

import (
	"context"
	"sort"

	"github.com/cloudwego/eino/components/embedding"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/nlu"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

const (
	customerSemanticK = 3
	hospitalScanLimit = 50
	hospitalKeep      = 10

	viaExact    = "exact"
	viaSemantic = "semantic"
)

var tracer = otel.Tracer("cso/lookup")

// Service bundles the three lookup adapters.
type Service struct {
	records   RecordStore
	documents DocumentStore
	embedder  embedding.Embedder
	keys      *KeyDetector
	cfg       model.StoreConfig
}

func NewService(records RecordStore, documents DocumentStore, embedder embedding.Embedder, cfg model.StoreConfig) *Service {
	return &Service{
		records:   records,
		documents: documents,
		embedder:  embedder,
		keys:      NewKeyDetector(records),
		cfg:       cfg,
	}
}

// PolicyKey exposes the detected customer policy-number key.
func (s *Service) PolicyKey(ctx context.Context) string {
	return s.keys.PolicyKey(ctx, s.cfg.CustomerCollection)
}

// LookupCustomerRecord tries each policy-number variant as an exact filter, then falls
// back to a nearest-neighbor query on the compacted token.
func (s *Service) LookupCustomerRecord(ctx context.Context, raw string) CustomerResult {
	ctx, span := tracer.Start(ctx, "lookup.customer")
	defer span.End()

	key := s.PolicyKey(ctx)
	tried := nlu.PolicyNumberVariants(raw)
	info := model.CustomerLookupInfo{KeyUsed: key, Tried: tried}
	failures := 0

	for _, v := range tried {
		hits, err := s.records.Scroll(ctx, s.cfg.CustomerCollection, []model.Filter{{Key: key, Value: v}}, 1)
		if err != nil {
			failures++
			logx.Warn().Err(err).Str("key", key).Str("variant", v).Msg("customer exact lookup failed")
			continue
		}
		if len(hits) > 0 && len(hits[0]) > 0 {
			info.Found, info.Via = true, viaExact
			span.SetAttributes(attribute.String("via", viaExact))
			return CustomerResult{Outcome: OutcomeOK, Record: hits[0], Info: info}
		}
	}

	if rec, err := s.semanticCustomer(ctx, raw); err != nil {
		failures++
		logx.Warn().Err(err).Str("policy_number", raw).Msg("customer semantic lookup failed")
	} else if rec != nil {
		info.Found, info.Via = true, viaSemantic
		span.SetAttributes(attribute.String("via", viaSemantic))
		return CustomerResult{Outcome: OutcomeOK, Record: rec, Info: info}
	}

	if failures == len(tried)+1 {
		return CustomerResult{Outcome: OutcomeFailed, Info: info}
	}
	return CustomerResult{Outcome: OutcomeEmpty, Info: info}
}

func (s *Service) semanticCustomer(ctx context.Context, raw string) (model.Record, error) {
	token := nlu.Compact(raw)
	if token == "" || s.embedder == nil {
		return nil, nil
	}
	vec, err := s.embed(ctx, token)
	if err != nil {
		return nil, err
	}
	hits, err := s.records.Search(ctx, s.cfg.CustomerCollection, vec, customerSemanticK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 || len(hits[0]) == 0 {
		return nil, nil
	}
	return hits[0], nil
}

// LookupPartnerHospitals filters by city and, unless mode is all, by the cashless flag.
// At most ten records with a resolvable name are returned.
func (s *Service) LookupPartnerHospitals(ctx context.Context, city string, mode model.RSMode) HospitalResult {
	ctx, span := tracer.Start(ctx, "lookup.hospitals")
	defer span.End()

	filters := []model.Filter{{Key: "kota", Value: city}}
	switch mode {
	case model.RSModeCashless:
		filters = append(filters, model.Filter{Key: "cashless", Value: "Ya"})
	case model.RSModeNonCashless:
		filters = append(filters, model.Filter{Key: "cashless", Value: "Tidak"})
	}

	hits, err := s.records.Scroll(ctx, s.cfg.HospitalCollection, filters, hospitalScanLimit)
	if err != nil {
		logx.Warn().Err(err).Str("city", city).Str("rs_mode", string(mode)).Msg("partner hospital lookup failed")
		return HospitalResult{Outcome: OutcomeFailed}
	}

	kept := make([]model.Record, 0, hospitalKeep)
	for _, h := range hits {
		if HospitalName(h) == "" {
			continue
		}
		kept = append(kept, h)
		if len(kept) == hospitalKeep {
			break
		}
	}
	span.SetAttributes(attribute.Int("hits", len(kept)))
	if len(kept) == 0 {
		return HospitalResult{Outcome: OutcomeEmpty}
	}
	return HospitalResult{Outcome: OutcomeOK, Records: kept}
}

// HospitalName returns the first non-blank name alias of a hospital record.
func HospitalName(r model.Record) string {
	for _, k := range nlu.HospitalNameKeys {
		if v := nlu.Normalize(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// RetrieveDocumentEvidence returns up to k policy-document chunks nearest to query.
func (s *Service) RetrieveDocumentEvidence(ctx context.Context, query string, k int) EvidenceResult {
	ctx, span := tracer.Start(ctx, "lookup.evidence")
	defer span.End()

	if s.embedder == nil || s.documents == nil {
		return EvidenceResult{Outcome: OutcomeEmpty}
	}
	vec, err := s.embed(ctx, query)
	if err != nil {
		logx.Warn().Err(err).Msg("evidence query embedding failed")
		return EvidenceResult{Outcome: OutcomeFailed}
	}
	chunks, err := s.documents.Search(ctx, vec, k)
	if err != nil {
		logx.Warn().Err(err).Int("k", k).Msg("evidence retrieval failed")
		return EvidenceResult{Outcome: OutcomeFailed}
	}
	span.SetAttributes(attribute.Int("hits", len(chunks)))
	if len(chunks) == 0 {
		return EvidenceResult{Outcome: OutcomeEmpty}
	}
	return EvidenceResult{Outcome: OutcomeOK, Chunks: chunks}
}

func (s *Service) embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := s.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, errEmptyEmbedding
	}
	return vecs[0], nil
}

func sortedKeys(keys []string) []string {
	sort.Strings(keys)
	return keys
}
