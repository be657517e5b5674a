package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/graph/nodes"
	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
)

type fakeLookups struct {
	customer  model.Record
	hospitals []model.Record
	chunks    []model.EvidenceChunk

	customerCalls int
	hospitalCity  string
	hospitalMode  model.RSMode
	queries       []string
	ks            []int
}

func (f *fakeLookups) LookupCustomerRecord(_ context.Context, raw string) lookup.CustomerResult {
	f.customerCalls++
	info := model.CustomerLookupInfo{KeyUsed: "no_polis", Tried: []string{raw}}
	if f.customer == nil {
		return lookup.CustomerResult{Outcome: lookup.OutcomeEmpty, Info: info}
	}
	info.Found, info.Via = true, "exact"
	return lookup.CustomerResult{Outcome: lookup.OutcomeOK, Record: f.customer, Info: info}
}

func (f *fakeLookups) LookupPartnerHospitals(_ context.Context, city string, mode model.RSMode) lookup.HospitalResult {
	f.hospitalCity, f.hospitalMode = city, mode
	if len(f.hospitals) == 0 {
		return lookup.HospitalResult{Outcome: lookup.OutcomeEmpty}
	}
	return lookup.HospitalResult{Outcome: lookup.OutcomeOK, Records: f.hospitals}
}

func (f *fakeLookups) RetrieveDocumentEvidence(_ context.Context, query string, k int) lookup.EvidenceResult {
	f.queries = append(f.queries, query)
	f.ks = append(f.ks, k)
	if len(f.chunks) == 0 {
		return lookup.EvidenceResult{Outcome: lookup.OutcomeEmpty}
	}
	return lookup.EvidenceResult{Outcome: lookup.OutcomeOK, Chunks: f.chunks}
}

func build(t *testing.T, l *fakeLookups) Runner {
	t.Helper()
	r, err := BuildGraph(context.Background(), &Config{Lookups: l, TopicLimit: 10})
	require.NoError(t, err)
	return r
}

func TestBuildGraph_RequiresLookups(t *testing.T) {
	_, err := BuildGraph(context.Background(), &Config{})
	assert.Error(t, err)
	_, err = BuildGraph(context.Background(), nil)
	assert.Error(t, err)
}

func TestGraph_StatusWithoutPolicyNumberAsksForIt(t *testing.T) {
	l := &fakeLookups{}
	r := build(t, l)
	mem := model.NewSessionMemory("s1")

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "apakah polis saya masih aktif?", Memory: mem})
	require.NoError(t, err)

	assert.Equal(t, model.IntentPolicyStatus, out.Intent)
	assert.Equal(t, model.StatusNeedInput, out.Decision.Status)
	assert.Equal(t, []model.SlotName{model.SlotPolicyNumber}, out.MissingFields)
	assert.Equal(t, []string{nodes.NodeSupervisor, nodes.NodeRequirements, nodes.NodeDecision, nodes.NodeCompose}, out.Route)
	assert.Contains(t, out.Answer, "nomor polis")
	assert.Zero(t, l.customerCalls)
	assert.Equal(t, model.SlotPolicyNumber, mem.PendingSlot)
	assert.Empty(t, mem.Topics)
}

func TestGraph_PendingPolicyNumberContinuesStatus(t *testing.T) {
	l := &fakeLookups{customer: model.Record{"no_polis": "PLS-2024-0001", "status_polis": "Aktif"}}
	r := build(t, l)
	mem := model.NewSessionMemory("s1")
	ctx := context.Background()

	_, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "apakah polis saya masih aktif?", Memory: mem})
	require.NoError(t, err)

	out, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "PLS-2024-0001", Memory: mem})
	require.NoError(t, err)

	assert.Equal(t, model.IntentPolicyStatus, out.Intent)
	assert.Equal(t, model.StatusFound, out.Decision.Status)
	assert.Equal(t, "Aktif", out.Decision.PolicyStatus)
	assert.True(t, out.CustomerFound)
	assert.Equal(t, "exact", out.Lookup.Via)
	assert.Equal(t, []string{nodes.NodeSupervisor, nodes.NodeRequirements, nodes.NodeNasabah, nodes.NodeDecision, nodes.NodeCompose}, out.Route)
	assert.Empty(t, mem.PendingSlot)
	assert.Equal(t, "no_polis", mem.CustomerPolicyKey)
	assert.Equal(t, []string{"Status polis"}, mem.Topics)
}

func TestGraph_HospitalSearchUsesCityAndMode(t *testing.T) {
	l := &fakeLookups{hospitals: []model.Record{
		{"nama_rs": "RS Santo Borromeus", "kota": "Bandung", "cashless": "Ya"},
		{"nama_rs": "RS Advent", "kota": "Bandung", "cashless": "Ya"},
	}}
	r := build(t, l)
	mem := model.NewSessionMemory("s1")

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "rumah sakit rekanan cashless di bandung", Memory: mem})
	require.NoError(t, err)

	assert.Equal(t, model.IntentRSSearch, out.Intent)
	assert.Equal(t, model.StatusFound, out.Decision.Status)
	assert.Equal(t, "Bandung", l.hospitalCity)
	assert.Equal(t, model.RSModeCashless, l.hospitalMode)
	assert.Len(t, out.Decision.Hospitals, 2)
	assert.Contains(t, out.Answer, "RS Santo Borromeus")
	assert.Equal(t, model.RSModeCashless, mem.LastRSMode)
	assert.Contains(t, out.Route, nodes.NodeRS)
}

func TestGraph_PendingCityContinuesHospitalSearch(t *testing.T) {
	l := &fakeLookups{hospitals: []model.Record{{"nama_rs": "RS Siloam", "kota": "Medan", "cashless": "Tidak"}}}
	r := build(t, l)
	mem := model.NewSessionMemory("s1")
	ctx := context.Background()

	first, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "cari rs rekanan dong", Memory: mem})
	require.NoError(t, err)
	assert.Equal(t, model.StatusNeedInput, first.Decision.Status)
	assert.Equal(t, model.SlotCity, mem.PendingSlot)

	out, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "medan", Memory: mem})
	require.NoError(t, err)
	assert.Equal(t, model.IntentRSSearch, out.Intent)
	assert.Equal(t, "Medan", l.hospitalCity)
	assert.Equal(t, model.StatusFound, out.Decision.Status)
}

func TestGraph_ClaimQuotesBestChunk(t *testing.T) {
	l := &fakeLookups{chunks: []model.EvidenceChunk{
		{Text: "BAB IV LIMIT DAN PLAN Gold Limit Tahunan Rp 500.000.000", Source: "polis.pdf", Page: "12"},
		{Text: "Prosedur klaim reimbursement: lampirkan formulir klaim, kwitansi asli dan resume medis.", Source: "polis.pdf", Page: "20"},
	}}
	r := build(t, l)

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "syarat klaim apa aja?", Memory: model.NewSessionMemory("s1")})
	require.NoError(t, err)

	assert.Equal(t, model.IntentClaimRequirements, out.Intent)
	assert.Equal(t, model.StatusFound, out.Decision.Status)
	assert.Equal(t, "20", out.Decision.Page)
	require.Len(t, l.queries, 1)
	assert.Contains(t, l.queries[0], "prosedur klaim")
}

func TestGraph_UnknownIntentSkipsLookups(t *testing.T) {
	l := &fakeLookups{}
	r := build(t, l)

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "halo selamat pagi", Memory: model.NewSessionMemory("s1")})
	require.NoError(t, err)

	assert.Equal(t, model.IntentUnknown, out.Intent)
	assert.Equal(t, model.StatusUnknown, out.Decision.Status)
	assert.NotEmpty(t, out.Answer)
	assert.Zero(t, l.customerCalls)
	assert.Empty(t, l.queries)
}

func TestGraph_NilMemoryStartsFresh(t *testing.T) {
	r := build(t, &fakeLookups{})
	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s2", Utterance: "limit plan gold berapa?"})
	require.NoError(t, err)
	assert.Equal(t, model.IntentLimitPlan, out.Intent)
	assert.Equal(t, model.StatusNotFound, out.Decision.Status)
}

func TestGraph_LimitQueriesAgainWhenPreselectWeak(t *testing.T) {
	l := &fakeLookups{chunks: []model.EvidenceChunk{{Text: "halo", Source: "polis.pdf", Page: "1"}}}
	r := build(t, l)

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "limit plan gold berapa?", Memory: model.NewSessionMemory("s1")})
	require.NoError(t, err)

	assert.Equal(t, model.IntentLimitPlan, out.Intent)
	assert.Equal(t, []string{
		"BAB IV LIMIT DAN PLAN Gold Limit Tahunan Rawat Inap ICU Rawat Jalan Rp",
		"LIMIT DAN PLAN Gold Limit Tahunan Rp Rawat",
	}, l.queries)
	assert.Equal(t, []int{35, 40}, l.ks)
}

func TestGraph_LimitSingleQueryWhenPreselectStrong(t *testing.T) {
	l := &fakeLookups{chunks: []model.EvidenceChunk{
		{Text: "BAB IV LIMIT DAN PLAN Gold Limit Tahunan Rawat Inap ICU Rp 500.000.000", Source: "polis.pdf", Page: "12"},
	}}
	r := build(t, l)

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "limit plan gold berapa?", Memory: model.NewSessionMemory("s1")})
	require.NoError(t, err)

	assert.Equal(t, model.IntentLimitPlan, out.Intent)
	require.Len(t, l.queries, 1)
	assert.Contains(t, l.queries[0], "BAB IV LIMIT DAN PLAN Gold")
	assert.Equal(t, []int{35}, l.ks)
}

func TestGraph_BenefitQueryNamesPlan(t *testing.T) {
	l := &fakeLookups{}
	r := build(t, l)

	out, err := r.Invoke(context.Background(), model.TurnInput{SessionID: "s1", Utterance: "manfaat plan gold apa aja", Memory: model.NewSessionMemory("s1")})
	require.NoError(t, err)

	assert.Equal(t, model.IntentPlanBenefit, out.Intent)
	assert.Equal(t, []string{"manfaat Gold plan Gold rawat inap rawat jalan icu manfaat tambahan"}, l.queries)
	assert.Equal(t, []int{40}, l.ks)
}

func TestGraph_BenefitUsesTierNamedThisTurn(t *testing.T) {
	l := &fakeLookups{}
	r := build(t, l)
	mem := model.NewSessionMemory("s1")
	ctx := context.Background()

	_, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "manfaat plan gold apa aja", Memory: mem})
	require.NoError(t, err)
	out, err := r.Invoke(ctx, model.TurnInput{SessionID: "s1", Utterance: "kalau manfaat plan silver?", Memory: mem})
	require.NoError(t, err)

	assert.Equal(t, model.IntentPlanBenefit, out.Intent)
	assert.Equal(t, model.PlanSilver, out.Slots.PlanTier)
	require.Len(t, l.queries, 2)
	assert.Contains(t, l.queries[1], "manfaat Silver plan Silver")
}
