package decision

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

func fixedSynth() *Synthesizer {
	return &Synthesizer{Now: func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }}
}

func TestSynthesize_NeedInput(t *testing.T) {
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent:        model.IntentPolicyStatus,
		MissingFields: []model.SlotName{model.SlotPolicyNumber},
	})
	assert.Equal(t, model.StatusNeedInput, d.Status)
	assert.Equal(t, []model.SlotName{model.SlotPolicyNumber}, d.Need)
}

func TestSynthesize_NeedChoice(t *testing.T) {
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent: model.IntentProvidePolicyNumber,
		Slots:  model.Slots{PolicyNumber: "POL-002-2024"},
	})
	assert.Equal(t, model.StatusNeedChoice, d.Status)
	assert.Equal(t, "POL-002-2024", d.PolicyNumber)
}

func TestSynthesize_PolicyStatus(t *testing.T) {
	tests := []struct {
		name     string
		customer model.Record
		status   model.Status
		text     string
	}{
		{"not found", nil, model.StatusNotFound, ""},
		{"explicit field", model.Record{"no_polis": "P1", "status_polis": "Aktif"}, model.StatusFound, "Aktif"},
		{"expiry in future", model.Record{"no_polis": "P1", "tanggal_akhir": "31/12/2025"}, model.StatusFound, "Aktif (berdasarkan tanggal akhir 2025-12-31)"},
		{"expires today", model.Record{"no_polis": "P1", "end_date": "2025-06-15"}, model.StatusFound, "Aktif (berdasarkan tanggal akhir 2025-06-15)"},
		{"expired", model.Record{"no_polis": "P1", "expiry_date": "2024-01-01"}, model.StatusFound, "Tidak aktif (berdasarkan tanggal akhir 2024-01-01)"},
		{"unparseable expiry", model.Record{"no_polis": "P1", "tanggal_akhir": "segera"}, model.StatusMissingField, ""},
		{"nothing", model.Record{"no_polis": "P1", "kota": "Medan"}, model.StatusMissingField, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := fixedSynth().Synthesize(&model.TurnState{
				Intent:   model.IntentPolicyStatus,
				Slots:    model.Slots{PolicyNumber: "P1"},
				Customer: tt.customer,
			})
			assert.Equal(t, tt.status, d.Status)
			assert.Equal(t, tt.text, d.PolicyStatus)
			assert.Equal(t, "P1", d.PolicyNumber)
		})
	}
}

func TestSynthesize_PlanLookup(t *testing.T) {
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentPolicyPlanLookup,
		Customer: model.Record{"nomor_polis": "P1", "jenis_plan": "Gold"},
	})
	assert.Equal(t, model.StatusFound, d.Status)
	assert.Equal(t, "Gold", d.Plan)

	d = fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentPolicyPlanLookup,
		Customer: model.Record{"nomor_polis": "P1", "jenis_plan": ""},
	})
	assert.Equal(t, model.StatusMissingField, d.Status)
}

func TestSynthesize_Cashless(t *testing.T) {
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentCashlessPolicy,
		Customer: model.Record{"no_polis": "P1", "metode_klaim": "Cashless & Reimburse"},
	})
	require.Equal(t, model.StatusFound, d.Status)
	require.NotNil(t, d.CanCashless)
	assert.True(t, *d.CanCashless)
	assert.Equal(t, "Cashless & Reimburse", d.ClaimMethod)

	d = fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentCashlessPolicy,
		Customer: model.Record{"no_polis": "P1", "metode_klaim": "Reimburse"},
	})
	require.NotNil(t, d.CanCashless)
	assert.False(t, *d.CanCashless)
}

func TestCanCashlessAndYaTidak(t *testing.T) {
	assert.True(t, CanCashless("YA"))
	assert.True(t, CanCashless(true))
	assert.True(t, CanCashless(1))
	assert.False(t, CanCashless("tidak"))

	assert.Equal(t, "Ya", YaTidak("y"))
	assert.Equal(t, "Ya", YaTidak(true))
	assert.Equal(t, "Tidak", YaTidak("No"))
	assert.Equal(t, "Tidak", YaTidak(0))
	assert.Equal(t, "-", YaTidak(nil))
	assert.Equal(t, "-", YaTidak("mungkin"))
}

func TestSynthesize_Hospitals(t *testing.T) {
	var rows []model.Record
	for i := 0; i < 7; i++ {
		rows = append(rows, model.Record{"nama_rs": "RS Hermina", "cashless": "Ya"})
	}
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent:    model.IntentRSSearch,
		Slots:     model.Slots{City: "Bandung", RSMode: model.RSModeCashless},
		Hospitals: rows,
	})
	assert.Equal(t, model.StatusFound, d.Status)
	assert.Len(t, d.Hospitals, 5)
	assert.Equal(t, model.HospitalItem{Name: "RS Hermina", Cashless: "Ya"}, d.Hospitals[0])
	assert.Equal(t, "Bandung", d.City)
	assert.Equal(t, model.RSModeCashless, d.RSMode)

	d = fixedSynth().Synthesize(&model.TurnState{Intent: model.IntentRSSearch, Slots: model.Slots{City: "Medan"}})
	assert.Equal(t, model.StatusNotFound, d.Status)
	assert.Equal(t, model.RSModeAll, d.RSMode)
}

func TestSynthesize_Evidence(t *testing.T) {
	long := strings.Repeat("kwitansi ", 200)
	d := fixedSynth().Synthesize(&model.TurnState{
		Intent: model.IntentClaimRequirements,
		Evidence: []model.EvidenceChunk{
			{Text: "BAB IV LIMIT DAN PLAN Gold", Source: "polis.pdf", Page: "12"},
			{Text: "Dokumen klaim " + long, Source: "polis.pdf", Page: "20"},
		},
	})
	require.Equal(t, model.StatusFound, d.Status)
	assert.Equal(t, "20", d.Page)
	assert.Equal(t, 900, len([]rune(d.Quote)))
	assert.Empty(t, d.Plan)

	d = fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentClaimRequirements,
		Evidence: []model.EvidenceChunk{{Text: "klaim", Page: "1"}},
	})
	assert.Equal(t, model.StatusNotFound, d.Status)

	d = fixedSynth().Synthesize(&model.TurnState{
		Intent:   model.IntentLimitPlan,
		Slots:    model.Slots{PlanTier: "Gold"},
		Evidence: []model.EvidenceChunk{{Text: "Gold Rp 100.000.000 limit tahunan", Page: "7", Source: "polis.pdf"}},
	})
	require.Equal(t, model.StatusFound, d.Status)
	assert.Equal(t, "Gold", d.Plan)
	assert.Equal(t, "7", d.Page)
}

func TestSynthesize_Unknown(t *testing.T) {
	d := fixedSynth().Synthesize(&model.TurnState{Intent: model.IntentUnknown})
	assert.Equal(t, model.StatusUnknown, d.Status)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "RS rekanan", Topic(model.IntentRSSearch))
	assert.Empty(t, Topic(model.IntentLimitPlan))
}
