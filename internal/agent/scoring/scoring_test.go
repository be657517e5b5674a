package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

func TestScore_Claim(t *testing.T) {
	assert.Equal(t, 6, Score(model.IntentClaimRequirements, "Dokumen klaim: formulir dan lainnya", ""))
	// limit+plan penalty and section-header penalty stack
	assert.Equal(t, 2-4-6, Score(model.IntentClaimRequirements, "BAB IV LIMIT DAN PLAN klaim", ""))
	assert.Equal(t, 0, Score(model.IntentClaimRequirements, "pendahuluan", ""))
}

func TestScore_LimitAndBenefit(t *testing.T) {
	text := "Gold Limit Tahunan Rawat Inap Rp 100.000.000"
	assert.Equal(t, 4+2*4, Score(model.IntentLimitPlan, text, "Gold"))
	assert.Equal(t, 2*4, Score(model.IntentLimitPlan, text, "Silver"))

	assert.Equal(t, 3+2+2, Score(model.IntentPlanBenefit, "Manfaat Platinum rawat inap", "Platinum"))
	assert.Equal(t, 2-2, Score(model.IntentPlanBenefit, "LIMIT DAN PLAN rawat", ""))
}

func TestScore_LengthBonus(t *testing.T) {
	long := strings.Repeat("x", 301)
	assert.Equal(t, 1, Score(model.IntentUnknown, long, ""))
	assert.Equal(t, 0, Score(model.IntentUnknown, strings.Repeat("x", 300), ""))
}

func TestBest_ClaimBelowFloorIsNotCited(t *testing.T) {
	chunks := []model.EvidenceChunk{{Text: "klaim", Source: "polis.pdf", Page: "4"}}
	_, score, ok := Best(model.IntentClaimRequirements, chunks, "")
	assert.False(t, ok)
	assert.Equal(t, 2, score)
}

func TestBest_PicksHighestFirstOnTie(t *testing.T) {
	chunks := []model.EvidenceChunk{
		{Text: ""},
		{Text: "klaim dokumen", Page: "1"},
		{Text: "BAB IV LIMIT DAN PLAN klaim dokumen formulir", Page: "2"},
		{Text: "dokumen klaim", Page: "3"},
		{Text: "klaim dokumen formulir kwitansi", Page: "5"},
	}
	best, score, ok := Best(model.IntentClaimRequirements, chunks, "")
	require.True(t, ok)
	assert.Equal(t, "5", best.Page)
	assert.Equal(t, 8, score)

	best, _, ok = Best(model.IntentClaimRequirements, chunks[:4], "")
	require.True(t, ok)
	assert.Equal(t, "1", best.Page)
}

func TestBest_NoChunks(t *testing.T) {
	_, _, ok := Best(model.IntentLimitPlan, nil, "Gold")
	assert.False(t, ok)
}

func TestBest_PlanFloor(t *testing.T) {
	_, _, ok := Best(model.IntentPlanBenefit, []model.EvidenceChunk{{Text: "daftar isi"}}, "Gold")
	assert.False(t, ok)
	best, _, ok := Best(model.IntentPlanBenefit, []model.EvidenceChunk{{Text: "Gold", Page: "9"}}, "Gold")
	require.True(t, ok)
	assert.Equal(t, "9", best.Page)
}

func TestPreselectLimit(t *testing.T) {
	_, ok := PreselectLimit([]model.EvidenceChunk{{Text: "limit"}}, "Gold")
	assert.False(t, ok)

	best, ok := PreselectLimit([]model.EvidenceChunk{
		{Text: "limit", Page: "1"},
		{Text: "Gold limit", Page: "2"},
	}, "Gold")
	require.True(t, ok)
	assert.Equal(t, "2", best.Page)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab", Truncate("abc", 2))
	assert.Equal(t, "Rp é", Truncate("Rp éx", 4))
}
