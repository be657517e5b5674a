package model

import (
	"fmt"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestSessionMemory_AddTopicBounded(t *testing.T) {
	m := NewSessionMemory("s1")
	for i := 0; i < 12; i++ {
		m.AddTopic(fmt.Sprintf("t%d", i), 10)
	}
	m.AddTopic("t11", 10)

	assert.Len(t, m.Topics, 10)
	assert.Equal(t, "t2", m.Topics[0])
	assert.Equal(t, "t11", m.Topics[9])
}

func TestSessionMemory_RememberEvictsOldest(t *testing.T) {
	m := NewSessionMemory("s1")
	for i := 0; i < 7; i++ {
		m.Remember(RoleUser, fmt.Sprintf("q%d", i), 2)
		m.Remember(RoleAssistant, fmt.Sprintf("a%d", i), 2)
	}
	assert.Len(t, m.Transcript, 4)
	assert.Equal(t, "q5", m.Transcript[0].Content)
	assert.Equal(t, "a6", m.Transcript[3].Content)
}

func TestSessionMemory_CloneIsDeep(t *testing.T) {
	m := NewSessionMemory("s1")
	m.AddTopic("Cashless", 10)
	c := m.Clone()
	c.AddTopic("RS rekanan", 10)
	c.Slots.City = "Bandung"

	assert.Len(t, m.Topics, 1)
	assert.Empty(t, m.Slots.City)
	assert.Equal(t, RSModeAll, c.LastRSMode)
}

func TestSlots_GetSet(t *testing.T) {
	var s Slots
	s.Set(SlotCity, "Medan")
	s.Set(SlotRSMode, "cashless")
	assert.True(t, s.Has(SlotCity))
	assert.False(t, s.Has(SlotPolicyNumber))
	assert.Equal(t, RSModeCashless, s.RSMode)
}

func TestIntentValid(t *testing.T) {
	assert.True(t, IntentLimitPlan.Valid())
	assert.False(t, Intent("greeting").Valid())
	assert.True(t, IntentCashlessPolicy.NeedsCustomerRecord())
	assert.True(t, IntentPlanBenefit.NeedsPolicyDocument())
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 500_000}, ResolvePricing("gemini-2.5-flash-lite"))
	assert.InDelta(t, 0.10, in, 1e-9)
	assert.InDelta(t, 0.20, out, 1e-9)
	assert.InDelta(t, 0.30, total, 1e-9)
	assert.Equal(t, Pricing{}, ResolvePricing("unknown"))
}
