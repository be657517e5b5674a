package nodes

import (
	"context"
	"testing"

	"github.com/cloudwego/eino/compose"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

func turnState() *model.TurnState {
	return &model.TurnState{
		SessionID: "s1",
		Memory:    model.NewSessionMemory("s1"),
		Intent:    model.IntentUnknown,
		Decision:  &model.Decision{Intent: model.IntentUnknown, Status: model.StatusUnknown},
	}
}

func TestRequirementsCondition_FailsWithoutGraphState(t *testing.T) {
	next, err := NewRequirementsCondition()(context.Background(), turnState())
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrContractViolation)
	assert.Empty(t, next)
}

func TestComposeNode_FailsWithoutGraphState(t *testing.T) {
	ctx := context.Background()
	chain := compose.NewChain[*model.TurnState, *model.TurnResult]().
		AppendLambda(NewComposeNode(composer.New(nil)))
	r, err := chain.Compile(ctx)
	require.NoError(t, err)

	_, err = r.Invoke(ctx, turnState())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph state unavailable")
}

func TestRoute(t *testing.T) {
	st := turnState()
	st.Intent = model.IntentPolicyStatus
	st.MissingFields = []model.SlotName{model.SlotPolicyNumber}
	assert.Equal(t, NodeDecision, Route(st))

	st.MissingFields = nil
	assert.Equal(t, NodeNasabah, Route(st))

	st.Intent = model.IntentRSSearch
	assert.Equal(t, NodeRS, Route(st))

	st.Intent = model.IntentLimitPlan
	assert.Equal(t, NodePolis, Route(st))

	st.Intent = model.IntentUnknown
	assert.Equal(t, NodeDecision, Route(st))
}
