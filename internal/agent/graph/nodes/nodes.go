package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/decision"
	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/nlu"
	"github.com/cso-health-insurance/server/internal/agent/scoring"
	errx "github.com/cso-health-insurance/server/internal/core/error"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// Graph node keys. They double as the route names recorded in AppState.
const (
	NodeSupervisor   = "supervisor"
	NodeRequirements = "requirements"
	NodeRS           = "rs"
	NodeNasabah      = "nasabah"
	NodePolis        = "polis"
	NodeDecision     = "decision"
	NodeCompose      = "compose"
)

// Lookups is the subset of lookup.Service the lookup nodes call.
type Lookups interface {
	LookupCustomerRecord(ctx context.Context, raw string) lookup.CustomerResult
	LookupPartnerHospitals(ctx context.Context, city string, mode model.RSMode) lookup.HospitalResult
	RetrieveDocumentEvidence(ctx context.Context, query string, k int) lookup.EvidenceResult
}

// NewSupervisorPreHandler binds the invocation to its session and marks the visit.
func NewSupervisorPreHandler() func(context.Context, model.TurnInput, *model.AppState) (model.TurnInput, error) {
	guard := NewVisitPreHandler[model.TurnInput](NodeSupervisor)
	return func(ctx context.Context, in model.TurnInput, s *model.AppState) (model.TurnInput, error) {
		if s.SessionID == "" {
			s.SessionID = in.SessionID
		}
		return guard(ctx, in, s)
	}
}

// NewSupervisorNode merges slots and classifies the intent. The pending slot is read
// before slot filling so that a turn filling it still continues the previous intent.
func NewSupervisorNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, in model.TurnInput) (*model.TurnState, error) {
		mem := in.Memory
		if mem == nil {
			mem = model.NewSessionMemory(in.SessionID)
		}

		cc := nlu.Context{PendingSlot: mem.PendingSlot, LastIntent: mem.LastIntent}
		ents := nlu.Extract(in.Utterance)
		slots := nlu.FillSlots(ents, mem)
		intent := nlu.Classify(in.Utterance, cc)

		mem.Slots = slots
		if ents.RSMode != "" {
			mem.LastRSMode = ents.RSMode
		}
		mem.LastIntent = intent

		logx.Debug().
			Str("session_id", in.SessionID).
			Str("node", NodeSupervisor).
			Str("intent", string(intent)).
			Str("pending_before", string(cc.PendingSlot)).
			Msg("intent classified")

		return &model.TurnState{
			SessionID: in.SessionID,
			Utterance: in.Utterance,
			Memory:    mem,
			Slots:     slots,
			Intent:    intent,
		}, nil
	})
}

// NewRequirementsNode computes missing fields and arms the pending slot.
func NewRequirementsNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnState, error) {
		if err := checkState(NodeRequirements, st); err != nil {
			return nil, err
		}
		if !st.Intent.Valid() {
			return nil, errx.ContractViolation(NodeRequirements, fmt.Sprintf("intent %q outside enumeration", st.Intent))
		}

		st.MissingFields = nlu.MissingFields(st.Intent, st.Slots)
		if len(st.MissingFields) > 0 {
			st.Memory.PendingSlot = st.MissingFields[0]
		} else {
			st.Memory.PendingSlot = ""
		}
		return st, nil
	})
}

// Route picks the node after requirements. It depends only on intent and missing fields.
func Route(st *model.TurnState) string {
	if len(st.MissingFields) > 0 {
		return NodeDecision
	}
	switch {
	case st.Intent == model.IntentRSSearch:
		return NodeRS
	case st.Intent.NeedsCustomerRecord():
		return NodeNasabah
	case st.Intent.NeedsPolicyDocument():
		return NodePolis
	}
	return NodeDecision
}

// NewRequirementsCondition is the branch condition after requirements.
func NewRequirementsCondition() func(context.Context, *model.TurnState) (string, error) {
	return func(ctx context.Context, st *model.TurnState) (string, error) {
		if err := checkState(NodeRequirements, st); err != nil {
			return "", err
		}
		next := Route(st)
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			s.Route = next
			return nil
		})
		if err != nil {
			return "", errx.ContractViolation(NodeRequirements, fmt.Sprintf("graph state unavailable: %v", err))
		}
		logx.Debug().
			Str("session_id", st.SessionID).
			Str("intent", string(st.Intent)).
			Int("missing", len(st.MissingFields)).
			Str("node", next).
			Msg("routing")
		return next, nil
	}
}

// NewRSNode looks up partner hospitals for the resolved city and mode.
func NewRSNode(l Lookups) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnState, error) {
		if err := checkState(NodeRS, st); err != nil {
			return nil, err
		}
		mode := st.Slots.RSMode
		if mode == "" {
			mode = model.RSModeAll
		}
		res := l.LookupPartnerHospitals(ctx, st.Slots.City, mode)
		st.Hospitals = res.Records
		logx.Debug().Str("session_id", st.SessionID).Str("node", NodeRS).
			Str("outcome", res.Outcome.String()).Int("hits", len(res.Records)).Msg("hospitals looked up")
		return st, nil
	})
}

// NewNasabahNode looks up the customer record and remembers the detected policy key.
func NewNasabahNode(l Lookups) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnState, error) {
		if err := checkState(NodeNasabah, st); err != nil {
			return nil, err
		}
		res := l.LookupCustomerRecord(ctx, st.Slots.PolicyNumber)
		st.Customer = res.Record
		st.CustomerHits = res.Info
		if res.Info.KeyUsed != "" {
			st.Memory.CustomerPolicyKey = res.Info.KeyUsed
		}
		logx.Debug().Str("session_id", st.SessionID).Str("node", NodeNasabah).
			Str("outcome", res.Outcome.String()).Str("via", res.Info.Via).Msg("customer looked up")
		return st, nil
	})
}

// NewPolisNode retrieves policy-document evidence with an intent-specific query.
func NewPolisNode(l Lookups) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnState, error) {
		if err := checkState(NodePolis, st); err != nil {
			return nil, err
		}
		plan := st.Slots.PlanTier

		var res lookup.EvidenceResult
		switch st.Intent {
		case model.IntentClaimRequirements:
			res = l.RetrieveDocumentEvidence(ctx, claimQuery, claimK)
		case model.IntentLimitPlan:
			res = l.RetrieveDocumentEvidence(ctx, fmt.Sprintf(limitQuery, plan), limitK)
			if _, ok := scoring.PreselectLimit(res.Chunks, plan); !ok {
				logx.Debug().Str("session_id", st.SessionID).Str("plan", plan).Msg("limit preselect below floor, querying again")
				res = l.RetrieveDocumentEvidence(ctx, fmt.Sprintf(limitRequery, plan), limitRequeryK)
			}
		case model.IntentPlanBenefit:
			res = l.RetrieveDocumentEvidence(ctx, fmt.Sprintf(benefitQuery, plan, plan), benefitK)
		default:
			res = l.RetrieveDocumentEvidence(ctx, st.Utterance, defaultK)
		}
		st.Evidence = res.Chunks
		logx.Debug().Str("session_id", st.SessionID).Str("node", NodePolis).
			Str("outcome", res.Outcome.String()).Int("chunks", len(res.Chunks)).Msg("evidence retrieved")
		return st, nil
	})
}

// NewDecisionNode synthesizes the decision and records memos for later turns.
func NewDecisionNode(synth *decision.Synthesizer, topicLimit int) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnState, error) {
		if err := checkState(NodeDecision, st); err != nil {
			return nil, err
		}
		d := synth.Synthesize(st)
		if (len(st.MissingFields) > 0) != (d.Status == model.StatusNeedInput) {
			return nil, errx.ContractViolation(NodeDecision, fmt.Sprintf("status %s with %d missing fields", d.Status, len(st.MissingFields)))
		}
		st.Decision = d

		if d.Status != model.StatusNeedInput {
			st.Memory.AddTopic(decision.Topic(st.Intent), topicLimit)
		}

		logx.Debug().Str("session_id", st.SessionID).Str("node", NodeDecision).
			Str("intent", string(d.Intent)).Str("status", string(d.Status)).Msg("decision made")
		return st, nil
	})
}

// NewComposeNode renders the answer and assembles the turn result.
func NewComposeNode(c *composer.Composer) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *model.TurnState) (*model.TurnResult, error) {
		if err := checkState(NodeCompose, st); err != nil {
			return nil, err
		}
		if st.Decision == nil {
			return nil, errx.ContractViolation(NodeCompose, "decision missing")
		}
		st.Answer = c.Compose(ctx, st.Decision)

		var route []string
		err := compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
			route = append([]string(nil), s.Visited...)
			return nil
		})
		if err != nil {
			return nil, errx.ContractViolation(NodeCompose, fmt.Sprintf("graph state unavailable: %v", err))
		}

		return &model.TurnResult{
			SessionID:     st.SessionID,
			Answer:        st.Answer,
			Intent:        st.Intent,
			MissingFields: st.MissingFields,
			Slots:         st.Slots,
			CustomerFound: len(st.Customer) > 0,
			Decision:      *st.Decision,
			Lookup:        st.CustomerHits,
			Route:         route,
		}, nil
	})
}
