package composer

import (
	"context"
	"errors"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"

	"github.com/cso-health-insurance/server/internal/agent/graph/prompts"
	"github.com/cso-health-insurance/server/internal/agent/model"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

var (
	ErrEmptyRephrase = errors.New("rephrase returned empty text")
	ErrUnfaithful    = errors.New("rephrase introduced content absent from the grounded answer")
)

// Rephraser polishes grounded text through a chat model. Its output is advisory:
// callers fall back to the grounded text on any error.
type Rephraser struct {
	chat      einomodel.BaseChatModel
	tpl       prompt.ChatTemplate
	modelName string
	pricing   model.Pricing
}

func NewRephraser(chat einomodel.BaseChatModel, modelName string) *Rephraser {
	return &Rephraser{
		chat:      chat,
		tpl:       prompts.RephraseTemplate(),
		modelName: modelName,
		pricing:   model.ResolvePricing(modelName),
	}
}

// Rephrase returns the polished text, or an error when the model fails, answers
// empty, or adds digits or names that grounded does not contain.
func (r *Rephraser) Rephrase(ctx context.Context, grounded string) (string, error) {
	msgs, err := prompts.RenderRephrase(ctx, r.tpl, grounded, "")
	if err != nil {
		return "", err
	}
	out, err := r.chat.Generate(ctx, msgs)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", ErrEmptyRephrase
	}
	if out.ResponseMeta != nil && out.ResponseMeta.Usage != nil {
		in, outCost, total := model.ComputeCost(out.ResponseMeta.Usage, r.pricing)
		logx.Debug().
			Str("model", r.modelName).
			Int("prompt_tokens", out.ResponseMeta.Usage.PromptTokens).
			Int("completion_tokens", out.ResponseMeta.Usage.CompletionTokens).
			Float64("input_cost_usd", in).
			Float64("output_cost_usd", outCost).
			Float64("total_cost_usd", total).
			Msg("rephrase usage")
	}
	cleaned := strings.TrimSpace(out.Content)
	if cleaned == "" {
		return "", ErrEmptyRephrase
	}
	if !Faithful(grounded, cleaned) {
		return "", ErrUnfaithful
	}
	return cleaned, nil
}
