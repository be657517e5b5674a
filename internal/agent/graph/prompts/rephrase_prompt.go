package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed template/rephrase_prompt.txt
var rephraseSystemPrompt string

const defaultLanguage = "Bahasa Indonesia"

// RephraseTemplate is the eino chat template used by the rephrasing pass.
// Variables: Language, Grounded.
func RephraseTemplate() prompt.ChatTemplate {
	return prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(rephraseSystemPrompt),
		schema.UserMessage("TEKS ASLI:\n{{.Grounded}}\n\nTEKS RAPI:"),
	)
}

// RenderRephrase formats the rephrase messages for grounded text. Rendering through
// the prompt component emits prompt callbacks.
func RenderRephrase(ctx context.Context, tpl prompt.ChatTemplate, grounded, language string) ([]*schema.Message, error) {
	if strings.TrimSpace(grounded) == "" {
		return nil, fmt.Errorf("rephrase prompt render: empty grounded text")
	}
	if language == "" {
		language = defaultLanguage
	}
	msgs, err := tpl.Format(ctx, map[string]any{
		"Language": language,
		"Grounded": grounded,
	})
	if err != nil {
		return nil, fmt.Errorf("rephrase prompt render: %w", err)
	}
	if len(msgs) == 0 {
		return nil, fmt.Errorf("rephrase prompt render: empty result")
	}
	return msgs, nil
}
