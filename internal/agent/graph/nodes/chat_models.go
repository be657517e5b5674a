package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"

	"github.com/cso-health-insurance/server/internal/agent/model"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// GenAIConfig selects the Gemini endpoint shared by the rephrase model and the embedder.
type GenAIConfig struct {
	APIKey  string
	BaseURL string
}

// NewGenAIClient creates the Gemini API client.
func NewGenAIClient(ctx context.Context, cfg GenAIConfig) (*genai.Client, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return client, nil
}

// NewRephraseChatModel creates the chat model behind the rephrasing pass, with thinking off.
func NewRephraseChatModel(ctx context.Context, client *genai.Client, cfg model.RephraseModelConfig) (*gemini.ChatModel, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature

	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       cfg.Model,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: false,
			ThinkingBudget:  genai.Ptr(int32(0)),
		},
	})
	if err != nil {
		logx.Error().Err(err).Msg("Error creating rephrase model")
		return nil, fmt.Errorf("error creating rephrase model: %w", err)
	}
	return chatModel, nil
}
