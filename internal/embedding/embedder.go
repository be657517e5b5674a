// Package embedding adapts the Gemini embedding endpoint to the eino Embedder interface.
package embedding

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/embedding"
	"google.golang.org/genai"

	"github.com/cso-health-insurance/server/internal/agent/model"
)

const typ = "GeminiEmbedder"

// ContentEmbedder is the subset of genai.Models used here.
type ContentEmbedder interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type Embedder struct {
	models     ContentEmbedder
	model      string
	taskType   string
	dimensions int32
}

// New builds an embedder from a genai client. Dimensions <= 0 keeps the model default.
func New(client *genai.Client, cfg model.EmbeddingConfig) (*Embedder, error) {
	if client == nil {
		return nil, fmt.Errorf("genai client is nil")
	}
	return NewWithModels(client.Models, cfg), nil
}

func NewWithModels(models ContentEmbedder, cfg model.EmbeddingConfig) *Embedder {
	return &Embedder{
		models:     models,
		model:      cfg.Model,
		taskType:   cfg.TaskType,
		dimensions: int32(cfg.Dimensions),
	}
}

func (e *Embedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) (vectors [][]float64, err error) {
	options := embedding.GetCommonOptions(&embedding.Options{Model: &e.model}, opts...)
	modelName := e.model
	if options.Model != nil && *options.Model != "" {
		modelName = *options.Model
	}
	conf := &embedding.Config{Model: modelName}

	ctx = callbacks.EnsureRunInfo(ctx, e.GetType(), components.ComponentOfEmbedding)
	ctx = callbacks.OnStart(ctx, &embedding.CallbackInput{Texts: texts, Config: conf})
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	if len(texts) == 0 {
		return nil, nil
	}
	contents := make([]*genai.Content, 0, len(texts))
	for _, t := range texts {
		contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
	}
	cfg := &genai.EmbedContentConfig{TaskType: e.taskType}
	if e.dimensions > 0 {
		d := e.dimensions
		cfg.OutputDimensionality = &d
	}

	resp, err := e.models.EmbedContent(ctx, modelName, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed content: expected %d embeddings", len(texts))
	}

	vectors = make([][]float64, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil {
			return nil, fmt.Errorf("embed content: empty embedding at %d", i)
		}
		vec := make([]float64, len(emb.Values))
		for j, v := range emb.Values {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}

	callbacks.OnEnd(ctx, &embedding.CallbackOutput{Embeddings: vectors, Config: conf})
	return vectors, nil
}

func (e *Embedder) GetType() string { return typ }

func (e *Embedder) IsCallbacksEnabled() bool { return true }

var _ embedding.Embedder = (*Embedder)(nil)
