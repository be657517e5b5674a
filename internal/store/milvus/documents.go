// Package milvus serves policy-document evidence from a Milvus collection.
package milvus

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

var tracer = otel.Tracer("cso/store/milvus")

var outputFields = []string{"text", "source", "page"}

// DocumentStore searches a collection with fields text, source, page and a float
// vector field named embedding.
type DocumentStore struct {
	client     *milvusclient.Client
	collection string
}

func NewDocumentStore(client *milvusclient.Client, collection string) *DocumentStore {
	return &DocumentStore{client: client, collection: collection}
}

func (s *DocumentStore) Search(ctx context.Context, vector []float64, k int) ([]model.EvidenceChunk, error) {
	ctx, span := tracer.Start(ctx, "documents.search")
	defer span.End()
	span.SetAttributes(attribute.String("collection", s.collection), attribute.Int("k", k))

	if s.client == nil {
		return nil, errx.WrapStore(fmt.Errorf("milvus client not initialized"))
	}

	loadTask, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection))
	if err != nil {
		return nil, errx.WrapStore(fmt.Errorf("failed to load collection: %w", err))
	}
	if err := loadTask.Await(ctx); err != nil {
		return nil, errx.WrapStore(fmt.Errorf("failed to wait for collection loading: %w", err))
	}

	results, err := s.client.Search(ctx, milvusclient.NewSearchOption(
		s.collection,
		k,
		[]entity.Vector{entity.FloatVector(toFloat32(vector))},
	).WithANNSField("embedding").
		WithOutputFields(outputFields...))
	if err != nil {
		span.RecordError(err)
		return nil, errx.WrapStore(fmt.Errorf("failed to search: %w", err))
	}
	if len(results) == 0 {
		return []model.EvidenceChunk{}, nil
	}

	rs := results[0]
	chunks := make([]model.EvidenceChunk, rs.ResultCount)
	for _, field := range rs.Fields {
		fillChunks(chunks, field)
	}
	return chunks, nil
}

// fillChunks copies one output column into the chunk slice.
func fillChunks(chunks []model.EvidenceChunk, field column.Column) {
	switch col := field.(type) {
	case *column.ColumnVarChar:
		data := col.Data()
		for i := 0; i < len(chunks) && i < len(data); i++ {
			switch col.Name() {
			case "text":
				chunks[i].Text = data[i]
			case "source":
				chunks[i].Source = data[i]
			case "page":
				chunks[i].Page = data[i]
			}
		}
	case *column.ColumnInt64:
		if col.Name() != "page" {
			return
		}
		data := col.Data()
		for i := 0; i < len(chunks) && i < len(data); i++ {
			chunks[i].Page = strconv.FormatInt(data[i], 10)
		}
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

var _ lookup.DocumentStore = (*DocumentStore)(nil)
