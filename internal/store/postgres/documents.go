package postgres

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

// DocumentStore retrieves policy-document chunks by cosine distance.
type DocumentStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewDocumentStore(db *gorm.DB, timeout time.Duration) *DocumentStore {
	return &DocumentStore{db: db, timeout: timeout}
}

func (s *DocumentStore) Search(ctx context.Context, vector []float64, k int) ([]model.EvidenceChunk, error) {
	ctx, span := tracer.Start(ctx, "documents.search")
	defer span.End()
	span.SetAttributes(attribute.Int("k", k))

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var rows []ChunkRow
	err := s.db.WithContext(ctx).
		Order(gorm.Expr("embedding <=> ?", toVector(vector))).
		Limit(k).
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errx.WrapStore(err)
	}

	out := make([]model.EvidenceChunk, 0, len(rows))
	for _, r := range rows {
		out = append(out, toChunk(r))
	}
	return out, nil
}

// Migrate creates the vector extension and both tables.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return errx.WrapStore(err)
	}
	if err := db.WithContext(ctx).AutoMigrate(&RecordRow{}, &ChunkRow{}); err != nil {
		return errx.WrapStore(err)
	}
	return nil
}

var _ lookup.DocumentStore = (*DocumentStore)(nil)
