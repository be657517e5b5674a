package postgres

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

var tracer = otel.Tracer("cso/store/postgres")

// RecordStore serves the customer and partner-hospital collections from one JSONB table.
type RecordStore struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewRecordStore(db *gorm.DB, timeout time.Duration) *RecordStore {
	return &RecordStore{db: db, timeout: timeout}
}

// Scroll returns up to limit payloads whose keys equal every filter value.
func (s *RecordStore) Scroll(ctx context.Context, collection string, filters []model.Filter, limit int) ([]model.Record, error) {
	ctx, span := tracer.Start(ctx, "records.scroll")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection), attribute.Int("filters", len(filters)))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	for _, f := range filters {
		q = q.Where(datatypes.JSONQuery("payload").Equals(f.Value, f.Key))
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []RecordRow
	if err := q.Order("id").Find(&rows).Error; err != nil {
		span.RecordError(err)
		return nil, errx.WrapStore(err)
	}
	return toRecords(rows)
}

// Search returns the k payloads nearest to vector by L2 distance.
func (s *RecordStore) Search(ctx context.Context, collection string, vector []float64, k int) ([]model.Record, error) {
	ctx, span := tracer.Start(ctx, "records.search")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collection), attribute.Int("k", k))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rows []RecordRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND embedding IS NOT NULL", collection).
		Order(gorm.Expr("embedding <-> ?", toVector(vector))).
		Limit(k).
		Find(&rows).Error
	if err != nil {
		span.RecordError(err)
		return nil, errx.WrapStore(err)
	}
	return toRecords(rows)
}

func (s *RecordStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func toRecords(rows []RecordRow) ([]model.Record, error) {
	out := make([]model.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := toRecord(r)
		if err != nil {
			return nil, errx.WrapStore(err)
		}
		out = append(out, rec)
	}
	return out, nil
}

var _ lookup.RecordStore = (*RecordStore)(nil)
