package postgres

import (
	"encoding/json"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"

	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/nlu"
)

// RecordRow stores customer and partner-hospital payloads. Collection separates the two.
type RecordRow struct {
	ID         int64            `gorm:"primaryKey;autoIncrement"`
	Collection string           `gorm:"type:text;not null;index"`
	Payload    datatypes.JSON   `gorm:"type:jsonb;not null"`
	Embedding  *pgvector.Vector `gorm:"type:vector(768)"`
}

func (RecordRow) TableName() string {
	return "cso_records"
}

// ChunkRow is one policy-document passage.
type ChunkRow struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	Content   string          `gorm:"type:text"`
	Metadata  datatypes.JSON  `gorm:"type:jsonb"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"`
}

func (ChunkRow) TableName() string {
	return "cso_policy_chunks"
}

var (
	chunkTextKeys   = []string{"text", "page_content", "content"}
	chunkSourceKeys = []string{"source_file", "source"}
)

func toRecord(row RecordRow) (model.Record, error) {
	rec := model.Record{}
	if len(row.Payload) == 0 {
		return rec, nil
	}
	if err := json.Unmarshal(row.Payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// toChunk reads text and provenance from the row, falling back to metadata aliases.
func toChunk(row ChunkRow) model.EvidenceChunk {
	meta := map[string]any{}
	if len(row.Metadata) > 0 {
		_ = json.Unmarshal(row.Metadata, &meta)
	}
	text := nlu.Normalize(row.Content)
	if text == "" {
		text = firstValue(meta, chunkTextKeys)
	}
	return model.EvidenceChunk{
		Text:   text,
		Source: firstValue(meta, chunkSourceKeys),
		Page:   nlu.Normalize(meta["page"]),
	}
}

func firstValue(m map[string]any, keys []string) string {
	for _, k := range keys {
		if v := nlu.Normalize(m[k]); v != "" {
			return v
		}
	}
	return ""
}

func toVector(v []float64) pgvector.Vector {
	f := make([]float32, len(v))
	for i, x := range v {
		f[i] = float32(x)
	}
	return pgvector.NewVector(f)
}
