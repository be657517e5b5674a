package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

// MemorySessionRepository keeps Session Memory in process, for the CLI and tests.
// Entries expire after ttl of inactivity.
type MemorySessionRepository struct {
	c *cache.Cache
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemorySessionRepository{c: cache.New(ttl, 2*time.Minute)}
}

func (r *MemorySessionRepository) Load(_ context.Context, sessionID string) (*model.SessionMemory, error) {
	v, ok := r.c.Get(sessionID)
	if !ok {
		return nil, errx.ErrSessionNotFound
	}
	return v.(*model.SessionMemory).Clone(), nil
}

func (r *MemorySessionRepository) Save(_ context.Context, memory *model.SessionMemory) error {
	r.c.SetDefault(memory.SessionID, memory.Clone())
	return nil
}

func (r *MemorySessionRepository) Delete(_ context.Context, sessionID string) error {
	r.c.Delete(sessionID)
	return nil
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
