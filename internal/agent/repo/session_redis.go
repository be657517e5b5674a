package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

type RedisSessionRepository struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration, prefix string) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl, prefix: prefix}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	if r.prefix == "" {
		return fmt.Sprintf("session:%s:memory", sessionID)
	}
	return fmt.Sprintf("%s:session:%s:memory", r.prefix, sessionID)
}

func (r *RedisSessionRepository) Load(ctx context.Context, sessionID string) (*model.SessionMemory, error) {
	key := r.sessionKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, errx.ErrSessionNotFound
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session memory from redis")
		return nil, errx.WrapRedis(err)
	}

	var mem model.SessionMemory
	if err := json.Unmarshal(raw, &mem); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal session memory")
		return nil, fmt.Errorf("unmarshal session memory: %w", err)
	}
	return &mem, nil
}

// Save replaces the stored memory and extends its TTL on every write.
func (r *RedisSessionRepository) Save(ctx context.Context, memory *model.SessionMemory) error {
	b, err := json.Marshal(memory)
	if err != nil {
		logx.Error().Err(err).Str("session_id", memory.SessionID).Msg("failed to marshal session memory")
		return fmt.Errorf("marshal session memory: %w", err)
	}
	key := r.sessionKey(memory.SessionID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session memory to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session memory from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
