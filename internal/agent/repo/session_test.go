package repo

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cso-health-insurance/server/internal/agent/model"
	errx "github.com/cso-health-insurance/server/internal/core/error"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisSessionRepository(rdb, ttl, "cso"), mr
}

func sampleMemory() *model.SessionMemory {
	m := model.NewSessionMemory("s1")
	m.Slots = model.Slots{PolicyNumber: "PLS-2024-0001", City: "Bandung", PlanTier: "Gold", RSMode: model.RSModeCashless}
	m.PendingSlot = model.SlotCity
	m.LastIntent = model.IntentRSSearch
	m.AddTopic("Status polis", 10)
	m.Remember(model.RoleUser, "halo", 5)
	return m
}

func TestRedisSessionRepository_RoundTrip(t *testing.T) {
	repo, mr := newRedisRepo(t, 30*time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleMemory()))
	assert.True(t, mr.Exists("cso:session:s1:memory"))
	assert.Equal(t, 30*time.Minute, mr.TTL("cso:session:s1:memory"))

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bandung", got.Slots.City)
	assert.Equal(t, model.RSModeCashless, got.Slots.RSMode)
	assert.Equal(t, model.SlotCity, got.PendingSlot)
	assert.Equal(t, []string{"Status polis"}, got.Topics)
	require.Len(t, got.Transcript, 1)
}

func TestRedisSessionRepository_MissingAndDelete(t *testing.T) {
	repo, _ := newRedisRepo(t, 0)
	ctx := context.Background()

	_, err := repo.Load(ctx, "nope")
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, sampleMemory()))
	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)
}

func TestRedisSessionRepository_ExpiresAfterTTL(t *testing.T) {
	repo, mr := newRedisRepo(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, sampleMemory()))
	mr.FastForward(2 * time.Minute)

	_, err := repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)
}

func TestRedisSessionRepository_CorruptPayload(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	require.NoError(t, mr.Set("cso:session:s1:memory", "{not json"))

	_, err := repo.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, errx.ErrSessionNotFound)
}

func TestRedisSessionRepository_ServerDown(t *testing.T) {
	repo, mr := newRedisRepo(t, 0)
	mr.Close()

	_, err := repo.Load(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, 502, errx.StatusOf(err))
}

func TestMemorySessionRepository_IsolatesCopies(t *testing.T) {
	repo := NewMemorySessionRepository(time.Minute)
	ctx := context.Background()

	m := sampleMemory()
	require.NoError(t, repo.Save(ctx, m))
	m.Slots.City = "Medan"

	got, err := repo.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Bandung", got.Slots.City)

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.Load(ctx, "s1")
	assert.ErrorIs(t, err, errx.ErrSessionNotFound)
}
