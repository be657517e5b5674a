package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/cso-health-insurance/server/internal/agent/composer"
	"github.com/cso-health-insurance/server/internal/agent/engine"
	"github.com/cso-health-insurance/server/internal/agent/graph"
	"github.com/cso-health-insurance/server/internal/agent/graph/conversations"
	"github.com/cso-health-insurance/server/internal/agent/graph/nodes"
	"github.com/cso-health-insurance/server/internal/agent/lookup"
	"github.com/cso-health-insurance/server/internal/agent/model"
	"github.com/cso-health-insurance/server/internal/agent/repo"
	"github.com/cso-health-insurance/server/internal/embedding"
	milvusstore "github.com/cso-health-insurance/server/internal/store/milvus"
	pgstore "github.com/cso-health-insurance/server/internal/store/postgres"
	logx "github.com/cso-health-insurance/server/pkg/logger"
)

// app holds the wired service and the resources to release on exit.
type app struct {
	engine  *engine.Engine
	lookups *lookup.Service
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildLookups connects the stores and the embedder.
func buildLookups(ctx context.Context, cfg AppConfig, a *app) error {
	client, err := nodes.NewGenAIClient(ctx, nodes.GenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return err
	}
	embedder, err := embedding.New(client, cfg.Embedding)
	if err != nil {
		return err
	}

	db, err := cfg.Postgres.New()
	if err != nil {
		return fmt.Errorf("failed to initialise Postgres: %w", err)
	}
	a.closers = append(a.closers, func() { closeDB(db) })
	records := pgstore.NewRecordStore(db, cfg.Postgres.Timeout())

	var documents lookup.DocumentStore
	switch cfg.Store.DocumentBackend {
	case "milvus":
		mc, err := cfg.Milvus.New()
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() { _ = mc.Close(context.Background()) })
		documents = milvusstore.NewDocumentStore(mc, cfg.Milvus.Collection)
	case "postgres", "":
		documents = pgstore.NewDocumentStore(db, cfg.Postgres.Timeout())
	default:
		return fmt.Errorf("unknown DOCUMENT_BACKEND %q", cfg.Store.DocumentBackend)
	}

	a.lookups = lookup.NewService(records, documents, embedder, cfg.Store)
	logx.Info().Str("document_backend", cfg.Store.DocumentBackend).Msg("lookup adapters ready")
	return nil
}

// buildApp wires lookups, the turn graph, the session store and the engine.
func buildApp(ctx context.Context, cfg AppConfig) (*app, error) {
	a := &app{}
	if err := buildLookups(ctx, cfg, a); err != nil {
		a.Close()
		return nil, err
	}

	rephraser, err := buildRephraser(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	runner, err := graph.BuildGraph(ctx, &graph.Config{
		Lookups:    a.lookups,
		Composer:   composer.New(rephraser),
		TopicLimit: cfg.Conversation.TopicLimit,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	sessions, err := buildSessionRepo(cfg, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.engine = engine.New(runner, conversations.NewSessionManager(sessions, cfg.Conversation), engine.WithClosingCheck())
	return a, nil
}

func buildRephraser(ctx context.Context, cfg AppConfig) (*composer.Rephraser, error) {
	if !cfg.Rephrase.Enabled {
		logx.Info().Msg("rephrasing disabled, answers are sent as rendered")
		return nil, nil
	}
	client, err := nodes.NewGenAIClient(ctx, nodes.GenAIConfig{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	chat, err := nodes.NewRephraseChatModel(ctx, client, cfg.Rephrase)
	if err != nil {
		return nil, err
	}
	return composer.NewRephraser(chat, cfg.Rephrase.Model), nil
}

func buildSessionRepo(cfg AppConfig, a *app) (model.SessionRepository, error) {
	ttl, err := time.ParseDuration(cfg.Conversation.TTL)
	if err != nil {
		return nil, fmt.Errorf("invalid CONVERSATION_TTL '%s': %w", cfg.Conversation.TTL, err)
	}

	switch cfg.Conversation.Backend {
	case "memory":
		return repo.NewMemorySessionRepository(ttl), nil
	case "redis", "":
		rdb, err := cfg.Redis.New()
		if err != nil {
			return nil, fmt.Errorf("failed to initialise Redis client: %w", err)
		}
		a.closers = append(a.closers, func() { closeRedis(rdb) })
		return repo.NewRedisSessionRepository(rdb, ttl, cfg.Redis.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown SESSION_BACKEND %q", cfg.Conversation.Backend)
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func closeRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		logx.Warn().Err(err).Msg("failed to close redis client")
	}
}
