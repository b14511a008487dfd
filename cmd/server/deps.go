package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/agenttrace/docstore/internal/config"
	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/handler"
	"github.com/agenttrace/docstore/internal/middleware"
	"github.com/agenttrace/docstore/internal/pkg/database"
	"github.com/agenttrace/docstore/internal/repository/mongo"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger

	// Database connections
	Mongo *database.MongoDB
	Redis *database.RedisDB

	// Repositories
	Documents *handler.DocumentRepository

	// Handlers
	Handlers *Handlers

	// Middleware, nil when rate limiting is disabled
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// Handlers holds the HTTP handlers
type Handlers struct {
	Health    *handler.HealthHandler
	Documents *handler.DocumentsHandler
	Docs      *handler.DocsHandler
}

// initDependencies initializes all dependencies
func initDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	// Initialize MongoDB
	mongoDB, err := database.NewMongo(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	deps.Mongo = mongoDB

	// Initialize Redis, only needed for rate limiting
	if cfg.RateLimit.Enabled {
		redisDB, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		deps.Redis = redisDB
		deps.RateLimitMiddleware = middleware.NewRateLimitMiddleware(redisDB.Client, middleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		})
	}

	// Initialize repositories
	opts := []mongo.Option{mongo.WithLogger(logger)}
	if cfg.Mongo.DefaultCollection != "" {
		opts = append(opts, mongo.WithCollection(cfg.Mongo.DefaultCollection))
	}
	openCtx, cancel := context.WithTimeout(ctx, cfg.Mongo.OperationTimeout)
	defer cancel()
	documents, err := mongo.NewDocumentRepository[domain.Document](openCtx, mongoDB.Database(""), opts...)
	if err != nil {
		deps.Close()
		return nil, fmt.Errorf("failed to open document repository: %w", err)
	}
	deps.Documents = documents

	// Initialize handlers
	var redisPinger handler.Pinger
	if deps.Redis != nil {
		redisPinger = deps.Redis
	}
	deps.Handlers = &Handlers{
		Health:    handler.NewHealthHandler(mongoDB, redisPinger, appVersion),
		Documents: handler.NewDocumentsHandler(documents),
		Docs:      handler.NewDocsHandler(),
	}

	return deps, nil
}

// Close closes all connections
func (d *Dependencies) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("failed to close Redis", zap.Error(err))
		}
	}
	if d.Mongo != nil {
		if err := d.Mongo.Close(ctx); err != nil {
			d.Logger.Warn("failed to close MongoDB", zap.Error(err))
		}
	}
}
