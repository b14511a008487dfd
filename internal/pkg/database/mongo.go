package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/agenttrace/docstore/internal/config"
	"github.com/agenttrace/docstore/internal/pkg/logger"
	"github.com/agenttrace/docstore/internal/pkg/metrics"
)

// codeNamespaceExists is the server error code for creating an existing collection
const codeNamespaceExists = 48

// MongoDB wraps a MongoDB client
type MongoDB struct {
	Client   *mongo.Client
	database string
}

// NewMongo connects to MongoDB and verifies the connection with a ping
func NewMongo(ctx context.Context, cfg config.MongoConfig) (*MongoDB, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongo database is required")
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMonitor(newCommandMonitor())
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts.SetServerSelectionTimeout(cfg.ServerSelectionTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	// Test connection
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", cfg.Database),
		zap.String("app_name", cfg.AppName),
	)

	return &MongoDB{Client: client, database: cfg.Database}, nil
}

// Database returns the named database, or the configured default when name is empty
func (db *MongoDB) Database(name string) *MongoDatabase {
	if name == "" {
		name = db.database
	}
	return &MongoDatabase{db: db.Client.Database(name)}
}

// Ping checks the connection to the primary
func (db *MongoDB) Ping(ctx context.Context) error {
	return db.Client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (db *MongoDB) Close(ctx context.Context) error {
	if db.Client != nil {
		return db.Client.Disconnect(ctx)
	}
	return nil
}

// MongoDatabase implements DocumentDatabase over a mongo.Database
type MongoDatabase struct {
	db *mongo.Database
}

// Name returns the database name
func (d *MongoDatabase) Name() string {
	return d.db.Name()
}

// CollectionExists reports whether the database has a collection called name
func (d *MongoDatabase) CollectionExists(ctx context.Context, name string) (bool, error) {
	start := time.Now()
	names, err := d.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	observe(name, OpCollectionExists, start, err)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// CreateCollection creates the named collection
func (d *MongoDatabase) CreateCollection(ctx context.Context, name string) error {
	start := time.Now()
	err := d.db.CreateCollection(ctx, name)
	if isNamespaceExists(err) {
		err = nil
	}
	observe(name, OpCreateCollection, start, err)
	return err
}

// Collection returns a handle to the named collection
func (d *MongoDatabase) Collection(name string) DocumentCollection {
	return &mongoCollection{coll: d.db.Collection(name)}
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Name() string {
	return c.coll.Name()
}

func (c *mongoCollection) FindOne(ctx context.Context, filter any, out any) error {
	start := time.Now()
	err := c.coll.FindOne(ctx, normalizeFilter(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe(c.Name(), OpFindOne, start, nil)
		return ErrNoDocuments
	}
	observe(c.Name(), OpFindOne, start, err)
	return err
}

func (c *mongoCollection) Find(ctx context.Context, filter any, opts FindOptions) (Cursor, error) {
	start := time.Now()
	cur, err := c.coll.Find(ctx, normalizeFilter(filter), findOptions(opts))
	observe(c.Name(), OpFind, start, err)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (c *mongoCollection) Save(ctx context.Context, id any, doc any) error {
	start := time.Now()
	_, err := c.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		doc,
		options.Replace().SetUpsert(true),
	)
	observe(c.Name(), OpSave, start, err)
	return err
}

func (c *mongoCollection) Remove(ctx context.Context, filter any) (int64, error) {
	start := time.Now()
	res, err := c.coll.DeleteMany(ctx, normalizeFilter(filter))
	observe(c.Name(), OpRemove, start, err)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func findOptions(o FindOptions) *options.FindOptions {
	opts := options.Find()
	if o.Skip > 0 {
		opts.SetSkip(o.Skip)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	return opts
}

// normalizeFilter turns a nil filter into the match-all document
func normalizeFilter(filter any) any {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists
}

func observe(collection, operation string, start time.Time, err error) {
	metrics.RecordDBOperation(collection, operation, time.Since(start))
	if err != nil {
		metrics.RecordDBError(collection, operation)
	}
}

// newCommandMonitor logs slow and failed server commands
func newCommandMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Succeeded: func(_ context.Context, e *event.CommandSucceededEvent) {
			if e.Duration > metrics.SlowOperationThreshold {
				logger.Warn("slow command detected",
					zap.String("command", e.CommandName),
					zap.String("database", e.DatabaseName),
					zap.Int64("duration_ms", e.Duration.Milliseconds()),
				)
			}
		},
		Failed: func(_ context.Context, e *event.CommandFailedEvent) {
			logger.Debug("command failed",
				zap.String("command", e.CommandName),
				zap.String("database", e.DatabaseName),
				zap.String("failure", truncate(e.Failure, 200)),
			)
		},
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
