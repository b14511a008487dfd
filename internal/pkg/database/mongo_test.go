package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agenttrace/docstore/internal/config"
	"github.com/agenttrace/docstore/internal/pkg/id"
	"github.com/agenttrace/docstore/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	_ = logger.Init(logger.Config{
		Level:  "error", // Only show errors in tests to reduce noise
		Format: "console",
	})
	os.Exit(m.Run())
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		maxLen   int
		expected string
	}{
		{"short unchanged", "connection refused", 100, "connection refused"},
		{"exactly at max length", "abc", 3, "abc"},
		{"truncated with ellipsis", "(NamespaceExists) collection already exists", 17, "(NamespaceExists)..."},
		{"empty string", "", 10, ""},
		{"max length of 0", "abc", 0, "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.in, tt.maxLen))
		})
	}
}

func TestFindOptions(t *testing.T) {
	t.Run("zero values stay unset", func(t *testing.T) {
		opts := findOptions(FindOptions{})
		assert.Nil(t, opts.Skip)
		assert.Nil(t, opts.Limit)
		assert.Nil(t, opts.Sort)
	})

	t.Run("positive values are applied", func(t *testing.T) {
		opts := findOptions(FindOptions{Skip: 5, Limit: 10})
		require.NotNil(t, opts.Skip)
		require.NotNil(t, opts.Limit)
		assert.Equal(t, int64(5), *opts.Skip)
		assert.Equal(t, int64(10), *opts.Limit)
		assert.Nil(t, opts.Sort)
	})

	t.Run("negative values stay unset", func(t *testing.T) {
		opts := findOptions(FindOptions{Skip: -1, Limit: -1})
		assert.Nil(t, opts.Skip)
		assert.Nil(t, opts.Limit)
	})
}

func TestNormalizeFilter(t *testing.T) {
	assert.Equal(t, bson.D{}, normalizeFilter(nil))

	f := bson.M{"name": "Alice"}
	assert.Equal(t, f, normalizeFilter(f))
}

func TestIsNamespaceExists(t *testing.T) {
	assert.True(t, isNamespaceExists(mongo.CommandError{Code: 48, Name: "NamespaceExists"}))
	assert.False(t, isNamespaceExists(mongo.CommandError{Code: 11000}))
	assert.False(t, isNamespaceExists(errors.New("plain")))
	assert.False(t, isNamespaceExists(nil))
}

func TestNewMongo_RequiresSettings(t *testing.T) {
	_, err := NewMongo(context.Background(), config.MongoConfig{Database: "docstore"})
	assert.Error(t, err)

	_, err = NewMongo(context.Background(), config.MongoConfig{URI: "mongodb://localhost:27017"})
	assert.Error(t, err)
}

// connectTestMongo connects to the server named by MONGO_TEST_URI, skipping
// the test when it is unset.
func connectTestMongo(t *testing.T) *MongoDB {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := NewMongo(ctx, config.MongoConfig{
		URI:                    uri,
		Database:               "docstore_test",
		AppName:                "docstore-test",
		ServerSelectionTimeout: 5 * time.Second,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Client.Database("docstore_test").Drop(context.Background())
		_ = db.Close(context.Background())
	})
	return db
}

func TestMongo_Integration(t *testing.T) {
	db := connectTestMongo(t)
	ctx := context.Background()
	mdb := db.Database("")
	name := "Items_" + id.NewObjectID()

	exists, err := mdb.CollectionExists(ctx, name)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, mdb.CreateCollection(ctx, name))
	require.NoError(t, mdb.CreateCollection(ctx, name), "creating twice is not an error")

	exists, err = mdb.CollectionExists(ctx, name)
	require.NoError(t, err)
	assert.True(t, exists)

	coll := mdb.Collection(name)
	assert.Equal(t, name, coll.Name())

	t.Run("save upserts then replaces", func(t *testing.T) {
		require.NoError(t, coll.Save(ctx, "a", bson.M{"_id": "a", "n": 1}))
		require.NoError(t, coll.Save(ctx, "a", bson.M{"_id": "a", "n": 2}))

		var out bson.M
		require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "a"}, &out))
		assert.EqualValues(t, 2, out["n"])
	})

	t.Run("find one with no match", func(t *testing.T) {
		var out bson.M
		err := coll.FindOne(ctx, bson.M{"_id": "missing"}, &out)
		assert.ErrorIs(t, err, ErrNoDocuments)
	})

	t.Run("find with limit", func(t *testing.T) {
		require.NoError(t, coll.Save(ctx, "b", bson.M{"_id": "b", "n": 3}))

		cur, err := coll.Find(ctx, nil, FindOptions{Limit: 1})
		require.NoError(t, err)
		defer cur.Close(ctx)

		count := 0
		for cur.Next(ctx) {
			count++
		}
		require.NoError(t, cur.Err())
		assert.Equal(t, 1, count)
	})

	t.Run("remove", func(t *testing.T) {
		n, err := coll.Remove(ctx, bson.M{"_id": "a"})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = coll.Remove(ctx, bson.M{"_id": "a"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
	})

	assert.NoError(t, db.Ping(ctx))
}
