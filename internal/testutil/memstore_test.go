package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/agenttrace/docstore/internal/pkg/database"
)

func seed(t *testing.T, coll database.DocumentCollection, docs ...bson.M) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, coll.Save(context.Background(), d["_id"], d))
	}
}

func collect(t *testing.T, cur database.Cursor) []bson.M {
	t.Helper()
	ctx := context.Background()
	var out []bson.M
	for cur.Next(ctx) {
		var m bson.M
		require.NoError(t, cur.Decode(&m))
		out = append(out, m)
	}
	require.NoError(t, cur.Err())
	require.NoError(t, cur.Close(ctx))
	return out
}

func TestMemDatabase_Collections(t *testing.T) {
	ctx := context.Background()
	db := NewMemDatabase("test")
	assert.Equal(t, "test", db.Name())

	exists, err := db.CollectionExists(ctx, "Users")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, db.CreateCollection(ctx, "Users"))
	require.NoError(t, db.CreateCollection(ctx, "Users"))

	exists, err = db.CollectionExists(ctx, "Users")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Users", db.Collection("Users").Name())
}

func TestMemCollection_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	db := NewMemDatabase("test")
	coll := db.Collection("Users")

	seed(t, coll,
		bson.M{"_id": "1", "name": "Alice", "age": 30, "tags": bson.A{"admin", "dev"}},
		bson.M{"_id": "2", "name": "Bob", "age": int64(40), "address": bson.M{"city": "Oslo"}},
		bson.M{"_id": "3", "name": "alina", "age": 30.0},
	)
	assert.Equal(t, 3, db.Count("Users"))

	t.Run("find one by equality", func(t *testing.T) {
		var out User
		require.NoError(t, coll.FindOne(ctx, bson.D{{Key: "name", Value: "Bob"}}, &out))
		assert.Equal(t, "2", out.ID)
	})

	t.Run("find one with no match", func(t *testing.T) {
		var out User
		err := coll.FindOne(ctx, bson.M{"name": "Zed"}, &out)
		assert.ErrorIs(t, err, database.ErrNoDocuments)
	})

	t.Run("numeric types compare by value", func(t *testing.T) {
		cur, err := coll.Find(ctx, bson.M{"age": 30}, database.FindOptions{})
		require.NoError(t, err)
		assert.Len(t, collect(t, cur), 2)

		cur, err = coll.Find(ctx, bson.M{"age": 40}, database.FindOptions{})
		require.NoError(t, err)
		assert.Len(t, collect(t, cur), 1)
	})

	t.Run("dotted fields and array members", func(t *testing.T) {
		cur, err := coll.Find(ctx, bson.M{"address.city": "Oslo"}, database.FindOptions{})
		require.NoError(t, err)
		assert.Len(t, collect(t, cur), 1)

		cur, err = coll.Find(ctx, bson.M{"tags": "dev"}, database.FindOptions{})
		require.NoError(t, err)
		assert.Len(t, collect(t, cur), 1)
	})

	t.Run("regular expressions", func(t *testing.T) {
		re := primitive.Regex{Pattern: "^al", Options: "i"}
		cur, err := coll.Find(ctx, bson.M{"name": re}, database.FindOptions{})
		require.NoError(t, err)
		assert.Len(t, collect(t, cur), 2)
	})

	t.Run("skip and limit keep insertion order", func(t *testing.T) {
		cur, err := coll.Find(ctx, nil, database.FindOptions{Skip: 1, Limit: 1})
		require.NoError(t, err)
		docs := collect(t, cur)
		require.Len(t, docs, 1)
		assert.Equal(t, "2", docs[0]["_id"])

		cur, err = coll.Find(ctx, nil, database.FindOptions{Skip: 10})
		require.NoError(t, err)
		assert.Empty(t, collect(t, cur))
	})

	t.Run("operators are rejected", func(t *testing.T) {
		_, err := coll.Find(ctx, bson.M{"age": bson.M{"$gt": 1}}, database.FindOptions{})
		assert.Error(t, err)

		_, err = coll.Find(ctx, bson.M{"$or": bson.A{}}, database.FindOptions{})
		assert.Error(t, err)
	})

	t.Run("save replaces in place", func(t *testing.T) {
		seed(t, coll, bson.M{"_id": "1", "name": "Alice Smith"})
		assert.Equal(t, 3, db.Count("Users"))

		var out User
		require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "1"}, &out))
		assert.Equal(t, "Alice Smith", out.Name)
		assert.Equal(t, 0, out.Age)
	})

	t.Run("remove", func(t *testing.T) {
		n, err := coll.Remove(ctx, bson.M{"age": 30})
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = coll.Remove(ctx, bson.M{"_id": "missing"})
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)
		assert.Equal(t, 2, db.Count("Users"))
	})
}

func TestMemCollection_SaveSetsMissingID(t *testing.T) {
	ctx := context.Background()
	coll := NewMemDatabase("test").Collection("Products")

	require.NoError(t, coll.Save(ctx, "sku-1", bson.M{"title": "Pen"}))

	var out Product
	require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "sku-1"}, &out))
	assert.Equal(t, "Pen", out.Title)
}

func TestMemCollection_DecodeRaw(t *testing.T) {
	ctx := context.Background()
	coll := NewMemDatabase("test").Collection("Users")
	seed(t, coll, bson.M{"_id": "1", "name": "Alice"})

	var raw bson.Raw
	require.NoError(t, coll.FindOne(ctx, bson.M{"_id": "1"}, &raw))
	assert.Equal(t, "Alice", raw.Lookup("name").StringValue())
}

func TestMemDatabase_FailNext(t *testing.T) {
	ctx := context.Background()
	db := NewMemDatabase("test")
	coll := db.Collection("Users")
	boom := errors.New("connection reset")

	db.FailNext(database.OpSave, boom)
	err := coll.Save(ctx, "1", bson.M{"name": "Alice"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, db.Count("Users"))

	// the failure is consumed
	require.NoError(t, coll.Save(ctx, "1", bson.M{"name": "Alice"}))
	assert.Equal(t, 1, db.Count("Users"))
}

func TestMemDatabase_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	coll := NewMemDatabase("test").Collection("Users")
	err := coll.Save(ctx, "1", bson.M{"name": "Alice"})
	assert.ErrorIs(t, err, context.Canceled)
}
