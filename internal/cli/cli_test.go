package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenttrace/docstore/internal/config"
	"github.com/agenttrace/docstore/internal/domain"
	"github.com/agenttrace/docstore/internal/pkg/database"
	"github.com/agenttrace/docstore/internal/pkg/id"
	"github.com/agenttrace/docstore/internal/testutil"
)

type result struct {
	code   int
	stdout string
	stderr string
}

func memOpener(db *testutil.MemDatabase) Opener {
	return func(context.Context, *config.Config) (database.DocumentDatabase, func(context.Context) error, error) {
		return db, nil, nil
	}
}

func run(t *testing.T, open Opener, stdin string, args ...string) result {
	t.Helper()
	root := NewRootCommand(open)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetIn(strings.NewReader(stdin))
	code := Run(root, args, &stderr)
	return result{code: code, stdout: strings.TrimSpace(stdout.String()), stderr: strings.TrimSpace(stderr.String())}
}

func TestSaveGetDelete(t *testing.T) {
	db := testutil.NewMemDatabase("docstore_test")
	open := memOpener(db)

	res := run(t, open, "", "save", "-c", "Users", `{name: 'Alice', age: 30}`)
	require.Equal(t, 0, res.code, res.stderr)

	var saved domain.SaveResult
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &saved))
	assert.True(t, saved.OK)
	assert.True(t, id.ValidateObjectID(saved.ID))
	assert.Equal(t, 1, db.Count("Users"))

	res = run(t, open, "", "get", saved.ID, "-c", "Users")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"_id":"`+saved.ID+`","name":"Alice","age":30}`, res.stdout)

	res = run(t, open, "", "delete", saved.ID, "-c", "Users")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Zero(t, db.Count("Users"))

	res = run(t, open, "", "get", saved.ID, "-c", "Users")
	assert.Equal(t, 1, res.code)
	assert.Equal(t, "Error: No match found.", res.stderr)
}

func TestSaveFromStdin(t *testing.T) {
	db := testutil.NewMemDatabase("docstore_test")

	res := run(t, memOpener(db), `{"_id": "u1", "name": "Bob"}`, "save", "-")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `{"id":"u1","ok":true}`, res.stdout)
	assert.Equal(t, 1, db.Count("Documents"))
}

func TestFind(t *testing.T) {
	db := testutil.NewMemDatabase("docstore_test")
	open := memOpener(db)
	for _, doc := range []string{`{_id: 'a', n: 1}`, `{_id: 'b', n: 2}`, `{_id: 'c', n: 1}`} {
		require.Equal(t, 0, run(t, open, "", "save", doc).code)
	}

	res := run(t, open, "", "find")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `[{"_id":"a","n":1},{"_id":"b","n":2},{"_id":"c","n":1}]`, res.stdout)

	res = run(t, open, "", "find", "{n: 1}", "--limit", "1", "--skip", "1")
	require.Equal(t, 0, res.code, res.stderr)
	assert.JSONEq(t, `[{"_id":"c","n":1}]`, res.stdout)

	res = run(t, open, "", "find-one", "{n: 3}")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "null", res.stdout)

	res = run(t, open, "", "find-one", "{n: 2}", "--pretty")
	require.Equal(t, 0, res.code, res.stderr)
	assert.Equal(t, "{\n  \"_id\": \"b\",\n  \"n\": 2\n}", res.stdout)
}

func TestErrors(t *testing.T) {
	db := testutil.NewMemDatabase("docstore_test")
	open := memOpener(db)

	t.Run("malformed query", func(t *testing.T) {
		res := run(t, open, "", "find", "{n: ")
		assert.Equal(t, 1, res.code)
		assert.True(t, strings.HasPrefix(res.stderr, "Error: "))
		assert.Empty(t, res.stdout)
	})

	t.Run("empty document", func(t *testing.T) {
		res := run(t, open, "", "save")
		assert.Equal(t, 1, res.code)
		assert.Equal(t, "Error: No entity to save passed.", res.stderr)
	})

	t.Run("driver failure", func(t *testing.T) {
		db.FailNext(database.OpRemove, errors.New("not primary"))
		res := run(t, open, "", "delete", "x")
		assert.Equal(t, 1, res.code)
		assert.Equal(t, "Error: not primary", res.stderr)
	})

	t.Run("connection failure", func(t *testing.T) {
		failing := func(context.Context, *config.Config) (database.DocumentDatabase, func(context.Context) error, error) {
			return nil, nil, errors.New("server selection timeout")
		}
		res := run(t, failing, "", "find")
		assert.Equal(t, 1, res.code)
		assert.Equal(t, "Error: server selection timeout", res.stderr)
	})

	t.Run("missing argument", func(t *testing.T) {
		res := run(t, open, "", "get")
		assert.Equal(t, 1, res.code)
		assert.Contains(t, res.stderr, "accepts 1 arg")
	})
}

func TestNewID(t *testing.T) {
	open := func(context.Context, *config.Config) (database.DocumentDatabase, func(context.Context) error, error) {
		return nil, nil, errors.New("must not connect")
	}

	first := run(t, open, "", "new-id")
	second := run(t, open, "", "new-id")
	require.Equal(t, 0, first.code, first.stderr)
	assert.True(t, id.ValidateObjectID(first.stdout))
	assert.NotEqual(t, first.stdout, second.stdout)
}
