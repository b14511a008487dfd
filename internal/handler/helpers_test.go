package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agenttrace/docstore/internal/middleware"
	"github.com/agenttrace/docstore/internal/pkg/database"
	"github.com/agenttrace/docstore/internal/pkg/logger"
)

func TestErrorResponse_LogsRequestID(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	prev := logger.Log
	logger.Log = zap.New(core)
	t.Cleanup(func() { logger.Log = prev })

	app, db := newDocumentsApp(t)

	db.FailNext(database.OpSave, errors.New("not primary"))
	resp, body := do(t, app, http.MethodPost, "/v1/collections/Users/documents", `{"name": "Bob"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, resp.Header.Get(middleware.HeaderRequestID), fields["request_id"])
	assert.Equal(t, decodeError(t, body).RequestID, fields["request_id"])
	assert.Equal(t, "/v1/collections/Users/documents", fields["path"])

	t.Run("client errors are not logged", func(t *testing.T) {
		resp, _ := do(t, app, http.MethodPost, "/v1/collections/Users/documents", `{name: }`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
	})
}
