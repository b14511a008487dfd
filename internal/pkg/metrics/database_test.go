package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDBOperation(t *testing.T) {
	before := testutil.ToFloat64(dbOperationTotal.WithLabelValues("Users", "find_one"))
	slowBefore := testutil.ToFloat64(dbSlowOperations.WithLabelValues("Users", "find_one"))

	RecordDBOperation("Users", "find_one", time.Millisecond)
	RecordDBOperation("Users", "find_one", 2*SlowOperationThreshold)

	assert.Equal(t, before+2, testutil.ToFloat64(dbOperationTotal.WithLabelValues("Users", "find_one")))
	assert.Equal(t, slowBefore+1, testutil.ToFloat64(dbSlowOperations.WithLabelValues("Users", "find_one")))
}

func TestRecordDBError(t *testing.T) {
	before := testutil.ToFloat64(dbOperationErrors.WithLabelValues("Users", "save"))
	RecordDBError("Users", "save")
	assert.Equal(t, before+1, testutil.ToFloat64(dbOperationErrors.WithLabelValues("Users", "save")))
}
