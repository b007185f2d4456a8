package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordOperation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordOperation("union", ResultOK, 0.01)
	m.RecordOperation("union", ResultOK, 0.02)
	m.RecordOperation("difference", ResultGeometry, 0.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Operations.WithLabelValues("union", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("difference", ResultGeometry)))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestRecordUntaggedAndMerges(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordUntagged(0, 3)
	m.RecordUntagged(2, 1)
	m.RecordMerges(2)
	m.RecordMerges(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Untagged.WithLabelValues("face")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Untagged.WithLabelValues("edge")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PreUnionMerges))
}

func TestRegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordOperation("union", ResultOK, 0.1)
	m.RecordMerges(1)

	n, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordOperation("union", ResultOK, 1)
		m.RecordUntagged(1, 1)
		m.RecordMerges(1)
	})
}

func TestNilRegistererDoesNotRegister(t *testing.T) {
	a := New(nil)
	b := New(nil)
	a.RecordMerges(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.PreUnionMerges))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.PreUnionMerges))
}
