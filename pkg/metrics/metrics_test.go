package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveResolution("primary")
	m.ObserveResolution("primary")
	m.ObserveResolution("degraded")
	m.ObserveConversion("ok")
	m.ObserveStoreError("set")

	assert.InDelta(t, 2, testutil.ToFloat64(m.RateResolutionsTotal.WithLabelValues("primary")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RateResolutionsTotal.WithLabelValues("degraded")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ConversionsTotal.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StoreErrorsTotal.WithLabelValues("set")), 0)
}

func TestMetrics_SourceFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSourceFetch("exchangerate-api", time.Now(), nil)
	m.ObserveSourceFetch("exchangerate-api", time.Now(), errors.New("boom"))

	count, err := testutil.GatherAndCount(reg, "fxwidget_rate_source_fetch_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("cached")
		m.ObserveSourceFetch("x", time.Now(), nil)
		m.ObserveConversion("ok")
		m.ObserveStoreError("get")
	})
}
