package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveBackend(t *testing.T) {
	m := New()
	m.ObserveBackend("GetClient", "ok", 20*time.Millisecond)
	m.ObserveBackend("GetClient", "ok", 30*time.Millisecond)
	m.ObserveBackend("GetClient", "rejected", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GetClient", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("GetClient", "rejected")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveBackend("ListClients", "ok", time.Second)
	m.IncrementRefDataFallback("countries", "empty")
	m.IncrementFormRejection("billing")
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New()
	m.IncrementRefDataFallback("states", "cache")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `crm_panel_refdata_fallbacks_total{list="states",source="cache"} 1`))
}
