package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.RecordFetch("yahoo", "failure")
	r.RecordFetch("stooq", "success")
	r.RecordFetch("stooq", "success")
	r.RecordCache("hit")
	r.RecordPage("no_data")

	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("yahoo", "failure")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.fetchAttempts.WithLabelValues("stooq", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pageRuns.WithLabelValues("no_data")))
}

func TestIndependentRecorders(t *testing.T) {
	// separate registries must not collide
	a, b := New(), New()
	a.SessionOpened()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.sessions))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sessions))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.RecordFetch("yahoo", "success")
	r.RecordCache("miss")
	r.RecordForecast(0.1)
	r.SessionOpened()
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := New()
	r.RecordPage("ok")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stockforecaster_page_runs_total{outcome="ok"} 1`)
}
