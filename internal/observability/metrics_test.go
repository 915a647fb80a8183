package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("ideas")

	m.RecordRequest("/api/ideas", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/api/ideas", "GET", 200, 5*time.Millisecond)
	m.RecordError("/api/ideas/:id", "PUT", "FORBIDDEN")
	m.RecordAuthFailure("expired")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/api/ideas", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/api/ideas/:id", "PUT", "FORBIDDEN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authFailures.WithLabelValues("expired")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAuthFailure("x")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("ideas")
	m.RecordAuthFailure("bad_signature")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ideas_auth_failures_total{reason="bad_signature"} 1`)
}
