package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IntakeSaved(true)
	m.IntakeSaved(false)
	m.IntakeSaved(false)
	m.ConflictChecked(0, nil)
	m.ConflictChecked(3, nil)
	m.ConflictChecked(0, errors.New("boom"))
	m.Exported("aging")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.IntakeSaves.WithLabelValues("create")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.IntakeSaves.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictChecks.WithLabelValues("clear")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictChecks.WithLabelValues("matches")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ConflictChecks.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CSVExports.WithLabelValues("aging")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.ObserveRequest("/v1/leads", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("", http.StatusNotFound, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_request_duration_seconds_count{route="/v1/leads",status="200"} 1`), body)
	assert.True(t, strings.Contains(body, `route="unmatched"`))
}
