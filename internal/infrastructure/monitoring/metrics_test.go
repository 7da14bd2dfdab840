package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/LogViewer/backend/internal/navigation"
)

var _ navigation.Recorder = (*Metrics)(nil)

// counterValue sums every series of a counter family matching labels.
func counterValue(t *testing.T, m *Metrics, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if hasLabels(metric, labels) {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func hasLabels(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, pair := range metric.GetLabel() {
		if want, ok := labels[pair.GetName()]; ok {
			if want != pair.GetValue() {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestMetricsAreIsolated(t *testing.T) {
	first := NewMetrics()
	second := NewMetrics()

	first.EntryDropped()

	assert.Equal(t, 1.0, counterValue(t, first, "log_viewer_entries_dropped_total", nil))
	assert.Equal(t, 0.0, counterValue(t, second, "log_viewer_entries_dropped_total", nil))
}

func TestNavigationRecorder(t *testing.T) {
	m := NewMetrics()

	m.ObserveList("list", true, navigation.OutcomeOK, 20*time.Millisecond)
	m.ObserveList("list", false, navigation.OutcomeDenied, time.Millisecond)
	m.ObserveList("find", true, navigation.OutcomeOK, time.Second)
	m.FileScanned(true)
	m.FileScanned(false)
	m.FileScanned(false)
	m.ScanFailed(navigation.ScanFailureDecode)

	assert.Equal(t, 1.0, counterValue(t, m, "log_viewer_list_calls_total",
		map[string]string{"operation": "list", "filtered": "true", "outcome": "ok"}))
	assert.Equal(t, 1.0, counterValue(t, m, "log_viewer_list_calls_total",
		map[string]string{"outcome": "denied"}))
	assert.Equal(t, 2.0, counterValue(t, m, "log_viewer_list_calls_total",
		map[string]string{"filtered": "true"}))
	assert.Equal(t, 2.0, counterValue(t, m, "log_viewer_files_scanned_total",
		map[string]string{"matched": "false"}))
	assert.Equal(t, 1.0, counterValue(t, m, "log_viewer_scan_failures_total",
		map[string]string{"reason": "decode"}))

	snap := m.Snapshot()
	assert.EqualValues(t, 3, snap.FilesScanned)
	assert.EqualValues(t, 1, snap.ScanFailures)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(Middleware(m))
	router.GET("/api/fs/children", func(c *gin.Context) {
		c.JSON(http.StatusForbidden, gin.H{"error": "denied"})
	})
	router.GET("/metrics", gin.WrapH(m.Handler()))

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/fs/children?path=/var/log&text=x"+strings.Repeat("y", i), nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 3.0, counterValue(t, m, "log_viewer_http_requests_total",
		map[string]string{"path": "/api/fs/children", "status": "403"}))
	assert.Equal(t, 1.0, counterValue(t, m, "log_viewer_http_requests_total",
		map[string]string{"path": "unmatched", "status": "404"}))

	snap := m.Snapshot()
	assert.EqualValues(t, 4, snap.TotalRequests)
	assert.EqualValues(t, 4, snap.TotalErrors)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "log_viewer_http_requests_total")
	assert.Contains(t, string(body), "log_viewer_uptime_seconds")
	assert.Contains(t, string(body), "go_goroutines")
}
