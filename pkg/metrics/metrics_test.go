package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pageforge/pkg/metrics"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.New(metrics.WithNamespace("test"))

	m.Cache(metrics.CacheHit)
	m.Cache(metrics.CacheHit)
	m.Cache(metrics.CacheMiss)
	m.Intercepted("auth")
	m.ObserveRender("/blog/{slug}", "plain", http.StatusOK, 20*time.Millisecond)

	n, err := testutil.GatherAndCount(m.Registry(), "test_cache_operations_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `test_cache_operations_total{result="hit"} 2`)
	require.Contains(t, rec.Body.String(), `test_interceptions_total{interceptor="auth"} 1`)
	require.Contains(t, rec.Body.String(), `route="/blog/{slug}"`)
}

func TestNilMetrics(t *testing.T) {
	t.Parallel()

	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.Cache(metrics.CacheHit)
		m.Intercepted("rpc")
		m.ObserveRender("/", "plain", 200, time.Millisecond)
	})
}
