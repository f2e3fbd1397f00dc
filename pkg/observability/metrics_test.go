package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordAuthEvent("login", "success")
		m.RecordRateLimited("login")
		m.RecordBlacklisted()
		m.RecordPurged(3)
		m.ObserveStorage("get_user", "postgres", time.Now(), nil)
		m.RecordCache("blacklist", true)
	})
}

func TestMetrics_Recorders(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordAuthEvent("login", "success")
	m.RecordAuthEvent("login", "success")
	m.RecordRateLimited("login")
	m.RecordBlacklisted()
	m.RecordPurged(0)
	m.RecordPurged(4)
	m.ObserveStorage("create_user", "postgres", time.Now(), errors.New("boom"))
	m.RecordCache("blacklist", true)
	m.RecordCache("blacklist", false)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues("login", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitedTotal.WithLabelValues("login")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BlacklistedTokens))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.BlacklistPurgedTotal))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StorageErrorsTotal.WithLabelValues("create_user", "postgres")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("blacklist")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("blacklist")))
}

func TestHTTPMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	router := mux.NewRouter()
	router.Use(HTTPMetricsMiddleware(m))
	router.HandleFunc("/api/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":"failed"}`))
	})

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/users/"+id, nil))
	}

	assert.Equal(t, float64(3), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/users/{id}", "404")))
}

func TestMetricsHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	m.RecordBlacklisted()

	rec := httptest.NewRecorder()
	MetricsHandler(registry).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "shopadmin_blacklisted_tokens_total"))
}
