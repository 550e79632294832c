package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(m *Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/facilities/:facility", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/metrics", Handler())
	return r
}

func scrape(t *testing.T, r *gin.Engine) string {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestNewReturnsSharedInstance(t *testing.T) {
	assert.Same(t, New(), New())
}

func TestMiddlewareLabelsByRouteTemplate(t *testing.T) {
	r := newRouter(New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/facilities/42", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	body := scrape(t, r)
	assert.Contains(t, body, `facilityhub_http_requests_total{method="GET",route="/facilities/:facility",status="204"}`)
	assert.Contains(t, body, `facilityhub_http_request_duration_seconds_count{method="GET",route="/facilities/:facility"}`)
	assert.NotContains(t, body, `route="/facilities/42"`)
}

func TestMiddlewareLabelsUnmatchedRoutes(t *testing.T) {
	r := newRouter(New())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Contains(t, scrape(t, r), `facilityhub_http_requests_total{method="GET",route="unmatched",status="404"}`)
}

func TestCacheCountersAreExported(t *testing.T) {
	m := New()
	m.SettingsCacheHits.Inc()
	m.PurgedRowsTotal.WithLabelValues("facilities").Add(2)

	body := scrape(t, newRouter(m))
	assert.Contains(t, body, "facilityhub_settings_cache_hits_total")
	assert.Contains(t, body, `facilityhub_purged_rows_total{table="facilities"}`)
}
