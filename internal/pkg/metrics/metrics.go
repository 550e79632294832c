package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	SettingsCacheHits   prometheus.Counter
	SettingsCacheMisses prometheus.Counter

	PurgedRowsTotal *prometheus.CounterVec
}

// New registers the collectors once and returns the shared instance.
//
// Metrics:
//   - facilityhub_http_requests_total{method,route,status}
//   - facilityhub_http_request_duration_seconds{method,route}
//   - facilityhub_settings_cache_hits_total / _misses_total
//   - facilityhub_purged_rows_total{table}
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "facilityhub_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "route", "status"},
			),
			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "facilityhub_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			SettingsCacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "facilityhub_settings_cache_hits_total",
				Help: "Settings resolutions served from cache",
			}),
			SettingsCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "facilityhub_settings_cache_misses_total",
				Help: "Settings resolutions that walked the fallback chain",
			}),
			PurgedRowsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "facilityhub_purged_rows_total",
					Help: "Soft-deleted rows permanently removed by the purge job",
				},
				[]string{"table"},
			),
		}
	})
	return globalMetrics
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
