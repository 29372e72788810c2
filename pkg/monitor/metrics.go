// Prometheus exposition for the API server: request-level metrics plus a
// few domain gauges the dashboards scrape.
package monitor

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eln_http_requests_total",
		Help: "HTTP requests processed, by method, route and status code.",
	}, []string{"method", "route", "code"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eln_http_request_duration_seconds",
		Help:    "HTTP request latency, by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	experimentsSigned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eln_experiments_signed_total",
		Help: "Experiments signed since process start.",
	})

	activityLogFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eln_activity_log_failures_total",
		Help: "Activity log writes that failed (fire-and-forget, not rolled back).",
	})
)

// RequestMetrics records counts and latency per route template.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the exposition endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func CountExperimentSigned() { experimentsSigned.Inc() }

func CountActivityLogFailure() { activityLogFailures.Inc() }
