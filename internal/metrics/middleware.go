package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpInFlight = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dadpack_http_requests_in_flight",
	Help: "HTTP requests currently being served",
})

// HTTPMetrics records request count, latency and in-flight requests.
// Labels use the route pattern rather than the raw path so that pack and
// card ids cannot explode metric cardinality.
func HTTPMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unknown" // NoRoute handler
		}

		httpInFlight.Inc()
		start := time.Now()
		c.Next()
		httpInFlight.Dec()

		HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
