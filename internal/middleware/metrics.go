package middleware

import (
	"strconv"
	"time"

	"bloodlink/internal/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware records request latency by matched route template so
// path parameters do not explode label cardinality.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
