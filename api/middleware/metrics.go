package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/cinescrape/metrics"
)

// Metrics records one Prometheus sample per request. Unmatched routes
// share a single label so arbitrary paths cannot blow up cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
