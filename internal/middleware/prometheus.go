package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/pathfinder/internal/metrics"
)

// HTTPMetrics records request duration and count per route pattern. Requests
// to the skipped paths (the scrape endpoint) are not recorded. Searches cut off
// by QueryTimeout or the memory ceiling are also counted in ErrorsTotal.
func HTTPMetrics(skip ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if slices.Contains(skip, c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}

		code := c.Writer.Status()
		status := strconv.Itoa(code)

		metrics.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()

		switch code {
		case http.StatusGatewayTimeout:
			metrics.ErrorsTotal.WithLabelValues("query_timeout").Inc()
		case http.StatusInsufficientStorage:
			metrics.ErrorsTotal.WithLabelValues("http_memory_limit").Inc()
		}
	}
}
