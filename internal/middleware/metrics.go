package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/agenda-api/pkg/httputil"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
)

// Metrics records request count, latency and error class per route
// template. Unmatched routes share the "unmatched" label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)

		m.RequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
		m.RequestsTotal.WithLabelValues(c.Request.Method, path, code).Inc()
		if status >= 400 {
			m.ErrorsTotal.WithLabelValues(c.Request.Method, path, httputil.StatusClass(status)).Inc()
		}
	}
}
