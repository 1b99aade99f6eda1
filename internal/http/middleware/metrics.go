package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cqox-backend/internal/observability"
)

// Metrics instruments request counts and latency by route template.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		m.IncAPIInflight()
		defer m.DecAPIInflight()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.ObserveAPIRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
