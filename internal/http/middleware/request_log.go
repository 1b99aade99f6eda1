package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/platform/ctxutil"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			if rd.TraceID != "" {
				fields = append(fields, "trace_id", rd.TraceID)
			}
			if rd.RequestID != "" {
				fields = append(fields, "request_id", rd.RequestID)
			}
			if rd.UserID != "" {
				fields = append(fields, "user_id", rd.UserID)
			}
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Debug("HTTP request", fields...)
		}
	}
}
