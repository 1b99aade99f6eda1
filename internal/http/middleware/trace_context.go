package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/cqox-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext must run after otelgin so the span's trace id is
// visible here.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := strings.TrimSpace(c.GetHeader(headerRequestID))
		if reqID == "" {
			reqID = uuid.New().String()
		}
		traceID := ""
		if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.HasTraceID() {
			traceID = spanCtx.TraceID().String()
		}
		if traceID == "" {
			traceID = strings.TrimSpace(c.GetHeader(headerTraceID))
		}
		if traceID == "" {
			traceID = uuid.New().String()
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TraceID:   traceID,
			RequestID: reqID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Writer.Header().Set(headerTraceID, traceID)
		c.Writer.Header().Set(headerRequestID, reqID)
		c.Next()
	}
}
