package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDHeader carries the trace ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

// GinMiddleware puts a trace ID on the request context and logs one line per
// request once the handler chain has finished.
func GinMiddleware(l *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		traceID := c.GetHeader(RequestIDHeader)
		ctx := WithTraceID(c.Request.Context(), traceID)
		traceID = GetTraceID(ctx)
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, traceID)

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		reqLog := l.WithTraceID(traceID)
		if c.Writer.Status() >= http.StatusInternalServerError {
			reqLog.Error("http request", fields...)
			return
		}
		reqLog.Info("http request", fields...)
	}
}
