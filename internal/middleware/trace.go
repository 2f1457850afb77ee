package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"affiliate-settlement-api/internal/logger"
)

var accessLog = logger.NewLogger("access")

// Trace tags every request with an X-Trace-ID and writes one access log line
// per request. The trace id also lands in the gin context for handlers that
// need to propagate it.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := uuid.NewString()
		c.Set("trace_id", traceID)
		c.Writer.Header().Set("X-Trace-ID", traceID)

		start := time.Now()
		c.Next()

		accessLog.WithFields(logrus.Fields{
			"trace_id":   traceID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"ip":         c.ClientIP(),
			"latency_ms": time.Since(start).Milliseconds(),
		}).Info("request")
	}
}
