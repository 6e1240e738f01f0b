// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/utils"
)

// LoggingMiddleware logs every request with its correlation id. Liveness and
// readiness probes are skipped to keep the log usable.
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/live" || path == "/ready" {
			return
		}

		extra := []zap.Field{}
		if requestID, exists := c.Get("request_id"); exists {
			extra = append(extra, zap.String("request_id", requestID.(string)))
		}
		if raw := c.Request.URL.RawQuery; raw != "" {
			extra = append(extra, zap.String("query", raw))
		}

		logger.LogAPIRequest(
			c.Request.Method,
			path,
			c.Request.UserAgent(),
			c.ClientIP(),
			c.Writer.Status(),
			time.Since(startTime),
			extra...,
		)
	}
}
