// internal/middleware/recovery_middleware.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"print-service/internal/utils"
)

// RecoveryMiddleware converts a handler panic into a 500 response. The panic
// is logged with the request's correlation id so it can be matched against
// the access log.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		fields := []zap.Field{
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.String("client_ip", c.ClientIP()),
			zap.Stack("stacktrace"),
		}
		if requestID, exists := c.Get("request_id"); exists {
			fields = append(fields, zap.String("request_id", requestID.(string)))
		}
		logger.Error("Panic recovered", fields...)

		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error", nil)
	})
}
