// internal/middleware/logging_middleware.go
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"rotator-service/internal/utils"
)

// LoggingMiddleware writes one access log entry per request. Successful
// requests to quietPaths (probes polled every few seconds) are not logged.
func LoggingMiddleware(logger *utils.ServiceLogger, quietPaths ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(quietPaths))
	for _, path := range quietPaths {
		quiet[path] = struct{}{}
	}

	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()

		status := c.Writer.Status()
		if _, ok := quiet[c.Request.URL.Path]; ok && status < http.StatusBadRequest {
			return
		}

		logger.LogAPIRequest(
			c.Request.Method,
			c.Request.URL.Path,
			c.Request.UserAgent(),
			c.ClientIP(),
			utils.GetRequestID(c),
			status,
			time.Since(startTime),
		)
	}
}
