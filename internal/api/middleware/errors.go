package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// ErrorHandler logs errors handlers attached with c.Error. The response
// itself is written by the handler.
func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, e := range c.Errors {
			logger.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", c.Writer.Status(),
				"error", e.Err,
			)
		}
	}
}
