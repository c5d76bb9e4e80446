package middleware

import (
	"bitwise74/auth-api/pkg/response"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"
	"go.uber.org/zap"
)

// NewErrorMiddleware turns errors attached with c.Error into a 500 response.
// Handlers answer every expected failure themselves, so anything landing
// here is unexpected and gets logged
func NewErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString("requestID")

		for _, ginErr := range c.Errors {
			fields := []zap.Field{
				zap.Error(ginErr.Err),
				zap.String("requestID", requestID),
				zap.String("path", c.FullPath()),
			}

			if oopsErr, ok := oops.AsOops(ginErr.Err); ok {
				fields = append(fields,
					zap.Any("code", oopsErr.Code()),
					zap.Any("context", oopsErr.Context()))
			}

			zap.L().Error("Request failed", fields...)
		}

		if c.Writer.Written() {
			return
		}

		response.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
