// Package root contains the endpoints that don't belong to a resource
package root

import (
	"bitwise74/auth-api/internal"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Heartbeat answers 200 while the database is reachable
func Heartbeat(c *gin.Context, d *internal.Deps) {
	sqlDB, err := d.DB.DB()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		err = sqlDB.PingContext(ctx)
	}

	if err != nil {
		zap.L().Error("Heartbeat failed", zap.String("requestID", c.GetString("requestID")), zap.Error(err))
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}

	c.Status(http.StatusOK)
}
