package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logout deletes the stored refresh token of the logged in user. The refresh
// token in the body has to be the current one of that user
func Logout(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	userID := c.GetString("userID")
	ctx := c.Request.Context()

	var data refreshBody
	if err := c.ShouldBindJSON(&data); err != nil {
		metrics.Auth("logout", "invalid")
		response.Invalid(c, validators.Messages(err))
		return
	}

	owner, err := d.Issuer.VerifyRefresh(ctx, data.RefreshToken)
	if err != nil {
		refreshError(c, "logout", err)
		return
	}

	if owner != userID {
		zap.L().Warn("Refresh token of another user presented on logout",
			zap.String("requestID", requestID),
			zap.String("userID", userID),
		)

		metrics.Auth("logout", "unauthorized")
		response.Error(c, http.StatusUnauthorized, "Refresh token invalid")
		return
	}

	if err := d.Issuer.Revoke(ctx, userID); err != nil {
		c.Error(err)
		return
	}

	metrics.Auth("logout", "success")
	c.Status(http.StatusNoContent)
}
