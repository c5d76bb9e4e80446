package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/security"
	"bitwise74/auth-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// refreshError answers 401 for token problems. Anything else is an internal
// error
func refreshError(c *gin.Context, event string, err error) {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		metrics.Auth(event, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "Refresh token expired")
	case errors.Is(err, security.ErrTokenRevoked), errors.Is(err, security.ErrTokenInvalid):
		metrics.Auth(event, "unauthorized")
		response.Error(c, http.StatusUnauthorized, "Refresh token invalid")
	default:
		c.Error(err)
	}
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token stops working
func Refresh(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	var data refreshBody
	if err := c.ShouldBindJSON(&data); err != nil {
		metrics.Auth("refresh", "invalid")
		response.Invalid(c, validators.Messages(err))
		return
	}

	userID, err := d.Issuer.VerifyRefresh(ctx, data.RefreshToken)
	if err != nil {
		zap.L().Debug("Rejected refresh token", zap.String("requestID", requestID), zap.Error(err))
		refreshError(c, "refresh", err)
		return
	}

	tokens, err := d.Issuer.IssuePair(ctx, userID)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.Auth("refresh", "success")

	response.OK(c, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}
