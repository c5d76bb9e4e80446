package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/util"
	"bitwise74/auth-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type resetBody struct {
	Password string `json:"password" binding:"required,password"`
}

// ResetPassword sets a new password using the token from a reset mail. All
// sessions of the user are ended
func ResetPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	var data resetBody
	if err := c.ShouldBindJSON(&data); err != nil {
		metrics.Auth("reset_password", "invalid")
		response.Invalid(c, validators.Messages(err))
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	userID, err := d.Tokens.ResetPassword(ctx, util.HashToken(c.Param("token")), hash)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrTokenUsed):
			metrics.Auth("reset_password", "unauthorized")
			response.Error(c, http.StatusUnauthorized, "Reset link is invalid or was already used")
		case errors.Is(err, store.ErrTokenExpired):
			metrics.Auth("reset_password", "unauthorized")
			response.Error(c, http.StatusUnauthorized, "Reset link expired")
		default:
			c.Error(err)
		}

		return
	}

	if err := d.Issuer.Revoke(ctx, userID); err != nil {
		zap.L().Error("Failed to revoke refresh token after password reset",
			zap.String("requestID", requestID),
			zap.String("userID", userID),
			zap.Error(err),
		)
	}

	metrics.Auth("reset_password", "success")
	response.OK(c, gin.H{"message": "Password updated successfully"})
}
