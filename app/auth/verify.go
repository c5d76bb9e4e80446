package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func VerifyEmail(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	token := c.Query("token")
	if token == "" {
		metrics.Auth("verify_email", "invalid")
		response.Invalid(c, []string{"token is required"})
		return
	}

	user, err := d.Users.FindByEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Auth("verify_email", "unauthorized")
			response.Error(c, http.StatusUnauthorized, "Token is invalid or was already used")
			return
		}

		c.Error(err)
		return
	}

	if err := d.Users.MarkVerified(ctx, user); err != nil {
		c.Error(err)
		return
	}

	metrics.Auth("verify_email", "success")
	zap.L().Debug("User verified their email", zap.String("requestID", requestID), zap.String("userID", user.ID))

	response.OK(c, gin.H{"message": "Email verified successfully"})
}
