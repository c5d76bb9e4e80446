package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/security"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ForgotPassword mails a one-time password reset link to the logged in user.
// Runs behind the JWT and verified middlewares
func ForgotPassword(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	user := c.MustGet("user").(*model.User)
	ctx := c.Request.Context()

	expiresAt := time.Now().Add(d.ResetTTL)

	raw, record, err := security.MakeVerificationToken(&security.VerificationTokenOpts{
		UserID:    user.ID,
		Purpose:   model.PurposePasswordReset,
		ExpiresAt: &expiresAt,
	})
	if err != nil {
		c.Error(err)
		return
	}

	if err := d.Tokens.Create(ctx, record); err != nil {
		c.Error(err)
		return
	}

	mail, err := service.ResetMail(user.Email, user.Name, link(c, d, "/auth/resetpassword/"+raw), d.ResetTTL.String())
	if err != nil {
		c.Error(err)
		return
	}

	if err := d.Mail.Enqueue(mail); err != nil {
		c.Error(fmt.Errorf("failed to queue reset mail, %w", err))
		return
	}

	metrics.Auth("forgot_password", "success")
	zap.L().Debug("Password reset requested", zap.String("requestID", requestID), zap.String("userID", user.ID))

	response.OK(c, gin.H{"message": fmt.Sprintf("Verification email sent to %s!", user.Email)})
}
