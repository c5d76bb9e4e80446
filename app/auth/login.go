package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginBody struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func Login(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	var data loginBody
	if err := c.ShouldBindJSON(&data); err != nil {
		metrics.Auth("login", "invalid")
		response.Invalid(c, validators.Messages(err))
		return
	}

	user, err := d.Users.FindByEmail(ctx, validators.NormalizeEmail(data.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.Auth("login", "not_found")
			response.Error(c, http.StatusNotFound, "User not registered")
			return
		}

		c.Error(err)
		return
	}

	ok, err := d.Argon.VerifyPasswd(data.Password, user.PasswordHash)
	if err != nil {
		c.Error(err)
		return
	}

	if !ok {
		metrics.Auth("login", "unauthorized")
		response.Error(c, http.StatusUnauthorized, "Email or password is incorrect")
		return
	}

	// Hashing parameters changed since the hash was made, upgrade it now that
	// the plain password is known
	if d.Argon.NeedsRehash(user.PasswordHash) {
		hash, err := d.Argon.GenerateFromPassword(data.Password)
		if err == nil {
			user.PasswordHash = hash
			err = d.Users.Save(ctx, user)
		}

		if err != nil {
			zap.L().Warn("Failed to rehash password", zap.String("requestID", requestID), zap.String("userID", user.ID), zap.Error(err))
		}
	}

	tokens, err := d.Issuer.IssuePair(ctx, user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	metrics.Auth("login", "success")

	response.OK(c, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}
