package auth

import (
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/internal/model"
	"bitwise74/auth-api/internal/service"
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/security"
	"bitwise74/auth-api/pkg/util"
	"bitwise74/auth-api/pkg/validators"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type registerBody struct {
	Name     string `json:"name" binding:"required,notblank,max=64"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,password"`
}

func Register(c *gin.Context, d *internal.Deps) {
	requestID := c.GetString("requestID")
	ctx := c.Request.Context()

	var data registerBody
	if err := c.ShouldBindJSON(&data); err != nil {
		metrics.Auth("register", "invalid")
		response.Invalid(c, validators.Messages(err))
		return
	}

	email := validators.NormalizeEmail(data.Email)

	exists, err := d.Users.EmailExists(ctx, email)
	if err != nil {
		c.Error(err)
		return
	}

	if exists {
		metrics.Auth("register", "conflict")
		response.Error(c, http.StatusConflict, "Email already in use")
		return
	}

	hash, err := d.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.Error(err)
		return
	}

	emailToken, err := security.MakeEmailToken()
	if err != nil {
		c.Error(err)
		return
	}

	id, err := util.NewID(publicIDLength)
	if err != nil {
		c.Error(err)
		return
	}

	user := &model.User{
		ID:           id,
		Email:        email,
		Name:         strings.TrimSpace(data.Name),
		PasswordHash: hash,
		EmailToken:   &emailToken,
	}

	// Tokens first, a cache outage must not leave behind an account the
	// client never got credentials for
	tokens, err := d.Issuer.IssuePair(ctx, user.ID)
	if err != nil {
		c.Error(err)
		return
	}

	if err := d.Users.Create(ctx, user); err != nil {
		if rerr := d.Issuer.Revoke(ctx, user.ID); rerr != nil {
			zap.L().Warn("Failed to revoke tokens of unsaved user", zap.String("requestID", requestID), zap.Error(rerr))
		}

		if errors.Is(err, store.ErrEmailTaken) {
			metrics.Auth("register", "conflict")
			response.Error(c, http.StatusConflict, "Email already in use")
			return
		}

		c.Error(err)
		return
	}

	// The account exists at this point, a failed mail only gets logged. The
	// user can still verify later
	mail, err := service.VerificationMail(user.Email, user.Name, link(c, d, "/auth/verifyemail?token="+url.QueryEscape(emailToken)))
	if err == nil {
		err = d.Mail.Enqueue(mail)
	}

	if err != nil {
		zap.L().Error("Failed to queue verification mail",
			zap.String("requestID", requestID),
			zap.String("userID", user.ID),
			zap.Error(err),
		)
	}

	metrics.Auth("register", "success")
	zap.L().Debug("New user registered", zap.String("requestID", requestID), zap.String("userID", user.ID))

	response.OK(c, gin.H{
		"accessToken":  tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}
