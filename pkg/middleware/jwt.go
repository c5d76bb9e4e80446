package middleware

import (
	"bitwise74/auth-api/pkg/response"
	"bitwise74/auth-api/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewJWTMiddleware rejects requests without a valid access token. The token
// is read from the Authorization header ("Bearer <token>") or the auth_token
// cookie. On success the user ID is set as userID
func NewJWTMiddleware(issuer *security.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			response.Error(c, http.StatusUnauthorized, "No access token provided")
			return
		}

		userID, err := issuer.VerifyAccess(tokenStr)
		if err != nil {
			if errors.Is(err, security.ErrTokenExpired) {
				response.Error(c, http.StatusUnauthorized, "Access token expired, please refresh it")
				return
			}

			zap.L().Debug("Rejected access token", zap.Error(err), zap.String("requestID", requestID))
			response.Error(c, http.StatusUnauthorized, "Access token invalid")
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			return ""
		}

		return strings.TrimSpace(token)
	}

	if cookie, err := c.Cookie("auth_token"); err == nil {
		return cookie
	}

	return ""
}
