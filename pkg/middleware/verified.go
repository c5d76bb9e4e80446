package middleware

import (
	"bitwise74/auth-api/internal/store"
	"bitwise74/auth-api/pkg/response"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewVerifiedMiddleware must run after the JWT middleware. It loads the user
// behind the token, rejects the request if their email isn't verified and
// sets the loaded user as user
func NewVerifiedMiddleware(users *store.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				response.Error(c, http.StatusUnauthorized, "Account Not Found")
				return
			}

			c.Error(err)
			c.Abort()
			return
		}

		if !user.Verified {
			response.Error(c, http.StatusUnauthorized, "Please verify your email before using this endpoint")
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
