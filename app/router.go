// Package app contains the router and all endpoints available
package app

import (
	"bitwise74/auth-api/app/auth"
	"bitwise74/auth-api/app/root"
	"bitwise74/auth-api/internal"
	"bitwise74/auth-api/pkg/metrics"
	"bitwise74/auth-api/pkg/middleware"
	"bitwise74/auth-api/pkg/validators"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultMaxBodySize = 1 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	validators.Register()

	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     v.GetStringSlice("host.cors_origins"),
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("requestID", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewMetricsMiddleware(),
		middleware.NewErrorMiddleware(),
	)

	router.HandleMethodNotAllowed = true

	maxBodySize := v.GetInt64("security.max_body_size")
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	jwt := middleware.NewJWTMiddleware(d.Issuer)
	verified := middleware.NewVerifiedMiddleware(d.Users)
	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled:   v.GetBool("cloudflare.turnstile.enabled"),
		Secret:    v.GetString("cloudflare.turnstile.secret_token"),
		VerifyURL: v.GetString("cloudflare.turnstile.verify_url"),
	})

	main := router.Group(d.BasePath)
	{
		// HEAD /heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })

		// GET /metrics			-> Prometheus metrics
		if d.Registry != nil {
			main.GET("/metrics", gin.WrapH(metrics.Handler(d.Registry)))
		}
	}

	a := main.Group("/auth", middleware.BodySizeLimiter(maxBodySize))
	{
		// POST /auth/register		-> Registers a new user and sends a verification mail
		a.POST("/register", turnstile, func(c *gin.Context) { auth.Register(c, d) })

		// POST /auth/login		-> Logs in a user and returns a token pair
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /auth/refreshtoken	-> Exchanges a refresh token for a new token pair
		a.POST("/refreshtoken", func(c *gin.Context) { auth.Refresh(c, d) })

		// DELETE /auth/logout		-> Deletes the refresh token of the logged in user
		a.DELETE("/logout", jwt, verified, func(c *gin.Context) { auth.Logout(c, d) })

		// POST /auth/forgotpassword	-> Mails a password reset link to the logged in user
		a.POST("/forgotpassword", jwt, verified, turnstile, func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// PATCH /auth/resetpassword/:token	-> Sets a new password using a reset link
		a.PATCH("/resetpassword/:token", func(c *gin.Context) { auth.ResetPassword(c, d) })

		// GET /auth/verifyemail	-> Verifies the email of a user
		a.GET("/verifyemail", func(c *gin.Context) { auth.VerifyEmail(c, d) })

		// HEAD /auth/validate		-> Validates an access token
		a.HEAD("/validate", jwt, root.Validate)
	}

	return router
}
