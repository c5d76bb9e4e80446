package middleware

import (
	"bitwise74/auth-api/pkg/response"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const DefaultTurnstileURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

type TurnstileConfig struct {
	Enabled   bool
	Secret    string
	VerifyURL string
	Client    *http.Client
}

type turnstileResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

// NewTurnstileMiddleware checks the Cloudflare turnstile token sent in the
// TurnstileToken header. Does nothing when disabled
func NewTurnstileMiddleware(cfg TurnstileConfig) gin.HandlerFunc {
	if cfg.VerifyURL == "" {
		cfg.VerifyURL = DefaultTurnstileURL
	}

	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.Next()
			return
		}

		token := c.GetHeader("TurnstileToken")
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "Missing or invalid turnstile token")
			return
		}

		ok, err := verifyTurnstile(c.Request.Context(), cfg, token, c.ClientIP())
		if err != nil {
			zap.L().Error("Failed to verify turnstile token", zap.Error(err), zap.String("requestID", c.GetString("requestID")))
		}

		if !ok {
			response.Error(c, http.StatusUnauthorized, "Missing or invalid turnstile token")
			return
		}

		c.Next()
	}
}

func verifyTurnstile(ctx context.Context, cfg TurnstileConfig, token, ip string) (bool, error) {
	payload, err := json.Marshal(gin.H{
		"secret":   cfg.Secret,
		"response": token,
		"remoteip": ip,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.VerifyURL, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var res turnstileResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return false, err
	}

	return res.Success, nil
}
