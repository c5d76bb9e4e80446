// Package auth contains the handlers for registering, logging in and
// managing the credentials of users
package auth

import (
	"bitwise74/auth-api/internal"
	"strings"

	"github.com/gin-gonic/gin"
)

const publicIDLength = 16

// link builds an absolute URL pointing at path on this server
func link(c *gin.Context, d *internal.Deps, path string) string {
	base := strings.TrimSuffix(d.PublicURL, "/")
	if base == "" {
		scheme := "http"
		if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}

		base = scheme + "://" + c.Request.Host
	}

	return base + d.BasePath + path
}
