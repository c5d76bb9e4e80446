// Package response writes the JSON envelopes every endpoint answers with
package response

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrorName turns a status code into the short error name sent to clients,
// e.g. 404 -> "NotFound"
func ErrorName(status int) string {
	return strings.ReplaceAll(http.StatusText(status), " ", "")
}

// Error aborts the request and responds with an error envelope
func Error(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success":   false,
		"error":     ErrorName(status),
		"message":   message,
		"requestID": c.GetString("requestID"),
	})
}

// Invalid aborts with 422 and the list of validation problems
func Invalid(c *gin.Context, details []string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{
		"success":   false,
		"error":     ErrorName(http.StatusUnprocessableEntity),
		"message":   "Validation failed",
		"details":   details,
		"requestID": c.GetString("requestID"),
	})
}

// OK responds with 200, merging fields into a success envelope
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"success": true}
	for k, v := range fields {
		body[k] = v
	}

	c.JSON(http.StatusOK, body)
}
