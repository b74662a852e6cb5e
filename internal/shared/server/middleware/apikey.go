package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"chatlens-backend/internal/shared/server/respond"
)

const callerKey = "caller"

// APIKey guards the API with a shared key supplied by the bot front-end.
// When no key is configured (dev/local), requests pass through unauthenticated.
func APIKey(expected string) gin.HandlerFunc {
	expected = strings.TrimSpace(expected)
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader("X-Api-Key"))
		if got == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				got = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			}
		}
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid API key", nil)
			return
		}
		c.Set(callerKey, "bot")
		c.Next()
	}
}

// CallerFromContext returns the authenticated caller label, if any.
func CallerFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(callerKey)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
