package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neighborly/internal/pkg/response"
)

// CronTokenAuth guards internal cron endpoints with a static bearer
// secret. An empty secret disables the check; that is only acceptable
// for local development.
func CronTokenAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(secret)) != 1 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid cron token")
			c.Abort()
			return
		}

		c.Next()
	}
}
