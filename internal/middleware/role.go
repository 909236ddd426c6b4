package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"neighborly/internal/pkg/response"
)

// RequireRole ensures the authenticated user carries one of the given
// roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

// ModeratorOnly admits moderators and admins.
func ModeratorOnly() gin.HandlerFunc {
	return RequireRole("moderator", "admin")
}

// AdminOnly admits admins.
func AdminOnly() gin.HandlerFunc {
	return RequireRole("admin")
}
