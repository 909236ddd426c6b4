package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"neighborly/internal/pkg/jwt"
	"neighborly/internal/pkg/response"
)

// JWTAuth validates the bearer token and stores the actor identity in
// the request context. Downstream services trust user_id, tenant_id
// and role; whether the actor may perform a given operation is decided
// per operation.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			c.Abort()
			return
		}
		if claims.UserID == "" || claims.TenantID == "" {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Token is missing identity claims")
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("tenant_id", claims.TenantID)
		c.Set("role", claims.Role)
		c.Next()
	}
}
