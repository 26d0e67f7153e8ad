package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freight-dispatch-api-server/internal/auth"
	"freight-dispatch-api-server/internal/state"
)

// Context keys set by Authenticate and read by the handlers.
const (
	CtxActorID = "actor_id"
	CtxRole    = "actor_role"
	CtxEmail   = "actor_email"
)

// Authenticate validates the bearer token and places the actor's identity
// and role into the request context.
func Authenticate(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := auth.ParseJWT(secret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(CtxActorID, claims.ActorID)
		c.Set(CtxRole, claims.Role)
		c.Set(CtxEmail, claims.Email)

		c.Next()
	}
}

// Authorize is a middleware factory restricting a route group to the given
// roles. This only gates the HTTP surface; the transition validator applies
// its own per-state authorization regardless.
func Authorize(allowedRoles ...state.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get(CtxRole)
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Actor role not found in context"})
			return
		}

		role, ok := roleValue.(state.Role)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Actor role has an invalid type"})
			return
		}

		for _, allowed := range allowedRoles {
			if allowed == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// ActingRole extracts the authenticated role from the gin context.
func ActingRole(c *gin.Context) state.Role {
	if role, ok := c.Get(CtxRole); ok {
		if r, ok := role.(state.Role); ok {
			return r
		}
	}
	return ""
}

// ActorID extracts the authenticated actor id from the gin context.
func ActorID(c *gin.Context) string {
	return c.GetString(CtxActorID)
}
