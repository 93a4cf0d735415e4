package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	userEmailKey = "user_email"
	userRoleKey  = "user_role"

	anonymousUser = "anonymous"
)

// GatewayAuth trusts user info from gateway headers (X-User-ID, X-User-Email, X-User-Role).
// Used when the API runs behind a gateway that already validated the caller.
//
// This should ONLY be used with proper network isolation.
func GatewayAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authentication required",
				"message": "Missing X-User-ID header from gateway",
			})
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userEmailKey, c.GetHeader("X-User-Email"))
		c.Set(userRoleKey, c.GetHeader("X-User-Role"))
		c.Next()
	}
}

// NoAuth lets every request through as the anonymous user (AUTH_MODE=none)
func NoAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userIDKey, anonymousUser)
		c.Next()
	}
}

// UserID returns the authenticated user id, or "" when none was set
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// UserEmail returns the authenticated user's email if the auth mode provides one
func UserEmail(c *gin.Context) string {
	return c.GetString(userEmailKey)
}
