// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file guards the admin surface. The storefront runs as a single-tenant
// backend behind transport glue, so admin access is a shared bearer token
// rather than a user system. An empty configured token disables the guard
// (local development).
package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminAuth returns a middleware that requires "Authorization: Bearer <token>"
// to match the configured admin token. Comparison is constant-time. When
// token is empty the middleware is a no-op.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader("Authorization"))
		const prefix = "Bearer "
		if !strings.HasPrefix(got, prefix) ||
			subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(got, prefix)), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "admin token required",
			})
			return
		}
		c.Next()
	}
}
