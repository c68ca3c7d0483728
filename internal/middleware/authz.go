package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sheetdesk/internal/authz"
)

func RequireRoles(allowed ...string) gin.HandlerFunc {
	allowedSet := map[string]struct{}{}
	for _, r := range allowed {
		allowedSet[strings.ToLower(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session in context"})
			return
		}
		if _, ok := allowedSet[strings.ToLower(sess.Role)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ReadOnlyGuard blocks unsafe methods for viewers.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := SessionFrom(c)
		if authz.IsReadOnly(sess.Role) {
			switch c.Request.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only role"})
				return
			}
		}
		c.Next()
	}
}
