package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
)

const (
	sessionKey   = "session"
	requestIDKey = "request_id"
)

// TokenParser turns a bearer token into a session.
type TokenParser interface {
	ParseToken(token string) (authz.Session, error)
}

// endpoints reachable without a token
func isPublicPath(path string) bool {
	switch path {
	case "/login", "/healthz":
		return true
	}
	return strings.HasPrefix(path, "/swagger") || strings.HasPrefix(path, "/docs")
}

// RequestID tags the request context with an id, reusing X-Request-ID when
// the caller sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func AuthMiddleware(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions || isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		sess, err := tokens.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(sessionKey, sess)
		c.Request = c.Request.WithContext(logging.WithUsername(c.Request.Context(), sess.Username))
		c.Next()
	}
}

// bearerToken reads the Authorization header; websocket clients that cannot
// set headers pass ?token= instead.
func bearerToken(c *gin.Context) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return strings.TrimSpace(c.Query("token"))
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// SessionFrom returns the session AuthMiddleware stored on c.
func SessionFrom(c *gin.Context) (authz.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return authz.Session{}, false
	}
	sess, ok := v.(authz.Session)
	return sess, ok
}
