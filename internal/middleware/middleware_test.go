package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"sheetdesk/internal/authz"
	"sheetdesk/internal/logging"
)

type stubTokens map[string]authz.Session

func (s stubTokens) ParseToken(token string) (authz.Session, error) {
	sess, ok := s[token]
	if !ok {
		return authz.Session{}, errors.New("bad token")
	}
	return sess, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	tokens := stubTokens{
		"admin-token":  {Username: "boss", Role: authz.RoleAdmin},
		"user-token":   {Username: "Asha", Role: authz.RoleUser},
		"viewer-token": {Username: "Meera", Role: authz.RoleViewer},
	}
	r.Use(RequestID(), AuthMiddleware(tokens), ReadOnlyGuard())
	echo := func(c *gin.Context) {
		sess, _ := SessionFrom(c)
		c.JSON(http.StatusOK, gin.H{
			"user":       sess.Username,
			"ctx_user":   logging.GetUsername(c.Request.Context()),
			"request_id": logging.GetRequestID(c.Request.Context()),
		})
	}
	r.GET("/healthz", echo)
	r.GET("/checklist", echo)
	r.POST("/checklist/submit", echo)
	r.GET("/admin", append(handlers, echo)...)
	return r
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine()

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/checklist", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/checklist", "forged").Code)

	w := do(r, http.MethodGet, "/checklist", "user-token")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user":"Asha"`)
	assert.Contains(t, w.Body.String(), `"ctx_user":"Asha"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = do(r, http.MethodGet, "/checklist?token=user-token", "")
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/checklist", nil)
	req.Header.Set("Authorization", "Basic user-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequestIDIsReused(t *testing.T) {
	r := newEngine()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	assert.Contains(t, w.Body.String(), `"request_id":"req-1"`)
}

func TestReadOnlyGuard(t *testing.T) {
	r := newEngine()
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/checklist", "viewer-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/checklist/submit", "viewer-token").Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/checklist/submit", "user-token").Code)
}

func TestRequireRoles(t *testing.T) {
	r := newEngine(RequireRoles(authz.RoleAdmin))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/admin", "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/admin", "user-token").Code)
}
