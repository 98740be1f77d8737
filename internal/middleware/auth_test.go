package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damoang/tourlog-backend/pkg/jwt"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "level": GetUserLevel(c)})
	})
	return r
}

func doGet(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/me", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	manager := jwt.NewManager(testSecret, time.Hour)
	token, err := manager.GenerateAccessToken("editor-1", "편집자", 10)
	require.NoError(t, err)

	r := newAuthRouter(JWTAuth(manager))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Bearer " + token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doGet(r, tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}

	w := doGet(r, "Bearer "+token)
	assert.Contains(t, w.Body.String(), `"user_id":"editor-1"`)
	assert.Contains(t, w.Body.String(), `"level":10`)
}

func TestJWTAuth_ErrorEnvelope(t *testing.T) {
	r := newAuthRouter(JWTAuth(jwt.NewManager(testSecret, time.Hour)))

	w := doGet(r, "")
	assert.JSONEq(t, `{"success":false,"error":{"code":"unauthenticated","message":"Missing or malformed authorization header"}}`, w.Body.String())
}

func TestOptionalJWTAuth(t *testing.T) {
	manager := jwt.NewManager(testSecret, time.Hour)
	token, err := manager.GenerateAccessToken("reader", "", 1)
	require.NoError(t, err)

	r := newAuthRouter(OptionalJWTAuth(manager))

	w := doGet(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)

	w = doGet(r, "Bearer broken")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "Bearer "+token)
	assert.Contains(t, w.Body.String(), `"user_id":"reader"`)
}
