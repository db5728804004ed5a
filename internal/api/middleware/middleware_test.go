package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"engage-go/internal/config"
	"engage-go/internal/model"
	"engage-go/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupJWT(t *testing.T) {
	t.Helper()
	config.Set(&config.Config{
		App: config.AppConfig{Name: "engage-go"},
		JWT: config.JWTConfig{Secret: "middleware-test", ExpireHours: 1},
	})
}

// whoami 回显上下文中的用户 ID
func whoami(c *gin.Context) {
	id, ok := GetCurrentUserID(c)
	c.JSON(http.StatusOK, gin.H{"user_id": id, "ok": ok})
}

func serve(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, userID int64) string {
	t.Helper()
	token, err := utils.GenerateToken(userID)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthRequired(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", AuthRequired(), whoami)

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer not-a-jwt").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Basic Zm9vOmJhcg==").Code)

	w := serve(r, bearer(t, 42))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":42,"ok":true}`, w.Body.String())

	w = serve(r, "bearer "+bearer(t, 7)[len("Bearer "):])
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	setupJWT(t)
	r := gin.New()
	r.GET("/", OptionalAuth(), whoami)

	w := serve(r, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"ok":false}`, w.Body.String())

	// 无效令牌按匿名处理
	w = serve(r, "Bearer garbage")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0,"ok":false}`, w.Body.String())

	w = serve(r, bearer(t, 9))
	assert.JSONEq(t, `{"user_id":9,"ok":true}`, w.Body.String())
}

func TestAdminRequired(t *testing.T) {
	setupJWT(t)
	roles := map[int64]string{1: model.RoleAdmin, 2: model.RoleUser}
	fetch := func(id int64) (string, error) {
		role, ok := roles[id]
		if !ok {
			return "", errors.New("not found")
		}
		return role, nil
	}

	r := gin.New()
	r.GET("/", AuthRequired(), AdminRequired(fetch), whoami)

	assert.Equal(t, http.StatusOK, serve(r, bearer(t, 1)).Code)
	assert.Equal(t, http.StatusForbidden, serve(r, bearer(t, 2)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, bearer(t, 3)).Code)

	bare := gin.New()
	bare.GET("/", AdminRequired(fetch), whoami)
	assert.Equal(t, http.StatusUnauthorized, serve(bare, "").Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(ContextKeyRequestID))
	})

	w := serve(r, "")
	generated := w.Header().Get(HeaderRequestID)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-123", w.Body.String())
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery())
	r.GET("/", func(*gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-panic")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":500,"message":"服务器内部错误","type":"InternalServerError","request_id":"req-panic"}}`, w.Body.String())
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  bearer   abc "))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}

func TestAuthRequiredExpiredMessage(t *testing.T) {
	config.Set(&config.Config{
		App: config.AppConfig{Name: "engage-go"},
		JWT: config.JWTConfig{Secret: "middleware-test", ExpireHours: -1},
	})
	token, err := utils.GenerateToken(3)
	require.NoError(t, err)
	setupJWT(t)

	r := gin.New()
	r.GET("/", AuthRequired(), whoami)
	w := serve(r, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "认证令牌已过期")
}
