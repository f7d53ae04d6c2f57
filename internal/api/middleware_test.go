package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Mingzhe994/work-calendar-page/internal/api"
	"github.com/Mingzhe994/work-calendar-page/internal/database"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newAuthService 建一个带内存库的认证服务
func newAuthService(t *testing.T) service.AuthService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	workflows := service.NewWorkflowService(db, nil)
	return service.NewAuthService(db, workflows, "test-secret")
}

// authedRouter 挂载认证中间件的最小路由
func authedRouter(authSvc service.AuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", api.AuthMiddleware(authSvc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": api.CurrentUserID(c)})
	})
	return router
}

// TestAuthMiddlewareRejectsMissingToken 缺少令牌被拒绝
func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	router := authedRouter(newAuthService(t))

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic abc")
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// TestAuthMiddlewareAcceptsValidToken 合法令牌放行并注入用户 ID
func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	authSvc := newAuthService(t)
	router := authedRouter(authSvc)

	_, err := authSvc.Register(&service.RegisterRequest{
		Username: "zhangsan", Email: "zhangsan@example.com", Password: "pass1234",
	})
	require.NoError(t, err)
	token, _, err := authSvc.Login("zhangsan", "pass1234")
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "user_id")
}

// TestRequestIDMiddleware 透传或生成请求 ID
func TestRequestIDMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.RequestIDMiddleware())
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	router.ServeHTTP(recorder, req)
	assert.Equal(t, "fixed-id", recorder.Header().Get("X-Request-ID"))

	recorder = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	router.ServeHTTP(recorder, req)
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

// TestCORSMiddlewarePreflight 预检请求直接返回
func TestCORSMiddlewarePreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.CORSMiddleware([]string{"*"}))
	router.POST("/data", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/data", nil)
	req.Header.Set("Origin", "http://example.com")
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
