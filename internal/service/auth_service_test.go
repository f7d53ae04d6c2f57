package service_test

import (
	"testing"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// TestRegisterCopiesDefaultWorkflows 注册成功后得到全局默认工作流的私有副本
func TestRegisterCopiesDefaultWorkflows(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	createGlobalWorkflow(t, workflows, "商业计划", []string{"市场调研"})

	user, err := auth.Register(&service.RegisterRequest{
		Username: "zhangsan",
		Email:    "zhangsan@example.com",
		Password: "s3cret!pass",
	})
	require.NoError(t, err)
	assert.False(t, user.IsAdmin)

	copies, err := workflows.List(&user.ID)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Contains(t, copies[0].Name, "商业计划")
}

// TestRegisterDuplicates 用户名与邮箱重复分别报错
func TestRegisterDuplicates(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	_, err := auth.Register(&service.RegisterRequest{
		Username: "zhangsan", Email: "zhangsan@example.com", Password: "pass1234",
	})
	require.NoError(t, err)

	_, err = auth.Register(&service.RegisterRequest{
		Username: "zhangsan", Email: "other@example.com", Password: "pass1234",
	})
	assert.ErrorIs(t, err, service.ErrUsernameTaken)

	_, err = auth.Register(&service.RegisterRequest{
		Username: "lisi", Email: "zhangsan@example.com", Password: "pass1234",
	})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

// TestLoginTokenRoundTrip 登录签发的令牌可以被解析回调用者身份
func TestLoginTokenRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	user, err := auth.Register(&service.RegisterRequest{
		Username: "zhangsan", Email: "zhangsan@example.com", Password: "pass1234",
	})
	require.NoError(t, err)

	token, loggedIn, err := auth.Login("zhangsan", "pass1234")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := auth.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.False(t, claims.IsAdmin)
}

// TestLoginInvalidCredentials 错误口令与未知用户返回同一类错误
func TestLoginInvalidCredentials(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	_, err := auth.Register(&service.RegisterRequest{
		Username: "zhangsan", Email: "zhangsan@example.com", Password: "pass1234",
	})
	require.NoError(t, err)

	_, _, err = auth.Login("zhangsan", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, _, err = auth.Login("nobody", "pass1234")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// TestParseTokenRejectsGarbage 非法令牌解析失败
func TestParseTokenRejectsGarbage(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	_, err := auth.ParseToken("not-a-token")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	// 用不同密钥签发的令牌
	other := service.NewAuthService(db, workflows, "other-secret")
	_, regErr := other.Register(&service.RegisterRequest{
		Username: "wangwu", Email: "wangwu@example.com", Password: "pass1234",
	})
	require.NoError(t, regErr)
	token, _, loginErr := other.Login("wangwu", "pass1234")
	require.NoError(t, loginErr)

	_, err = auth.ParseToken(token)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// TestEnsureAdminIdempotent 管理员补建幂等
func TestEnsureAdminIdempotent(t *testing.T) {
	db := setupTestDB(t)
	workflows := service.NewWorkflowService(db, nil)
	auth := service.NewAuthService(db, workflows, testSecret)

	require.NoError(t, auth.EnsureAdmin("admin", "admin@example.com", "adminpass"))
	require.NoError(t, auth.EnsureAdmin("admin", "admin@example.com", "changed"))

	// 第二次调用不会覆盖口令
	_, admin, err := auth.Login("admin", "adminpass")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)

	_, _, err = auth.Login("admin", "changed")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
