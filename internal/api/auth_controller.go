package api

import (
	"net/http"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthController 认证控制器
type AuthController struct {
	authService service.AuthService
}

// NewAuthController 创建认证控制器
func NewAuthController(authService service.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Register 注册新用户
// 注册成功后用户会得到一份全局默认工作流的私有副本
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	user, err := c.authService.Register(&req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}

// Login 登录并签发令牌
func (c *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	token, user, err := c.authService.Login(req.Username, req.Password)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"token": token, "user": user})
}

// Me 返回当前登录用户信息
func (c *AuthController) Me(ctx *gin.Context) {
	user, err := c.authService.GetUser(CurrentUserID(ctx))
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, user)
}
