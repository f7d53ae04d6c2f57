package service

import (
	"errors"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// AuthService 认证服务接口
// 核心业务只消费解析出的调用者用户 ID,这里是产出该 ID 的边界协作方
type AuthService interface {
	Register(req *RegisterRequest) (*UserDTO, error)
	Login(username, password string) (string, *UserDTO, error)
	GetUser(id uint) (*UserDTO, error)
	ParseToken(token string) (*TokenClaims, error)
	EnsureAdmin(username, email, password string) error
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDTO 用户的展示形式
type UserDTO struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
}

// TokenClaims 解析后的令牌内容
type TokenClaims struct {
	UserID  uint
	IsAdmin bool
}

// authService 认证服务实现
type authService struct {
	users     repository.UserRepository
	workflows WorkflowService
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService 创建认证服务
// 注册成功后为新用户复制全局默认工作流
func NewAuthService(db *gorm.DB, workflows WorkflowService, jwtSecret string) AuthService {
	return &authService{
		users:     repository.NewUserRepository(db),
		workflows: workflows,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
	}
}

// Register 注册新用户
func (s *authService) Register(req *RegisterRequest) (*UserDTO, error) {
	if _, err := s.users.FindByUsername(req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapStorage(err)
	}

	if _, err := s.users.FindByEmail(req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapStorage(err)
	}

	user := &model.UserModel{
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: model.BeijingNow(),
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, err
	}
	if err := s.users.Save(user); err != nil {
		return nil, wrapStorage(err)
	}

	// 为新用户复制全局默认工作流模板
	if err := s.workflows.CopyDefaultsForUser(user.ID); err != nil {
		return nil, err
	}

	return toUserDTO(user), nil
}

// Login 验证登录并签发令牌
func (s *authService) Login(username, password string) (string, *UserDTO, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, wrapStorage(err)
	}

	if !user.VerifyPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
		"exp":      model.BeijingNow().Add(s.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, toUserDTO(user), nil
}

// GetUser 根据 ID 获取用户
func (s *authService) GetUser(id uint) (*UserDTO, error) {
	user, err := s.users.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, wrapStorage(err)
	}
	return toUserDTO(user), nil
}

// ParseToken 解析并校验令牌
func (s *authService) ParseToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredentials
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidCredentials
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrInvalidCredentials
	}
	isAdmin, _ := claims["is_admin"].(bool)

	return &TokenClaims{
		UserID:  uint(userID),
		IsAdmin: isAdmin,
	}, nil
}

// EnsureAdmin 确保管理员账号存在,已存在时不做任何修改
func (s *authService) EnsureAdmin(username, email, password string) error {
	if _, err := s.users.FindByUsername(username); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapStorage(err)
	}

	admin := &model.UserModel{
		Username:  username,
		Email:     email,
		IsAdmin:   true,
		CreatedAt: model.BeijingNow(),
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	return wrapStorage(s.users.Save(admin))
}

// toUserDTO 转换为展示形式
func toUserDTO(user *model.UserModel) *UserDTO {
	return &UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsAdmin:  user.IsAdmin,
	}
}
