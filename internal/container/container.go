package container

import (
	"fmt"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/api"
	"github.com/Mingzhe994/work-calendar-page/internal/config"
	"github.com/Mingzhe994/work-calendar-page/internal/database"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"gorm.io/gorm"
)

// Container 依赖注入容器
// 管理数据库连接与各业务服务的装配
type Container struct {
	cfg       *config.Config
	db        *gorm.DB
	auth      service.AuthService
	tasks     service.TaskService
	workflows service.WorkflowService
	issues    service.IssueService
	analytics service.AnalyticsService
}

// NewContainer 创建依赖注入容器
// 根据配置初始化数据库、执行迁移并装配服务:
// 全局工作流目录为空时写入内置目录,管理员账号缺失时补建
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化数据库(带重试,指数退避)
	db, err := database.ConnectWithRetry(cfg.Database, 3, time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := database.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	catalog := cfg.Workflows
	if len(catalog) == 0 {
		catalog = config.DefaultWorkflowCatalog()
	}

	workflows := service.NewWorkflowService(db, catalog)
	auth := service.NewAuthService(db, workflows, cfg.Auth.JWTSecret)

	if err := workflows.InitializeDefaults(catalog); err != nil {
		return nil, fmt.Errorf("failed to seed default workflows: %w", err)
	}

	if err := auth.EnsureAdmin(cfg.Auth.AdminUsername, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to ensure admin user: %w", err)
	}

	return &Container{
		cfg:       cfg,
		db:        db,
		auth:      auth,
		tasks:     service.NewTaskService(db),
		workflows: workflows,
		issues:    service.NewIssueService(db),
		analytics: service.NewAnalyticsService(db),
	}, nil
}

// DB 返回数据库连接
func (c *Container) DB() *gorm.DB {
	return c.db
}

// Config 返回配置
func (c *Container) Config() *config.Config {
	return c.cfg
}

// Services 返回路由装配所需的服务集合
func (c *Container) Services() *api.Services {
	return &api.Services{
		Auth:      c.auth,
		Tasks:     c.tasks,
		Workflows: c.workflows,
		Issues:    c.issues,
		Analytics: c.analytics,
	}
}

// AuthService 返回认证服务
func (c *Container) AuthService() service.AuthService {
	return c.auth
}

// WorkflowService 返回工作流服务
func (c *Container) WorkflowService() service.WorkflowService {
	return c.workflows
}

// Close 释放容器持有的资源
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
