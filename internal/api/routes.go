package api

import (
	"net/http"

	"github.com/Mingzhe994/work-calendar-page/internal/config"
	"github.com/Mingzhe994/work-calendar-page/internal/metrics"
	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services 路由需要的服务集合
type Services struct {
	Auth      service.AuthService
	Tasks     service.TaskService
	Workflows service.WorkflowService
	Issues    service.IssueService
	Analytics service.AnalyticsService
}

// SetupRoutes 配置路由
func SetupRoutes(cfg *config.Config, db *gorm.DB, svcs *Services) *gin.Engine {
	if config.IsProduction(cfg) {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// 中间件
	router.Use(RequestIDMiddleware())
	router.Use(RequestLogMiddleware())
	router.Use(CORSMiddleware(cfg.CORS.AllowedOrigins))
	router.Use(RateLimitMiddleware(100, 200))

	// 健康检查
	healthController := NewHealthController(db)
	router.GET("/health", healthController.Check)

	// Prometheus 指标端点
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	router.NoRoute(func(ctx *gin.Context) {
		Error(ctx, http.StatusNotFound, "resource not found", ctx.Request.URL.Path)
	})

	authController := NewAuthController(svcs.Auth)
	taskController := NewTaskController(svcs.Tasks)
	workflowController := NewWorkflowController(svcs.Workflows)
	issueController := NewIssueController(svcs.Issues)
	analyticsController := NewAnalyticsController(svcs.Analytics)

	// API v1 路由组
	v1 := router.Group("/api/v1")
	{
		// 认证路由
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authController.Register)
			auth.POST("/login", authController.Login)
			auth.GET("/me", AuthMiddleware(svcs.Auth), authController.Me)
		}

		// 以下路由全部要求登录
		authed := v1.Group("")
		authed.Use(AuthMiddleware(svcs.Auth))

		// 任务管理路由
		tasks := authed.Group("/tasks")
		{
			tasks.POST("", taskController.CreateTask)
			tasks.GET("", taskController.ListTasks)
			tasks.GET("/:id", taskController.GetTask)
			tasks.PUT("/:id", taskController.UpdateTask)
			tasks.POST("/:id/complete", taskController.CompleteTask)
			tasks.DELETE("/:id", taskController.DeleteTask)
			tasks.GET("/:id/history", taskController.GetTaskHistory)
			tasks.GET("/:id/comments", taskController.ListTaskComments)
			tasks.POST("/:id/comments", taskController.AddTaskComment)
		}

		// 工作流管理路由
		workflows := authed.Group("/workflows")
		{
			workflows.POST("", workflowController.CreateWorkflow)
			workflows.GET("", workflowController.ListWorkflows)
			workflows.GET("/:id", workflowController.GetWorkflow)
			workflows.PUT("/:id", workflowController.UpdateWorkflow)
			workflows.DELETE("/:id", workflowController.DeleteWorkflow)
			workflows.POST("/:id/default", workflowController.SetDefaultWorkflow)
			workflows.POST("/:id/steps", workflowController.AddWorkflowStep)
			workflows.PUT("/:id/steps", workflowController.UpdateWorkflowStep)
			workflows.DELETE("/:id/steps", workflowController.DeleteWorkflowStep)
			workflows.POST("/:id/steps/reorder", workflowController.ReorderWorkflowSteps)
			workflows.POST("/copy-defaults", workflowController.CopyDefaultWorkflows)
			workflows.GET("/by-task-type/:taskType", workflowController.GetStepsByTaskType)
		}

		// 问题管理路由
		issues := authed.Group("/issues")
		{
			issues.POST("", issueController.CreateIssue)
			issues.GET("", issueController.ListIssues)
			issues.GET("/:id", issueController.GetIssue)
			issues.PUT("/:id", issueController.UpdateIssue)
			issues.DELETE("/:id", issueController.DeleteIssue)
			issues.POST("/:id/resolve", issueController.ResolveIssue)
			issues.POST("/:id/solutions", issueController.AddIssueSolution)
			issues.POST("/:id/solutions/mark-successful", issueController.MarkSolutionSuccessful)
		}

		// 统计路由
		authed.GET("/analytics", analyticsController.GetAnalytics)
	}

	return router
}
