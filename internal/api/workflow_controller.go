package api

import (
	"net/http"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// WorkflowController 工作流控制器
type WorkflowController struct {
	workflowService service.WorkflowService
}

// NewWorkflowController 创建工作流控制器
func NewWorkflowController(workflowService service.WorkflowService) *WorkflowController {
	return &WorkflowController{
		workflowService: workflowService,
	}
}

// CreateWorkflow 创建工作流
func (c *WorkflowController) CreateWorkflow(ctx *gin.Context) {
	var req service.CreateWorkflowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	userID := CurrentUserID(ctx)
	workflow, err := c.workflowService.Create(&userID, &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, workflow)
}

// ListWorkflows 列出调用者可见的工作流
func (c *WorkflowController) ListWorkflows(ctx *gin.Context) {
	userID := CurrentUserID(ctx)
	workflows, err := c.workflowService.List(&userID)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, workflows)
}

// GetWorkflow 获取单个工作流
func (c *WorkflowController) GetWorkflow(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	workflow, err := c.workflowService.Get(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, workflow)
}

// GetStepsByTaskType 按任务类型名查询步骤列表
func (c *WorkflowController) GetStepsByTaskType(ctx *gin.Context) {
	taskType := ctx.Param("taskType")
	userID := CurrentUserID(ctx)

	steps, err := c.workflowService.StepsByTaskType(taskType, &userID)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"task_type": taskType, "steps": steps})
}

// UpdateWorkflow 更新工作流
// 步骤改动会先检查是否有进行中的任务引用该类型
func (c *WorkflowController) UpdateWorkflow(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateWorkflowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	workflow, err := c.workflowService.Update(CurrentUserID(ctx), id, &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, workflow)
}

// SetDefaultWorkflow 设置默认工作流
func (c *WorkflowController) SetDefaultWorkflow(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	workflow, err := c.workflowService.SetDefault(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, workflow)
}

// AddWorkflowStep 追加步骤
func (c *WorkflowController) AddWorkflowStep(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	steps, err := c.workflowService.AddStep(CurrentUserID(ctx), id, req.Title)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"steps": steps})
}

// UpdateWorkflowStep 更新指定位置的步骤
func (c *WorkflowController) UpdateWorkflowStep(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Index int    `json:"index"`
		Title string `json:"title" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	steps, err := c.workflowService.UpdateStepAt(CurrentUserID(ctx), id, req.Index, req.Title)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"steps": steps})
}

// DeleteWorkflowStep 删除指定位置的步骤
func (c *WorkflowController) DeleteWorkflowStep(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Index int `json:"index"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	steps, err := c.workflowService.DeleteStepAt(CurrentUserID(ctx), id, req.Index)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"steps": steps})
}

// ReorderWorkflowSteps 重排步骤顺序
func (c *WorkflowController) ReorderWorkflowSteps(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Steps []string `json:"steps" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	steps, err := c.workflowService.ReorderSteps(CurrentUserID(ctx), id, req.Steps)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"steps": steps})
}

// DeleteWorkflow 删除工作流
func (c *WorkflowController) DeleteWorkflow(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.workflowService.Delete(CurrentUserID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"deleted": true})
}

// CopyDefaultWorkflows 为当前用户复制全局默认工作流
func (c *WorkflowController) CopyDefaultWorkflows(ctx *gin.Context) {
	if err := c.workflowService.CopyDefaultsForUser(CurrentUserID(ctx)); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"copied": true})
}
