package api

import (
	"net/http"
	"strconv"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// TaskController 任务控制器
type TaskController struct {
	taskService service.TaskService
}

// NewTaskController 创建任务控制器
func NewTaskController(taskService service.TaskService) *TaskController {
	return &TaskController{
		taskService: taskService,
	}
}

// parseIDParam 解析路径中的资源 ID
func parseIDParam(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil {
		Error(ctx, http.StatusBadRequest, "invalid id", ctx.Param(name))
		return 0, false
	}
	return uint(id), true
}

// CreateTask 创建任务
func (c *TaskController) CreateTask(ctx *gin.Context) {
	var req service.CreateTaskRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	task, err := c.taskService.Create(CurrentUserID(ctx), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// ListTasks 按归属列出任务
// status 过滤使用存储状态;过期待处理任务会在取出后被提升,
// 因此 status=pending 的结果中可能出现展示为进行中的任务
func (c *TaskController) ListTasks(ctx *gin.Context) {
	opts := &service.ListTasksOptions{
		Status:           ctx.Query("status"),
		ExcludeCompleted: ctx.Query("exclude_completed") == "true",
	}

	tasks, err := c.taskService.List(CurrentUserID(ctx), opts)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, tasks)
}

// GetTask 获取单个任务
func (c *TaskController) GetTask(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	task, err := c.taskService.Get(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// UpdateTask 更新任务状态、优先级或进展
func (c *TaskController) UpdateTask(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var delta service.TaskDelta
	if err := ctx.ShouldBindJSON(&delta); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	userID := CurrentUserID(ctx)
	if err := c.taskService.Update(userID, id, &delta); err != nil {
		ServiceError(ctx, err)
		return
	}

	task, err := c.taskService.Get(userID, id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// CompleteTask 标记任务完成
func (c *TaskController) CompleteTask(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	userID := CurrentUserID(ctx)
	if err := c.taskService.Complete(userID, id); err != nil {
		ServiceError(ctx, err)
		return
	}

	task, err := c.taskService.Get(userID, id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, task)
}

// DeleteTask 删除任务及其历史、留言
func (c *TaskController) DeleteTask(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.taskService.Delete(CurrentUserID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"deleted": true})
}

// GetTaskHistory 获取任务变更历史
func (c *TaskController) GetTaskHistory(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	history, err := c.taskService.History(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, history)
}

// ListTaskComments 获取任务留言
func (c *TaskController) ListTaskComments(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	comments, err := c.taskService.Comments(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, comments)
}

// AddTaskComment 为已完成任务添加留言
func (c *TaskController) AddTaskComment(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	comment, err := c.taskService.AddComment(CurrentUserID(ctx), id, req.Content)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, comment)
}
