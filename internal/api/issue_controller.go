package api

import (
	"net/http"

	"github.com/Mingzhe994/work-calendar-page/internal/service"
	"github.com/gin-gonic/gin"
)

// IssueController 问题控制器
type IssueController struct {
	issueService service.IssueService
}

// NewIssueController 创建问题控制器
func NewIssueController(issueService service.IssueService) *IssueController {
	return &IssueController{
		issueService: issueService,
	}
}

// CreateIssue 创建问题
func (c *IssueController) CreateIssue(ctx *gin.Context) {
	var req service.CreateIssueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	issue, err := c.issueService.Create(CurrentUserID(ctx), &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, issue)
}

// ListIssues 列出问题
func (c *IssueController) ListIssues(ctx *gin.Context) {
	opts := &service.ListIssuesOptions{
		OnlyOpen:        ctx.Query("only_open") == "true",
		IncludeResolved: ctx.Query("include_resolved") == "true",
	}

	issues, err := c.issueService.List(CurrentUserID(ctx), opts)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, issues)
}

// GetIssue 获取单个问题
func (c *IssueController) GetIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	issue, err := c.issueService.Get(CurrentUserID(ctx), id)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, issue)
}

// UpdateIssue 更新问题
func (c *IssueController) UpdateIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req service.UpdateIssueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	issue, err := c.issueService.Update(CurrentUserID(ctx), id, &req)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, issue)
}

// ResolveIssue 标记问题已解决
func (c *IssueController) ResolveIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.issueService.Resolve(CurrentUserID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"resolved": true})
}

// DeleteIssue 删除问题
func (c *IssueController) DeleteIssue(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.issueService.Delete(CurrentUserID(ctx), id); err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"deleted": true})
}

// AddIssueSolution 追加解决方案
func (c *IssueController) AddIssueSolution(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req struct {
		Solution string `json:"solution" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	solutions, err := c.issueService.AddSolution(CurrentUserID(ctx), id, req.Solution)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, gin.H{"solutions": solutions})
}

// MarkSolutionSuccessful 标记某条解决方案有效
func (c *IssueController) MarkSolutionSuccessful(ctx *gin.Context) {
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

	issue, err := c.issueService.MarkSolutionSuccessful(CurrentUserID(ctx), id, req.Index)
	if err != nil {
		ServiceError(ctx, err)
		return
	}

	Success(ctx, issue)
}
