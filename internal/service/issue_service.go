package service

import (
	"errors"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/repository"
	"gorm.io/gorm"
)

// IssueService 问题服务接口
type IssueService interface {
	Create(userID uint, req *CreateIssueRequest) (*IssueDTO, error)
	Get(userID, issueID uint) (*IssueDTO, error)
	List(userID uint, opts *ListIssuesOptions) ([]*IssueDTO, error)
	Update(userID, issueID uint, req *UpdateIssueRequest) (*IssueDTO, error)
	Resolve(userID, issueID uint) error
	Delete(userID, issueID uint) error
	AddSolution(userID, issueID uint, solution string) ([]string, error)
	MarkSolutionSuccessful(userID, issueID uint, index int) (*IssueDTO, error)
}

// CreateIssueRequest 创建问题请求
type CreateIssueRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// UpdateIssueRequest 更新问题请求
type UpdateIssueRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
}

// ListIssuesOptions 问题列表查询选项
type ListIssuesOptions struct {
	OnlyOpen        bool
	IncludeResolved bool // 按创建时间倒序返回全部
}

// IssueDTO 问题的展示形式
type IssueDTO struct {
	ID                 uint     `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Priority           string   `json:"priority"`
	Status             string   `json:"status"`
	CreatedAt          string   `json:"created_at"`
	ResolvedAt         *string  `json:"resolved_at"`
	Solutions          []string `json:"solutions"`
	SuccessfulSolution *string  `json:"successful_solution"`
}

// issueService 问题服务实现
type issueService struct {
	db     *gorm.DB
	issues repository.IssueRepository
}

// NewIssueService 创建问题服务
func NewIssueService(db *gorm.DB) IssueService {
	return &issueService{
		db:     db,
		issues: repository.NewIssueRepository(db),
	}
}

// Create 创建新问题
func (s *issueService) Create(userID uint, req *CreateIssueRequest) (*IssueDTO, error) {
	priority := model.PriorityMedium
	if req.Priority != "" {
		if !contains(model.ValidPriorities, req.Priority) {
			return nil, ErrInvalidPriority
		}
		priority = req.Priority
	}

	issue := &model.IssueModel{
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		Status:      model.IssueStatusOpen,
		CreatedAt:   model.BeijingNow(),
		UserID:      &userID,
	}
	issue.SetSolutions(nil)

	if err := issue.Validate(); err != nil {
		return nil, err
	}
	if err := s.issues.Save(issue); err != nil {
		return nil, wrapStorage(err)
	}
	return toIssueDTO(issue), nil
}

// loadOwned 加载问题并校验归属
func (s *issueService) loadOwned(userID, issueID uint) (*model.IssueModel, error) {
	issue, err := s.issues.FindByID(issueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrIssueNotFound
		}
		return nil, wrapStorage(err)
	}
	if issue.UserID == nil || *issue.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return issue, nil
}

// Get 获取单个问题
func (s *issueService) Get(userID, issueID uint) (*IssueDTO, error) {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return nil, err
	}
	return toIssueDTO(issue), nil
}

// List 获取问题列表
// 默认按优先级倒序;包含已解决问题时按创建时间倒序
func (s *issueService) List(userID uint, opts *ListIssuesOptions) ([]*IssueDTO, error) {
	filter := &repository.IssueFilter{UserID: &userID}
	if opts != nil {
		if opts.OnlyOpen {
			status := model.IssueStatusOpen
			filter.Status = &status
		}
		if opts.IncludeResolved {
			filter.OrderBy = "created_at"
		}
	}

	issues, err := s.issues.FindByFilter(filter)
	if err != nil {
		return nil, wrapStorage(err)
	}

	dtos := make([]*IssueDTO, 0, len(issues))
	for _, issue := range issues {
		dtos = append(dtos, toIssueDTO(issue))
	}
	return dtos, nil
}

// Update 更新问题信息
func (s *issueService) Update(userID, issueID uint, req *UpdateIssueRequest) (*IssueDTO, error) {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return nil, err
	}

	if req.Priority != nil && !contains(model.ValidPriorities, *req.Priority) {
		return nil, ErrInvalidPriority
	}

	if req.Title != nil {
		issue.Title = *req.Title
	}
	if req.Description != nil {
		issue.Description = *req.Description
	}
	if req.Priority != nil {
		issue.Priority = *req.Priority
	}

	if err := s.issues.Save(issue); err != nil {
		return nil, wrapStorage(err)
	}
	return toIssueDTO(issue), nil
}

// Resolve 标记问题为已解决
func (s *issueService) Resolve(userID, issueID uint) error {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return err
	}

	now := model.BeijingNow()
	issue.Status = model.IssueStatusResolved
	issue.ResolvedAt = &now
	return wrapStorage(s.issues.Save(issue))
}

// Delete 删除问题
func (s *issueService) Delete(userID, issueID uint) error {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return err
	}
	return wrapStorage(s.issues.Delete(issue.ID))
}

// AddSolution 为问题追加候选解决方案
func (s *issueService) AddSolution(userID, issueID uint, solution string) ([]string, error) {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return nil, err
	}

	solutions := append(issue.GetSolutions(), solution)
	issue.SetSolutions(solutions)

	if err := s.issues.Save(issue); err != nil {
		return nil, wrapStorage(err)
	}
	return solutions, nil
}

// MarkSolutionSuccessful 按列表下标标记成功的解决方案
// 存储的是标记时刻解决方案的文本值,之后列表再变化不会同步更新
func (s *issueService) MarkSolutionSuccessful(userID, issueID uint, index int) (*IssueDTO, error) {
	issue, err := s.loadOwned(userID, issueID)
	if err != nil {
		return nil, err
	}

	solutions := issue.GetSolutions()
	if index < 0 || index >= len(solutions) {
		return nil, ErrIndexOutOfRange
	}

	successful := solutions[index]
	issue.SuccessfulSolution = &successful

	if err := s.issues.Save(issue); err != nil {
		return nil, wrapStorage(err)
	}
	return toIssueDTO(issue), nil
}

// toIssueDTO 转换为展示形式
func toIssueDTO(issue *model.IssueModel) *IssueDTO {
	dto := &IssueDTO{
		ID:                 issue.ID,
		Title:              issue.Title,
		Description:        issue.Description,
		Priority:           issue.Priority,
		Status:             issue.Status,
		CreatedAt:          issue.CreatedAt.Format(stampLayout),
		Solutions:          issue.GetSolutions(),
		SuccessfulSolution: issue.SuccessfulSolution,
	}
	if issue.ResolvedAt != nil {
		resolved := issue.ResolvedAt.Format(stampLayout)
		dto.ResolvedAt = &resolved
	}
	return dto
}
