package service

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/metrics"
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/repository"
	"gorm.io/gorm"
)

// TaskService 任务服务接口
type TaskService interface {
	Create(userID uint, req *CreateTaskRequest) (*TaskDTO, error)
	Get(userID, taskID uint) (*TaskDTO, error)
	List(userID uint, opts *ListTasksOptions) ([]*TaskDTO, error)
	Update(userID, taskID uint, delta *TaskDelta) error
	Complete(userID, taskID uint) error
	Delete(userID, taskID uint) error
	History(userID, taskID uint) (*TaskHistoryResponse, error)
	Comments(userID, taskID uint) ([]CommentDTO, error)
	AddComment(userID, taskID uint, content string) (*CommentDTO, error)
}

// CreateTaskRequest 创建任务请求
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	TaskType    string  `json:"task_type" binding:"required"`
	StartDate   string  `json:"start_date"` // 2006-01-02 或 2006-01-02T15:04
	Deadline    string  `json:"deadline"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Progress    *string `json:"progress"`
}

// ListTasksOptions 任务列表查询选项
type ListTasksOptions struct {
	Status           string
	ExcludeCompleted bool
}

// OptionalString 区分“字段未出现”“显式置空”和“有值”三种情况的字符串
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON 实现 json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// TaskDelta 任务变更集
// 三个字段均可缺席;校验全部通过后才一次性应用,任何一项无效都不会
// 应用其余有效项
type TaskDelta struct {
	Status   *string        `json:"status"`
	Priority *string        `json:"priority"`
	Progress OptionalString `json:"progress"`
}

// TaskDTO 任务的展示形式
// Status 为基于日期计算出的有效状态,而不是存储的原始值
type TaskDTO struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	TaskType    string  `json:"task_type"`
	StartDate   string  `json:"start_date"`
	Deadline    *string `json:"deadline"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	Progress    *string `json:"progress"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	CompletedAt *string `json:"completed_at"`
	IsOverdue   bool    `json:"is_overdue"`
}

// CommentDTO 复盘评论的展示形式
type CommentDTO struct {
	ID        uint   `json:"id"`
	TaskID    uint   `json:"task_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// TaskHistoryResponse 任务历史查询结果
type TaskHistoryResponse struct {
	TaskID    uint                 `json:"task_id"`
	TaskTitle string               `json:"task_title"`
	History   []model.HistoryEntry `json:"history"`
}

// taskService 任务服务实现
type taskService struct {
	db        *gorm.DB
	tasks     repository.TaskRepository
	workflows repository.WorkflowRepository
	history   repository.TaskHistoryRepository
	comments  repository.TaskCommentRepository
}

// NewTaskService 创建任务服务
func NewTaskService(db *gorm.DB) TaskService {
	return &taskService{
		db:        db,
		tasks:     repository.NewTaskRepository(db),
		workflows: repository.NewWorkflowRepository(db),
		history:   repository.NewTaskHistoryRepository(db),
		comments:  repository.NewTaskCommentRepository(db),
	}
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
	stampLayout    = "2006-01-02 15:04:05"
)

// parseDate 解析日历日期,兼容带时间的表单格式
func parseDate(value string) (time.Time, error) {
	if strings.Contains(value, "T") {
		t, err := time.Parse(dateTimeLayout, value)
		if err != nil {
			return time.Time{}, err
		}
		return model.DateOf(t), nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return model.DateOf(t), nil
}

// Create 创建新任务
func (s *taskService) Create(userID uint, req *CreateTaskRequest) (*TaskDTO, error) {
	startDate := model.Today()
	if req.StartDate != "" {
		parsed, err := parseDate(req.StartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		startDate = parsed
	}

	var deadline *time.Time
	if req.Deadline != "" {
		parsed, err := parseDate(req.Deadline)
		if err != nil {
			return nil, ErrInvalidDate
		}
		deadline = &parsed
	}

	status := model.TaskStatusPending
	if req.Status != "" {
		if !contains(model.ValidTaskStatuses, req.Status) {
			return nil, ErrInvalidStatus
		}
		status = req.Status
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		if !contains(model.ValidPriorities, req.Priority) {
			return nil, ErrInvalidPriority
		}
		priority = req.Priority
	}

	if req.Progress != nil {
		workflow, err := s.findWorkflowForType(req.TaskType, &userID)
		if err != nil {
			return nil, err
		}
		// 任务类型未匹配到任何工作流时不做校验
		if workflow != nil && !workflow.HasStep(*req.Progress) {
			return nil, ErrInvalidProgress
		}
	}

	now := model.BeijingNow()
	task := &model.TaskModel{
		Title:       req.Title,
		Description: req.Description,
		TaskType:    req.TaskType,
		StartDate:   startDate,
		Deadline:    deadline,
		Status:      status,
		Priority:    priority,
		Progress:    req.Progress,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      &userID,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.tasks.Save(task); err != nil {
		return nil, wrapStorage(err)
	}

	metrics.RecordTaskCreated()
	return s.toDTO(task), nil
}

// loadOwned 加载任务并校验归属
// 任务不存在与无权访问是两种不同的结果
func (s *taskService) loadOwned(userID, taskID uint) (*model.TaskModel, error) {
	task, err := s.tasks.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, wrapStorage(err)
	}
	if task.UserID == nil || *task.UserID != userID {
		return nil, ErrNotAuthorized
	}
	return task, nil
}

// reconcile 根据日期刷新任务的存储状态
// 截止日期已过而存储状态仍为 pending 时,提升为 in_progress 并立即持久化。
// 这是读取路径上唯一会写存储的地方,属于有意设计:过期任务在下一次
// 被读到时完成一次性的状态收敛,之后的读取不再产生写操作。
func (s *taskService) reconcile(task *model.TaskModel, today time.Time) (string, error) {
	status, promoted := task.CalculatedStatus(today)
	if promoted {
		task.Status = model.TaskStatusInProgress
		task.UpdatedAt = model.BeijingNow()
		if err := s.tasks.Save(task); err != nil {
			return "", wrapStorage(err)
		}
	}
	return status, nil
}

// Get 获取单个任务
func (s *taskService) Get(userID, taskID uint) (*TaskDTO, error) {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.reconcile(task, model.Today()); err != nil {
		return nil, err
	}
	return s.toDTO(task), nil
}

// List 获取任务列表
func (s *taskService) List(userID uint, opts *ListTasksOptions) ([]*TaskDTO, error) {
	filter := &repository.TaskFilter{UserID: &userID}
	if opts != nil {
		if opts.Status != "" {
			status := opts.Status
			filter.Status = &status
		} else if opts.ExcludeCompleted {
			filter.ExcludeCompleted = true
		}
	}

	tasks, err := s.tasks.FindByFilter(filter)
	if err != nil {
		return nil, wrapStorage(err)
	}

	today := model.Today()
	dtos := make([]*TaskDTO, 0, len(tasks))
	for _, task := range tasks {
		if _, err := s.reconcile(task, today); err != nil {
			return nil, err
		}
		dtos = append(dtos, s.toDTO(task))
	}
	return dtos, nil
}

// findWorkflowForType 按名称匹配任务类型对应的工作流
// 优先取任务归属用户的副本,其次取全局工作流;都不存在时返回 nil
func (s *taskService) findWorkflowForType(taskType string, userID *uint) (*model.WorkflowModel, error) {
	if userID != nil {
		workflow, err := s.workflows.FindByName(taskType, userID)
		if err == nil {
			return workflow, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapStorage(err)
		}
	}
	workflow, err := s.workflows.FindByName(taskType, nil)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage(err)
	}
	return workflow, nil
}

// Update 更新任务的状态 / 进展 / 优先级
// 先完成全部校验,再在单个事务里一次性应用;状态或进展发生变化时
// 追加恰好一条历史记录,两者同时变化时记录进展对
func (s *taskService) Update(userID, taskID uint, delta *TaskDelta) error {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return err
	}

	oldStatus := task.Status
	oldProgress := task.Progress

	statusChanged := false
	newStatus := oldStatus
	if delta.Status != nil {
		if !contains(model.ValidTaskStatuses, *delta.Status) {
			return ErrInvalidStatus
		}
		// 与存储状态比较,而不是计算出的有效状态
		if *delta.Status != oldStatus {
			statusChanged = true
			newStatus = *delta.Status
		}
	}

	progressChanged := false
	newProgress := oldProgress
	if delta.Progress.Set {
		if delta.Progress.Value != nil {
			workflow, err := s.findWorkflowForType(task.TaskType, task.UserID)
			if err != nil {
				return err
			}
			// 任务类型未匹配到任何工作流时不做校验
			if workflow != nil && !workflow.HasStep(*delta.Progress.Value) {
				return ErrInvalidProgress
			}
		}
		if !equalStringPtr(delta.Progress.Value, oldProgress) {
			progressChanged = true
			newProgress = delta.Progress.Value
		}
	}

	if delta.Priority != nil && !contains(model.ValidPriorities, *delta.Priority) {
		return ErrInvalidPriority
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		now := model.BeijingNow()
		if statusChanged {
			task.Status = newStatus
			if newStatus == model.TaskStatusCompleted {
				task.CompletedAt = &now
			} else {
				task.CompletedAt = nil
			}
		}
		if progressChanged {
			task.Progress = newProgress
		}
		if delta.Priority != nil {
			task.Priority = *delta.Priority
		}
		task.UpdatedAt = now

		if err := tx.Save(task).Error; err != nil {
			return err
		}

		if statusChanged || progressChanged {
			history := &model.TaskHistoryModel{
				TaskID:        task.ID,
				OperationTime: now,
			}
			if progressChanged {
				history.OldProgress = oldProgress
				history.NewProgress = newProgress
			} else {
				history.OldStatus = &oldStatus
				history.NewStatus = &newStatus
			}
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return wrapStorage(err)
	}

	if statusChanged && newStatus == model.TaskStatusCompleted {
		metrics.RecordTaskCompleted()
	}
	return nil
}

// Complete 标记任务为已完成
func (s *taskService) Complete(userID, taskID uint) error {
	status := model.TaskStatusCompleted
	return s.Update(userID, taskID, &TaskDelta{Status: &status})
}

// Delete 删除任务及其历史记录与评论
func (s *taskService) Delete(userID, taskID uint) error {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskHistoryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&model.TaskReviewCommentModel{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", task.ID).Delete(&model.TaskModel{}).Error
	})
	return wrapStorage(err)
}

// History 获取任务历史,按操作时间倒序
func (s *taskService) History(userID, taskID uint) (*TaskHistoryResponse, error) {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	records, err := s.history.FindByTaskID(task.ID)
	if err != nil {
		return nil, wrapStorage(err)
	}

	entries := make([]model.HistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, record.Entry())
	}

	return &TaskHistoryResponse{
		TaskID:    task.ID,
		TaskTitle: task.Title,
		History:   entries,
	}, nil
}

// Comments 获取任务复盘评论,按创建时间倒序
func (s *taskService) Comments(userID, taskID uint) ([]CommentDTO, error) {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.FindByTaskID(task.ID)
	if err != nil {
		return nil, wrapStorage(err)
	}

	dtos := make([]CommentDTO, 0, len(comments))
	for _, comment := range comments {
		dtos = append(dtos, CommentDTO{
			ID:        comment.ID,
			TaskID:    comment.TaskID,
			Content:   comment.Content,
			CreatedAt: comment.CreatedAt.Format(stampLayout),
		})
	}
	return dtos, nil
}

// AddComment 添加复盘评论
// 只允许为存储状态已是 completed 的任务添加
func (s *taskService) AddComment(userID, taskID uint, content string) (*CommentDTO, error) {
	task, err := s.loadOwned(userID, taskID)
	if err != nil {
		return nil, err
	}

	if task.Status != model.TaskStatusCompleted {
		return nil, ErrInvalidState
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	comment := &model.TaskReviewCommentModel{
		TaskID:    task.ID,
		Content:   content,
		CreatedAt: model.BeijingNow(),
	}
	if err := s.comments.Save(comment); err != nil {
		return nil, wrapStorage(err)
	}

	return &CommentDTO{
		ID:        comment.ID,
		TaskID:    comment.TaskID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(stampLayout),
	}, nil
}

// toDTO 转换为展示形式
func (s *taskService) toDTO(task *model.TaskModel) *TaskDTO {
	today := model.Today()
	status, _ := task.CalculatedStatus(today)

	dto := &TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		TaskType:    task.TaskType,
		StartDate:   task.StartDate.Format(dateLayout),
		Status:      status,
		Priority:    task.Priority,
		Progress:    task.Progress,
		CreatedAt:   task.CreatedAt.Format(stampLayout),
		UpdatedAt:   task.UpdatedAt.Format(stampLayout),
		IsOverdue:   task.IsOverdue(today),
	}
	if task.Deadline != nil {
		deadline := task.Deadline.Format(dateLayout)
		dto.Deadline = &deadline
	}
	if task.CompletedAt != nil {
		completed := task.CompletedAt.Format(stampLayout)
		dto.CompletedAt = &completed
	}
	return dto
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
