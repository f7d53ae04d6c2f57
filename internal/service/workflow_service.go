package service

import (
	"errors"
	"fmt"
	"regexp"
	"sort"

	"github.com/Mingzhe994/work-calendar-page/internal/metrics"
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/Mingzhe994/work-calendar-page/internal/repository"
	"gorm.io/gorm"
)

// WorkflowService 工作流服务接口
// 结构性修改(步骤替换/增删改/排序、删除工作流)都要经过编辑守卫:
// 仍有活动任务按名称引用该工作流时拒绝修改,保证在途进展值的含义不变
type WorkflowService interface {
	Create(userID *uint, req *CreateWorkflowRequest) (*WorkflowDTO, error)
	Get(callerID uint, id uint) (*WorkflowDTO, error)
	List(userID *uint) ([]*WorkflowDTO, error)
	StepsByTaskType(taskType string, userID *uint) ([]string, error)
	Update(callerID uint, id uint, req *UpdateWorkflowRequest) (*WorkflowDTO, error)
	SetDefault(callerID uint, id uint) (*WorkflowDTO, error)
	AddStep(callerID uint, id uint, title string) ([]string, error)
	UpdateStepAt(callerID uint, id uint, index int, title string) ([]string, error)
	DeleteStepAt(callerID uint, id uint, index int) ([]string, error)
	ReorderSteps(callerID uint, id uint, steps []string) ([]string, error)
	Delete(callerID uint, id uint) error
	CopyDefaultsForUser(userID uint) error
	InitializeDefaults(catalog map[string][]string) error
}

// CreateWorkflowRequest 创建工作流请求
type CreateWorkflowRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	IsDefault   bool     `json:"is_default"`
}

// UpdateWorkflowRequest 更新工作流请求
// 指针字段缺席表示不修改该字段;Steps 的替换受编辑守卫约束,
// 名称与描述属于元数据修改,不受守卫约束
type UpdateWorkflowRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Steps       *[]string `json:"steps"`
	IsDefault   *bool     `json:"is_default"`
}

// WorkflowDTO 工作流的展示形式
type WorkflowDTO struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Steps       []string `json:"steps"`
	IsDefault   bool     `json:"is_default"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// userSuffixPattern 用户副本名称后缀,复制前先剥离旧后缀避免叠加
var userSuffixPattern = regexp.MustCompile(` \(用户ID: \d+\)`)

// workflowService 工作流服务实现
type workflowService struct {
	db        *gorm.DB
	workflows repository.WorkflowRepository
	tasks     repository.TaskRepository
	catalog   map[string][]string // 配置注入的默认工作流目录
}

// NewWorkflowService 创建工作流服务
// catalog 为配置提供的默认工作流模板目录,按任务类型查询步骤时作为
// 数据库之外的兜底来源
func NewWorkflowService(db *gorm.DB, catalog map[string][]string) WorkflowService {
	return &workflowService{
		db:        db,
		workflows: repository.NewWorkflowRepository(db),
		tasks:     repository.NewTaskRepository(db),
		catalog:   catalog,
	}
}

// Create 创建新工作流
// 名称唯一性在归属范围内检查:全局名称只和全局工作流比较,
// 用户名称只和该用户的工作流比较。is_default 为真时在同一事务内
// 先清除同范围内其他默认标记,保证任意时刻至多一个默认
func (s *workflowService) Create(userID *uint, req *CreateWorkflowRequest) (*WorkflowDTO, error) {
	exists, err := s.workflows.NameExists(req.Name, userID, 0)
	if err != nil {
		return nil, wrapStorage(err)
	}
	if exists {
		return nil, ErrDuplicateName
	}

	now := model.BeijingNow()
	workflow := &model.WorkflowModel{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
		UserID:      userID,
	}
	workflow.SetSteps(req.Steps)

	if err := workflow.Validate(); err != nil {
		return nil, err
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.IsDefault {
			if err := clearDefaultsInScope(tx, userID, 0); err != nil {
				return err
			}
		}
		return tx.Create(workflow).Error
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toWorkflowDTO(workflow), nil
}

// loadOwned 加载工作流并校验访问权
// 全局工作流对所有用户可见;他人的工作流不可访问
func (s *workflowService) loadOwned(callerID uint, id uint) (*model.WorkflowModel, error) {
	workflow, err := s.workflows.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkflowNotFound
		}
		return nil, wrapStorage(err)
	}
	if workflow.UserID != nil && *workflow.UserID != callerID {
		return nil, ErrNotAuthorized
	}
	return workflow, nil
}

// Get 获取单个工作流
func (s *workflowService) Get(callerID uint, id uint) (*WorkflowDTO, error) {
	workflow, err := s.loadOwned(callerID, id)
	if err != nil {
		return nil, err
	}
	return toWorkflowDTO(workflow), nil
}

// List 获取工作流列表,userID 非空时只返回该用户的工作流
func (s *workflowService) List(userID *uint) ([]*WorkflowDTO, error) {
	workflows, err := s.workflows.FindAll(userID)
	if err != nil {
		return nil, wrapStorage(err)
	}
	dtos := make([]*WorkflowDTO, 0, len(workflows))
	for _, workflow := range workflows {
		dtos = append(dtos, toWorkflowDTO(workflow))
	}
	return dtos, nil
}

// StepsByTaskType 根据任务类型获取工作流步骤
// 优先取用户自己的副本,其次取全局工作流,数据库中没有时回退到
// 配置目录(向后兼容)
func (s *workflowService) StepsByTaskType(taskType string, userID *uint) ([]string, error) {
	if userID != nil {
		workflow, err := s.workflows.FindByName(taskType, userID)
		if err == nil {
			return workflow.GetSteps(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, wrapStorage(err)
		}
	}

	workflow, err := s.workflows.FindByName(taskType, nil)
	if err == nil {
		return workflow.GetSteps(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapStorage(err)
	}

	if steps, ok := s.catalog[taskType]; ok {
		return steps, nil
	}
	return nil, ErrWorkflowNotFound
}

// guardStructuralEdit 工作流编辑守卫
// 统计按名称引用该工作流且存储状态为 pending 或 in_progress 的任务数,
// 大于零时拒绝结构性修改
func (s *workflowService) guardStructuralEdit(workflow *model.WorkflowModel) error {
	count, err := s.tasks.CountActiveByType(workflow.Name)
	if err != nil {
		return wrapStorage(err)
	}
	if count > 0 {
		metrics.RecordWorkflowEditBlocked()
		return &WorkflowInUseError{Count: count}
	}
	return nil
}

// Update 更新工作流
// 名称与描述是元数据修改,不经过编辑守卫;重命名仍需在同一范围内查重。
// 步骤替换经过编辑守卫;is_default 为真时先清除同范围内其他默认标记
func (s *workflowService) Update(callerID uint, id uint, req *UpdateWorkflowRequest) (*WorkflowDTO, error) {
	workflow, err := s.loadOwned(callerID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != workflow.Name {
		exists, err := s.workflows.NameExists(*req.Name, workflow.UserID, workflow.ID)
		if err != nil {
			return nil, wrapStorage(err)
		}
		if exists {
			return nil, ErrDuplicateName
		}
	}

	if req.Steps != nil {
		if err := s.guardStructuralEdit(workflow); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if req.Name != nil {
			workflow.Name = *req.Name
		}
		if req.Description != nil {
			workflow.Description = *req.Description
		}
		if req.Steps != nil {
			workflow.SetSteps(*req.Steps)
		}
		if req.IsDefault != nil {
			if *req.IsDefault {
				if err := clearDefaultsInScope(tx, workflow.UserID, workflow.ID); err != nil {
					return err
				}
			}
			workflow.IsDefault = *req.IsDefault
		}
		workflow.UpdatedAt = model.BeijingNow()
		return tx.Save(workflow).Error
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toWorkflowDTO(workflow), nil
}

// clearDefaultsInScope 清除同一归属范围内其他工作流的默认标记
func clearDefaultsInScope(tx *gorm.DB, userID *uint, excludeID uint) error {
	query := tx.Model(&model.WorkflowModel{}).Where("id <> ?", excludeID)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL")
	}
	return query.Update("is_default", false).Error
}

// SetDefault 设置默认工作流
// 同一范围内先清除所有默认标记再设置目标,保证任意时刻至多一个默认
func (s *workflowService) SetDefault(callerID uint, id uint) (*WorkflowDTO, error) {
	workflow, err := s.loadOwned(callerID, id)
	if err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := clearDefaultsInScope(tx, workflow.UserID, workflow.ID); err != nil {
			return err
		}
		workflow.IsDefault = true
		workflow.UpdatedAt = model.BeijingNow()
		return tx.Save(workflow).Error
	})
	if err != nil {
		return nil, wrapStorage(err)
	}
	return toWorkflowDTO(workflow), nil
}

// AddStep 追加工作流步骤
func (s *workflowService) AddStep(callerID uint, id uint, title string) ([]string, error) {
	return s.mutateSteps(callerID, id, func(steps []string) ([]string, error) {
		return append(steps, title), nil
	})
}

// UpdateStepAt 更新指定位置的步骤
func (s *workflowService) UpdateStepAt(callerID uint, id uint, index int, title string) ([]string, error) {
	return s.mutateSteps(callerID, id, func(steps []string) ([]string, error) {
		if index < 0 || index >= len(steps) {
			return nil, ErrIndexOutOfRange
		}
		steps[index] = title
		return steps, nil
	})
}

// DeleteStepAt 删除指定位置的步骤
func (s *workflowService) DeleteStepAt(callerID uint, id uint, index int) ([]string, error) {
	return s.mutateSteps(callerID, id, func(steps []string) ([]string, error) {
		if index < 0 || index >= len(steps) {
			return nil, ErrIndexOutOfRange
		}
		return append(steps[:index], steps[index+1:]...), nil
	})
}

// ReorderSteps 调整步骤顺序
func (s *workflowService) ReorderSteps(callerID uint, id uint, steps []string) ([]string, error) {
	return s.mutateSteps(callerID, id, func([]string) ([]string, error) {
		return steps, nil
	})
}

// mutateSteps 步骤结构性修改的公共路径:归属校验、编辑守卫、应用、保存
func (s *workflowService) mutateSteps(callerID uint, id uint, apply func([]string) ([]string, error)) ([]string, error) {
	workflow, err := s.loadOwned(callerID, id)
	if err != nil {
		return nil, err
	}
	if err := s.guardStructuralEdit(workflow); err != nil {
		return nil, err
	}

	steps, err := apply(workflow.GetSteps())
	if err != nil {
		return nil, err
	}

	workflow.SetSteps(steps)
	workflow.UpdatedAt = model.BeijingNow()
	if err := s.workflows.Save(workflow); err != nil {
		return nil, wrapStorage(err)
	}
	return workflow.GetSteps(), nil
}

// Delete 删除工作流,受编辑守卫约束
func (s *workflowService) Delete(callerID uint, id uint) error {
	workflow, err := s.loadOwned(callerID, id)
	if err != nil {
		return err
	}
	if err := s.guardStructuralEdit(workflow); err != nil {
		return err
	}
	return wrapStorage(s.workflows.Delete(workflow.ID))
}

// CopyDefaultsForUser 将全局默认工作流复制给指定用户
// 副本名称为 "<原名称> (用户ID: <userId>)",复制前剥离旧后缀避免叠加;
// 已存在同名副本时跳过,整个复制批次在一个事务内完成
func (s *workflowService) CopyDefaultsForUser(userID uint) error {
	defaults, err := s.workflows.FindGlobals()
	if err != nil {
		return wrapStorage(err)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, defaultWorkflow := range defaults {
			cleanedName := userSuffixPattern.ReplaceAllString(defaultWorkflow.Name, "")
			newName := fmt.Sprintf("%s (用户ID: %d)", cleanedName, userID)

			var count int64
			if err := tx.Model(&model.WorkflowModel{}).
				Where("name = ? AND user_id = ?", newName, userID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			now := model.BeijingNow()
			copied := &model.WorkflowModel{
				Name:        newName,
				Description: defaultWorkflow.Description,
				IsDefault:   false,
				CreatedAt:   now,
				UpdatedAt:   now,
				UserID:      &userID,
			}
			copied.SetSteps(defaultWorkflow.GetSteps())
			if err := tx.Create(copied).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapStorage(err)
}

// InitializeDefaults 初始化全局默认工作流
// 已有任何工作流时跳过;目录由配置注入,按名称排序保证建表顺序稳定
func (s *workflowService) InitializeDefaults(catalog map[string][]string) error {
	count, err := s.workflows.Count()
	if err != nil {
		return wrapStorage(err)
	}
	if count > 0 {
		return nil
	}

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			now := model.BeijingNow()
			workflow := &model.WorkflowModel{
				Name:        name,
				Description: fmt.Sprintf("默认%s工作流", name),
				IsDefault:   false,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			workflow.SetSteps(catalog[name])
			if err := tx.Create(workflow).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return wrapStorage(err)
}

// toWorkflowDTO 转换为展示形式
func toWorkflowDTO(workflow *model.WorkflowModel) *WorkflowDTO {
	return &WorkflowDTO{
		ID:          workflow.ID,
		Name:        workflow.Name,
		Description: workflow.Description,
		Steps:       workflow.GetSteps(),
		IsDefault:   workflow.IsDefault,
		CreatedAt:   workflow.CreatedAt.Format(stampLayout),
		UpdatedAt:   workflow.UpdatedAt.Format(stampLayout),
	}
}
