package repository

import (
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// TaskRepository 任务仓储接口
type TaskRepository interface {
	Save(task *model.TaskModel) error
	FindByID(id uint) (*model.TaskModel, error)
	FindByFilter(filter *TaskFilter) ([]*model.TaskModel, error)
	CountActiveByType(taskType string) (int64, error)
}

// TaskFilter 任务查询过滤器
type TaskFilter struct {
	UserID           *uint
	Status           *string
	ExcludeCompleted bool
}

// taskRepository 任务仓储实现
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓储
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

// Save 保存任务
func (r *taskRepository) Save(task *model.TaskModel) error {
	return r.db.Save(task).Error
}

// FindByID 根据 ID 查找任务
func (r *taskRepository) FindByID(id uint) (*model.TaskModel, error) {
	var task model.TaskModel
	if err := r.db.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByFilter 根据过滤器查找任务
func (r *taskRepository) FindByFilter(filter *TaskFilter) ([]*model.TaskModel, error) {
	var tasks []*model.TaskModel
	query := r.db.Model(&model.TaskModel{})

	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		} else if filter.ExcludeCompleted {
			query = query.Where("status <> ?", model.TaskStatusCompleted)
		}
	}

	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// CountActiveByType 统计使用指定任务类型且仍在进行中的任务数
// 工作流编辑守卫据此判断结构性修改是否允许
func (r *taskRepository) CountActiveByType(taskType string) (int64, error) {
	var count int64
	err := r.db.Model(&model.TaskModel{}).
		Where("task_type = ?", taskType).
		Where("status IN ?", []string{model.TaskStatusPending, model.TaskStatusInProgress}).
		Count(&count).Error
	return count, err
}
