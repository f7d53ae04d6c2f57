package repository

import (
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// TaskHistoryRepository 任务历史仓储接口
type TaskHistoryRepository interface {
	Save(history *model.TaskHistoryModel) error
	FindByTaskID(taskID uint) ([]*model.TaskHistoryModel, error)
}

// taskHistoryRepository 任务历史仓储实现
type taskHistoryRepository struct {
	db *gorm.DB
}

// NewTaskHistoryRepository 创建任务历史仓储
func NewTaskHistoryRepository(db *gorm.DB) TaskHistoryRepository {
	return &taskHistoryRepository{db: db}
}

// Save 保存历史记录
func (r *taskHistoryRepository) Save(history *model.TaskHistoryModel) error {
	return r.db.Save(history).Error
}

// FindByTaskID 根据任务 ID 查找历史记录,按操作时间倒序
func (r *taskHistoryRepository) FindByTaskID(taskID uint) ([]*model.TaskHistoryModel, error) {
	var histories []*model.TaskHistoryModel
	err := r.db.Where("task_id = ?", taskID).Order("operation_time DESC").Find(&histories).Error
	return histories, err
}
