package repository

import (
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// TaskCommentRepository 任务复盘评论仓储接口
type TaskCommentRepository interface {
	Save(comment *model.TaskReviewCommentModel) error
	FindByTaskID(taskID uint) ([]*model.TaskReviewCommentModel, error)
}

// taskCommentRepository 任务复盘评论仓储实现
type taskCommentRepository struct {
	db *gorm.DB
}

// NewTaskCommentRepository 创建任务复盘评论仓储
func NewTaskCommentRepository(db *gorm.DB) TaskCommentRepository {
	return &taskCommentRepository{db: db}
}

// Save 保存评论
func (r *taskCommentRepository) Save(comment *model.TaskReviewCommentModel) error {
	return r.db.Save(comment).Error
}

// FindByTaskID 根据任务 ID 查找评论,按创建时间倒序
func (r *taskCommentRepository) FindByTaskID(taskID uint) ([]*model.TaskReviewCommentModel, error) {
	var comments []*model.TaskReviewCommentModel
	err := r.db.Where("task_id = ?", taskID).Order("created_at DESC").Find(&comments).Error
	return comments, err
}
