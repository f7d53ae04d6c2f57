package model

import (
	"errors"
	"time"
)

// TaskReviewCommentModel 任务复盘评论数据模型
// 仅允许为已完成的任务创建,创建后不可修改
type TaskReviewCommentModel struct {
	ID        uint      `gorm:"primaryKey"`
	TaskID    uint      `gorm:"not null;index"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName 指定表名
func (TaskReviewCommentModel) TableName() string {
	return "task_review_comment"
}

// Validate 验证评论模型
func (c *TaskReviewCommentModel) Validate() error {
	if c.TaskID == 0 {
		return errors.New("task ID is required")
	}
	if c.Content == "" {
		return errors.New("comment content is required")
	}
	return nil
}
