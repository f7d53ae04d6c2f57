package model

import (
	"encoding/json"
	"errors"
	"time"
)

// WorkflowModel 工作流数据模型
// Steps 以 JSON 数组形式存储有序的步骤名称列表,插入顺序即语义顺序
type WorkflowModel struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"type:varchar(100);not null;index"`
	Description string    `gorm:"type:text"`
	Steps       string    `gorm:"type:text;not null"` // JSON 格式存储步骤列表
	IsDefault   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	UserID      *uint     `gorm:"index"` // 为空表示全局默认工作流
}

// TableName 指定表名
func (WorkflowModel) TableName() string {
	return "workflows"
}

// Validate 验证工作流模型
func (w *WorkflowModel) Validate() error {
	if w.Name == "" {
		return errors.New("workflow name is required")
	}
	return nil
}

// GetSteps 获取步骤列表
// 内容无法解析时返回空列表而不是错误
func (w *WorkflowModel) GetSteps() []string {
	var steps []string
	if err := json.Unmarshal([]byte(w.Steps), &steps); err != nil {
		return []string{}
	}
	if steps == nil {
		return []string{}
	}
	return steps
}

// SetSteps 设置步骤列表
func (w *WorkflowModel) SetSteps(steps []string) {
	if steps == nil {
		steps = []string{}
	}
	data, _ := json.Marshal(steps)
	w.Steps = string(data)
}

// HasStep 判断步骤是否属于该工作流
func (w *WorkflowModel) HasStep(step string) bool {
	for _, s := range w.GetSteps() {
		if s == step {
			return true
		}
	}
	return false
}
