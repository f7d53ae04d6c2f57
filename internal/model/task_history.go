package model

import (
	"errors"
	"time"
)

// TaskHistoryModel 任务进度历史数据模型
// 每条记录只填充状态对或进展对中的一对,由 TaskService 在状态变更时写入,
// 写入后不可修改
type TaskHistoryModel struct {
	ID            uint      `gorm:"primaryKey"`
	TaskID        uint      `gorm:"not null;index"`
	OperationTime time.Time `gorm:"not null;index"`
	OldStatus     *string   `gorm:"type:varchar(20)"`
	NewStatus     *string   `gorm:"type:varchar(20)"`
	OldProgress   *string   `gorm:"type:varchar(200)"`
	NewProgress   *string   `gorm:"type:varchar(200)"`
}

// TableName 指定表名
func (TaskHistoryModel) TableName() string {
	return "task_progress_history"
}

// Validate 验证历史记录模型
func (h *TaskHistoryModel) Validate() error {
	if h.TaskID == 0 {
		return errors.New("task ID is required")
	}
	if h.OperationTime.IsZero() {
		return errors.New("operation time is required")
	}
	return nil
}

// statusLabels 状态的友好显示文案
var statusLabels = map[string]string{
	TaskStatusPending:    "未开始",
	TaskStatusInProgress: "进行中",
	TaskStatusCompleted:  "已完成",
}

// HistoryEntry 历史记录的展示形式
type HistoryEntry struct {
	ID        uint   `json:"id"`
	TaskID    uint   `json:"task_id"`
	CreatedAt string `json:"created_at"`
	FieldName string `json:"field_name"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
}

// Entry 将历史记录转换为展示形式
// 优先显示工作流步骤更新,而不是任务状态
func (h *TaskHistoryModel) Entry() HistoryEntry {
	entry := HistoryEntry{
		ID:        h.ID,
		TaskID:    h.TaskID,
		CreatedAt: h.OperationTime.Format("2006-01-02 15:04:05"),
	}

	switch {
	case !equalPtr(h.OldProgress, h.NewProgress):
		entry.FieldName = "工作进展更新"
		entry.OldValue = progressLabel(h.OldProgress)
		entry.NewValue = progressLabel(h.NewProgress)
	case !equalPtr(h.OldStatus, h.NewStatus):
		entry.FieldName = "任务状态更新"
		entry.OldValue = statusLabel(h.OldStatus)
		entry.NewValue = statusLabel(h.NewStatus)
	default:
		entry.FieldName = "任务更新"
		entry.OldValue = "无"
		entry.NewValue = "已更新"
	}

	return entry
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func progressLabel(p *string) string {
	if p == nil || *p == "" {
		return "未开始"
	}
	return *p
}

func statusLabel(s *string) string {
	if s == nil || *s == "" {
		return "未知"
	}
	if label, ok := statusLabels[*s]; ok {
		return label
	}
	return *s
}
