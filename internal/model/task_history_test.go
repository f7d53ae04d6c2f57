package model_test

import (
	"testing"
	"time"

	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"github.com/stretchr/testify/assert"
)

// TestHistoryEntryProgressPair 进展变化生成进展更新条目
func TestHistoryEntryProgressPair(t *testing.T) {
	record := &model.TaskHistoryModel{
		ID:            1,
		TaskID:        7,
		OperationTime: time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC),
		OldProgress:   ptr("市场调研"),
		NewProgress:   ptr("撰写计划书"),
	}

	entry := record.Entry()
	assert.Equal(t, "工作进展更新", entry.FieldName)
	assert.Equal(t, "市场调研", entry.OldValue)
	assert.Equal(t, "撰写计划书", entry.NewValue)
	assert.Equal(t, "2026-03-01 10:30:00", entry.CreatedAt)
}

// TestHistoryEntryProgressTakesPriority 进展对和状态对同时存在时优先展示进展
func TestHistoryEntryProgressTakesPriority(t *testing.T) {
	record := &model.TaskHistoryModel{
		OldStatus:   ptr(model.TaskStatusPending),
		NewStatus:   ptr(model.TaskStatusInProgress),
		OldProgress: nil,
		NewProgress: ptr("启动"),
	}

	entry := record.Entry()
	assert.Equal(t, "工作进展更新", entry.FieldName)
	assert.Equal(t, "未开始", entry.OldValue, "空进展展示为未开始")
	assert.Equal(t, "启动", entry.NewValue)
}

// TestHistoryEntryStatusPair 状态变化展示本地化状态文案
func TestHistoryEntryStatusPair(t *testing.T) {
	record := &model.TaskHistoryModel{
		OldStatus: ptr(model.TaskStatusInProgress),
		NewStatus: ptr(model.TaskStatusCompleted),
	}

	entry := record.Entry()
	assert.Equal(t, "任务状态更新", entry.FieldName)
	assert.Equal(t, "进行中", entry.OldValue)
	assert.Equal(t, "已完成", entry.NewValue)
}

// TestHistoryEntryNoChange 两对都无变化时为通用更新条目
func TestHistoryEntryNoChange(t *testing.T) {
	entry := (&model.TaskHistoryModel{}).Entry()
	assert.Equal(t, "任务更新", entry.FieldName)
	assert.Equal(t, "无", entry.OldValue)
	assert.Equal(t, "已更新", entry.NewValue)
}

// TestHistoryValidation 测试模型验证
func TestHistoryValidation(t *testing.T) {
	valid := &model.TaskHistoryModel{TaskID: 1, OperationTime: time.Now()}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&model.TaskHistoryModel{OperationTime: time.Now()}).Validate())
	assert.Error(t, (&model.TaskHistoryModel{TaskID: 1}).Validate())
}

// TestHistoryTableName 测试表名
func TestHistoryTableName(t *testing.T) {
	assert.Equal(t, "task_progress_history", model.TaskHistoryModel{}.TableName())
}
