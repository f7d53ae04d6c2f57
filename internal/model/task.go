package model

import (
	"errors"
	"time"
)

// 任务状态
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
)

// 任务优先级
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidTaskStatuses 合法的任务状态集合
var ValidTaskStatuses = []string{TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted}

// ValidPriorities 合法的优先级集合
var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// beijingZone 固定 UTC+8 时区
// 所有存储与展示的时间值统一使用该时区,不使用机器本地时区
var beijingZone = time.FixedZone("UTC+8", 8*3600)

// BeijingNow 返回北京时间
func BeijingNow() time.Time {
	return time.Now().In(beijingZone)
}

// Today 返回北京时间的当前日期(零点)
func Today() time.Time {
	now := BeijingNow()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// DateOf 截取日期部分,用于日历日期比较
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TaskModel 任务数据模型
type TaskModel struct {
	ID          uint       `gorm:"primaryKey"`
	Title       string     `gorm:"type:varchar(200);not null"`
	Description string     `gorm:"type:text"`
	TaskType    string     `gorm:"type:varchar(50);not null;index"` // 按名称弱引用工作流
	StartDate   time.Time  `gorm:"type:date;not null"`
	Deadline    *time.Time `gorm:"type:date"` // 截止日期可选
	Status      string     `gorm:"type:varchar(20);not null;default:pending;index"`
	Priority    string     `gorm:"type:varchar(20);not null;default:medium"`
	Progress    *string    `gorm:"type:varchar(200)"` // 工作流程步骤进展
	CreatedAt   time.Time  `gorm:"not null;index"`
	UpdatedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time
	UserID      *uint `gorm:"index"`
}

// TableName 指定表名
func (TaskModel) TableName() string {
	return "tasks"
}

// Validate 验证任务模型
func (t *TaskModel) Validate() error {
	if t.Title == "" {
		return errors.New("task title is required")
	}
	if t.TaskType == "" {
		return errors.New("task type is required")
	}
	if t.StartDate.IsZero() {
		return errors.New("task start date is required")
	}
	return nil
}

// IsOverdue 判断任务是否已延期
// 纯判断,不产生任何副作用
func (t *TaskModel) IsOverdue(today time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return DateOf(*t.Deadline).Before(DateOf(today)) && t.Status != TaskStatusCompleted
}

// CalculatedStatus 根据日期计算任务的有效状态
// 返回有效状态以及是否需要把存储状态从 pending 提升为 in_progress
// (截止日期已过但存储状态仍为 pending 时)。提升动作由调用方持久化,
// 见 TaskService 的 reconcile。
func (t *TaskModel) CalculatedStatus(today time.Time) (status string, promoted bool) {
	// 手动标记为已完成的任务保持已完成
	if t.Status == TaskStatusCompleted {
		return TaskStatusCompleted, false
	}

	if t.StartDate.IsZero() {
		return TaskStatusPending, false
	}

	day := DateOf(today)

	// 截止日期已过,状态为进行中
	if t.Deadline != nil && DateOf(*t.Deadline).Before(day) {
		return TaskStatusInProgress, t.Status == TaskStatusPending
	}

	// 开始日期小于或等于当前日期,状态为进行中
	if !DateOf(t.StartDate).After(day) {
		return TaskStatusInProgress, false
	}

	return TaskStatusPending, false
}
