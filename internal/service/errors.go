package service

import (
	"errors"
	"fmt"
)

// 服务层错误分类
// 所有校验类错误都通过下列错误值或错误类型返回,边界层据此翻译为
// HTTP 状态码,核心层不跨边界抛出异常
var (
	// ErrTaskNotFound 任务不存在
	ErrTaskNotFound = errors.New("task not found")
	// ErrWorkflowNotFound 工作流不存在
	ErrWorkflowNotFound = errors.New("workflow not found")
	// ErrIssueNotFound 问题不存在
	ErrIssueNotFound = errors.New("issue not found")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrNotAuthorized 无权访问他人资源,与“不存在”区分
	ErrNotAuthorized = errors.New("not authorized to access this resource")
	// ErrDuplicateName 工作流名称在所属范围内重复
	ErrDuplicateName = errors.New("workflow name already exists")
	// ErrInvalidStatus 无效的状态值
	ErrInvalidStatus = errors.New("invalid status value")
	// ErrInvalidProgress 无效的进展步骤
	ErrInvalidProgress = errors.New("invalid progress step")
	// ErrInvalidPriority 无效的优先级值
	ErrInvalidPriority = errors.New("invalid priority value")
	// ErrInvalidDate 无效的日期格式
	ErrInvalidDate = errors.New("invalid date format")
	// ErrIndexOutOfRange 步骤索引越界
	ErrIndexOutOfRange = errors.New("step index out of range")
	// ErrInvalidState 操作不满足生命周期状态要求
	ErrInvalidState = errors.New("operation not allowed in current state")
	// ErrEmptyContent 评论内容为空
	ErrEmptyContent = errors.New("content must not be empty")
	// ErrUsernameTaken 用户名已存在
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken 邮箱已存在
	ErrEmailTaken = errors.New("email already exists")
	// ErrInvalidCredentials 用户名或密码错误
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// WorkflowInUseError 工作流正在被活动任务使用,结构性修改被拒绝
type WorkflowInUseError struct {
	Count int64
}

func (e *WorkflowInUseError) Error() string {
	return fmt.Sprintf("无法修改工作流步骤,当前有 %d 个正在执行的任务使用此工作流类型", e.Count)
}

// StorageError 存储层意外失败
// 与校验错误区分,调用方据此区分“输入有误”和“系统故障”
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// wrapStorage 将存储层错误包装为 StorageError
func wrapStorage(err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Err: err}
}
