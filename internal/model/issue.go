package model

import (
	"encoding/json"
	"errors"
	"time"
)

// 问题状态
const (
	IssueStatusOpen     = "open"
	IssueStatusResolved = "resolved"
)

// ValidIssueStatuses 合法的问题状态集合
var ValidIssueStatuses = []string{IssueStatusOpen, IssueStatusResolved}

// IssueModel 问题数据模型
// Solutions 以 JSON 数组形式存储候选解决方案,只追加不删除
type IssueModel struct {
	ID                 uint      `gorm:"primaryKey"`
	Title              string    `gorm:"type:varchar(200);not null"`
	Description        string    `gorm:"type:text"`
	Priority           string    `gorm:"type:varchar(20);not null;default:medium"`
	Status             string    `gorm:"type:varchar(20);not null;default:open;index"`
	CreatedAt          time.Time `gorm:"not null;index"`
	ResolvedAt         *time.Time
	Solutions          string  `gorm:"type:text"` // 解决方案列表,JSON 格式存储
	SuccessfulSolution *string `gorm:"type:text"` // 标记成功时解决方案的文本值
	UserID             *uint   `gorm:"index"`
}

// TableName 指定表名
func (IssueModel) TableName() string {
	return "issues"
}

// Validate 验证问题模型
func (i *IssueModel) Validate() error {
	if i.Title == "" {
		return errors.New("issue title is required")
	}
	return nil
}

// GetSolutions 获取解决方案列表
// 内容无法解析时返回空列表
func (i *IssueModel) GetSolutions() []string {
	var solutions []string
	if i.Solutions == "" {
		return []string{}
	}
	if err := json.Unmarshal([]byte(i.Solutions), &solutions); err != nil {
		return []string{}
	}
	if solutions == nil {
		return []string{}
	}
	return solutions
}

// SetSolutions 设置解决方案列表
func (i *IssueModel) SetSolutions(solutions []string) {
	if solutions == nil {
		solutions = []string{}
	}
	data, _ := json.Marshal(solutions)
	i.Solutions = string(data)
}
