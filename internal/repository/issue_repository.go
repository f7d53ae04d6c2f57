package repository

import (
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// IssueRepository 问题仓储接口
type IssueRepository interface {
	Save(issue *model.IssueModel) error
	FindByID(id uint) (*model.IssueModel, error)
	FindByFilter(filter *IssueFilter) ([]*model.IssueModel, error)
	Delete(id uint) error
}

// IssueFilter 问题查询过滤器
type IssueFilter struct {
	UserID   *uint
	Status   *string
	OrderBy  string // priority 或 created_at,默认 priority
}

// issueRepository 问题仓储实现
type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository 创建问题仓储
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

// Save 保存问题
func (r *issueRepository) Save(issue *model.IssueModel) error {
	return r.db.Save(issue).Error
}

// FindByID 根据 ID 查找问题
func (r *issueRepository) FindByID(id uint) (*model.IssueModel, error) {
	var issue model.IssueModel
	if err := r.db.Where("id = ?", id).First(&issue).Error; err != nil {
		return nil, err
	}
	return &issue, nil
}

// FindByFilter 根据过滤器查找问题
func (r *issueRepository) FindByFilter(filter *IssueFilter) ([]*model.IssueModel, error) {
	var issues []*model.IssueModel
	query := r.db.Model(&model.IssueModel{})

	order := "priority DESC"
	if filter != nil {
		if filter.UserID != nil {
			query = query.Where("user_id = ?", *filter.UserID)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
		if filter.OrderBy == "created_at" {
			order = "created_at DESC"
		}
	}

	err := query.Order(order).Find(&issues).Error
	return issues, err
}

// Delete 删除问题
func (r *issueRepository) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&model.IssueModel{}).Error
}
