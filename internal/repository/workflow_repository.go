package repository

import (
	"github.com/Mingzhe994/work-calendar-page/internal/model"
	"gorm.io/gorm"
)

// WorkflowRepository 工作流仓储接口
type WorkflowRepository interface {
	Save(workflow *model.WorkflowModel) error
	FindByID(id uint) (*model.WorkflowModel, error)
	FindAll(userID *uint) ([]*model.WorkflowModel, error)
	FindGlobals() ([]*model.WorkflowModel, error)
	FindByName(name string, userID *uint) (*model.WorkflowModel, error)
	NameExists(name string, userID *uint, excludeID uint) (bool, error)
	Count() (int64, error)
	Delete(id uint) error
}

// workflowRepository 工作流仓储实现
type workflowRepository struct {
	db *gorm.DB
}

// NewWorkflowRepository 创建工作流仓储
func NewWorkflowRepository(db *gorm.DB) WorkflowRepository {
	return &workflowRepository{db: db}
}

// Save 保存工作流
func (r *workflowRepository) Save(workflow *model.WorkflowModel) error {
	return r.db.Save(workflow).Error
}

// FindByID 根据 ID 查找工作流
func (r *workflowRepository) FindByID(id uint) (*model.WorkflowModel, error) {
	var workflow model.WorkflowModel
	if err := r.db.Where("id = ?", id).First(&workflow).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

// FindAll 查找工作流,userID 非空时只返回该用户的工作流
func (r *workflowRepository) FindAll(userID *uint) ([]*model.WorkflowModel, error) {
	var workflows []*model.WorkflowModel
	query := r.db.Model(&model.WorkflowModel{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	err := query.Order("created_at ASC").Find(&workflows).Error
	return workflows, err
}

// FindGlobals 查找所有全局(无归属)工作流
func (r *workflowRepository) FindGlobals() ([]*model.WorkflowModel, error) {
	var workflows []*model.WorkflowModel
	err := r.db.Where("user_id IS NULL").Order("created_at ASC").Find(&workflows).Error
	return workflows, err
}

// FindByName 在指定范围内按名称查找工作流
// userID 为空表示全局范围
func (r *workflowRepository) FindByName(name string, userID *uint) (*model.WorkflowModel, error) {
	var workflow model.WorkflowModel
	query := r.db.Where("name = ?", name)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL")
	}
	if err := query.First(&workflow).Error; err != nil {
		return nil, err
	}
	return &workflow, nil
}

// NameExists 判断名称在指定范围内是否已被其他工作流占用
func (r *workflowRepository) NameExists(name string, userID *uint, excludeID uint) (bool, error) {
	var count int64
	query := r.db.Model(&model.WorkflowModel{}).Where("name = ?", name)
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	} else {
		query = query.Where("user_id IS NULL")
	}
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count 统计工作流总数
func (r *workflowRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.WorkflowModel{}).Count(&count).Error
	return count, err
}

// Delete 删除工作流
func (r *workflowRepository) Delete(id uint) error {
	return r.db.Where("id = ?", id).Delete(&model.WorkflowModel{}).Error
}
