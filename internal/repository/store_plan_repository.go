package repository

import (
	"errors"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
)

// StorePlanRepository 店铺套餐数据访问接口
type StorePlanRepository interface {
	GetByID(id uint) (*models.StorePlan, error)
	ListActive() ([]models.StorePlan, error)
	Create(plan *models.StorePlan) error
	Update(plan *models.StorePlan) error
	WithTx(tx *gorm.DB) *GormStorePlanRepository
}

// GormStorePlanRepository GORM 店铺套餐仓储实现
type GormStorePlanRepository struct {
	db *gorm.DB
}

// NewStorePlanRepository 创建店铺套餐仓储
func NewStorePlanRepository(db *gorm.DB) *GormStorePlanRepository {
	return &GormStorePlanRepository{db: db}
}

// WithTx 绑定事务
func (r *GormStorePlanRepository) WithTx(tx *gorm.DB) *GormStorePlanRepository {
	if tx == nil {
		return r
	}
	return &GormStorePlanRepository{db: tx}
}

// GetByID 按ID获取套餐
func (r *GormStorePlanRepository) GetByID(id uint) (*models.StorePlan, error) {
	if id == 0 {
		return nil, nil
	}
	var plan models.StorePlan
	if err := r.db.First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

// ListActive 查询可购买的套餐
func (r *GormStorePlanRepository) ListActive() ([]models.StorePlan, error) {
	var plans []models.StorePlan
	if err := r.db.Where("is_active = ?", true).Order("price asc").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

// Create 创建套餐
func (r *GormStorePlanRepository) Create(plan *models.StorePlan) error {
	return r.db.Create(plan).Error
}

// Update 更新套餐
func (r *GormStorePlanRepository) Update(plan *models.StorePlan) error {
	return r.db.Save(plan).Error
}
