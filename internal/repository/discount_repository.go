package repository

import (
	"errors"
	"time"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
)

// DiscountListFilter 折扣查询条件
type DiscountListFilter struct {
	StoreID  uint
	Type     string
	Active   *bool
	Page     int
	PageSize int
}

// DiscountRepository 折扣数据访问接口
type DiscountRepository interface {
	GetByID(id uint) (*models.Discount, error)
	Create(discount *models.Discount) error
	Update(discount *models.Discount) error
	Delete(id uint) error
	List(filter DiscountListFilter) ([]models.Discount, int64, error)
	ListActiveForStore(storeID uint, now time.Time) ([]models.Discount, error)
	IncrementUsedCount(id uint) error
	WithTx(tx *gorm.DB) *GormDiscountRepository
}

// GormDiscountRepository GORM 折扣仓储实现
type GormDiscountRepository struct {
	db *gorm.DB
}

// NewDiscountRepository 创建折扣仓储
func NewDiscountRepository(db *gorm.DB) *GormDiscountRepository {
	return &GormDiscountRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDiscountRepository) WithTx(tx *gorm.DB) *GormDiscountRepository {
	if tx == nil {
		return r
	}
	return &GormDiscountRepository{db: tx}
}

// GetByID 按ID获取折扣
func (r *GormDiscountRepository) GetByID(id uint) (*models.Discount, error) {
	if id == 0 {
		return nil, nil
	}
	var discount models.Discount
	if err := r.db.First(&discount, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &discount, nil
}

// Create 创建折扣
func (r *GormDiscountRepository) Create(discount *models.Discount) error {
	return r.db.Create(discount).Error
}

// Update 更新折扣
func (r *GormDiscountRepository) Update(discount *models.Discount) error {
	return r.db.Save(discount).Error
}

// Delete 软删除折扣
func (r *GormDiscountRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Discount{}, id).Error
}

// List 分页查询折扣
func (r *GormDiscountRepository) List(filter DiscountListFilter) ([]models.Discount, int64, error) {
	query := r.db.Model(&models.Discount{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var discounts []models.Discount
	if err := query.Order("id desc").Find(&discounts).Error; err != nil {
		return nil, 0, err
	}
	return discounts, total, nil
}

// ListActiveForStore 查询店铺当前生效的折扣，按创建先后排序保证结果稳定
func (r *GormDiscountRepository) ListActiveForStore(storeID uint, now time.Time) ([]models.Discount, error) {
	if storeID == 0 {
		return []models.Discount{}, nil
	}
	var discounts []models.Discount
	if err := r.db.
		Where("store_id = ? AND is_active = ? AND starts_at <= ? AND ends_at >= ?", storeID, true, now, now).
		Order("id asc").
		Find(&discounts).Error; err != nil {
		return nil, err
	}
	return discounts, nil
}

// IncrementUsedCount 累加使用次数
func (r *GormDiscountRepository) IncrementUsedCount(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Discount{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}
