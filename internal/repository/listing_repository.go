package repository

import (
	"errors"
	"time"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
)

// ListingListFilter 商品查询条件。
// StoreExpiresAfter 非零时仅返回无店铺的商品，或店铺到期时间晚于该时刻的商品
// （公开列表用它隐藏停用/归档店铺的商品）。
type ListingListFilter struct {
	UserID            uint
	StoreID           uint
	Keyword           string
	StoreExpiresAfter time.Time
	Page              int
	PageSize          int
}

// ListingRepository 商品数据访问接口
type ListingRepository interface {
	GetByID(id uint) (*models.Listing, error)
	Create(listing *models.Listing) error
	Update(listing *models.Listing) error
	Delete(id uint) error
	List(filter ListingListFilter) ([]models.Listing, int64, error)
	CountByStoreID(storeID uint) (int64, error)
	DetachFromStore(storeID uint) error
	ClearExpiredPromotions(now time.Time) (int64, error)
	WithTx(tx *gorm.DB) *GormListingRepository
}

// GormListingRepository GORM 商品仓储实现
type GormListingRepository struct {
	db *gorm.DB
}

// NewListingRepository 创建商品仓储
func NewListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// WithTx 绑定事务
func (r *GormListingRepository) WithTx(tx *gorm.DB) *GormListingRepository {
	if tx == nil {
		return r
	}
	return &GormListingRepository{db: tx}
}

// GetByID 按ID获取商品
func (r *GormListingRepository) GetByID(id uint) (*models.Listing, error) {
	if id == 0 {
		return nil, nil
	}
	var listing models.Listing
	if err := r.db.First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// Create 创建商品
func (r *GormListingRepository) Create(listing *models.Listing) error {
	return r.db.Create(listing).Error
}

// Update 更新商品
func (r *GormListingRepository) Update(listing *models.Listing) error {
	return r.db.Save(listing).Error
}

// Delete 软删除商品
func (r *GormListingRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Listing{}, id).Error
}

// List 分页查询商品
func (r *GormListingRepository) List(filter ListingListFilter) ([]models.Listing, int64, error) {
	query := r.db.Model(&models.Listing{})
	if filter.UserID != 0 {
		query = query.Where("listings.user_id = ?", filter.UserID)
	}
	if filter.StoreID != 0 {
		query = query.Where("listings.store_id = ?", filter.StoreID)
	}
	if filter.Keyword != "" {
		query = query.Where("listings.title LIKE ?", "%"+filter.Keyword+"%")
	}
	if !filter.StoreExpiresAfter.IsZero() {
		query = query.
			Joins("LEFT JOIN stores ON stores.id = listings.store_id AND stores.deleted_at IS NULL").
			Where("listings.store_id IS NULL OR stores.expires_at > ?", filter.StoreExpiresAfter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var listings []models.Listing
	if err := query.Order("listings.id desc").Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// CountByStoreID 统计店铺下未删除商品数
func (r *GormListingRepository) CountByStoreID(storeID uint) (int64, error) {
	if storeID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.Listing{}).Where("store_id = ?", storeID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DetachFromStore 将店铺下所有商品软删除（随店铺删除级联）
func (r *GormListingRepository) DetachFromStore(storeID uint) error {
	if storeID == 0 {
		return nil
	}
	return r.db.Where("store_id = ?", storeID).Delete(&models.Listing{}).Error
}

// ClearExpiredPromotions 清理已过期的推广标记
func (r *GormListingRepository) ClearExpiredPromotions(now time.Time) (int64, error) {
	result := r.db.Model(&models.Listing{}).
		Where("promotion_ends_at IS NOT NULL AND promotion_ends_at <= ?", now).
		Update("promotion_ends_at", nil)
	return result.RowsAffected, result.Error
}
