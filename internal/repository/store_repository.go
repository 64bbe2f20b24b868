package repository

import (
	"errors"
	"time"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StoreListFilter 店铺查询条件
type StoreListFilter struct {
	UserID   uint
	Keyword  string
	Page     int
	PageSize int
}

// StoreRepository 店铺数据访问接口
type StoreRepository interface {
	GetByID(id uint) (*models.Store, error)
	GetByIDForUpdate(id uint) (*models.Store, error)
	GetByIDUnscoped(id uint) (*models.Store, error)
	Create(store *models.Store) error
	Update(store *models.Store) error
	Delete(id uint) error
	List(filter StoreListFilter) ([]models.Store, int64, error)
	CountOwnedLive(userID uint, now time.Time) (int64, error)
	ListExpiringBetween(from, to time.Time) ([]models.Store, error)
	ListFollowers(storeID uint) ([]models.StoreFollower, error)
	AddFollower(follower *models.StoreFollower) error
	RemoveFollower(storeID, userID uint) error
	CountFollowers(storeID uint) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormStoreRepository
}

// GormStoreRepository GORM 店铺仓储实现
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建店铺仓储
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// Transaction 在事务内执行
func (r *GormStoreRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// WithTx 绑定事务
func (r *GormStoreRepository) WithTx(tx *gorm.DB) *GormStoreRepository {
	if tx == nil {
		return r
	}
	return &GormStoreRepository{db: tx}
}

// GetByID 按ID获取店铺
func (r *GormStoreRepository) GetByID(id uint) (*models.Store, error) {
	if id == 0 {
		return nil, nil
	}
	var store models.Store
	if err := r.db.Preload("Plan").First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetByIDForUpdate 按ID加锁获取店铺
func (r *GormStoreRepository) GetByIDForUpdate(id uint) (*models.Store, error) {
	if id == 0 {
		return nil, nil
	}
	var store models.Store
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// GetByIDUnscoped 按ID获取店铺（含已软删除记录）
func (r *GormStoreRepository) GetByIDUnscoped(id uint) (*models.Store, error) {
	if id == 0 {
		return nil, nil
	}
	var store models.Store
	if err := r.db.Unscoped().Preload("Plan").First(&store, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}

// Create 创建店铺
func (r *GormStoreRepository) Create(store *models.Store) error {
	return r.db.Create(store).Error
}

// Update 更新店铺
func (r *GormStoreRepository) Update(store *models.Store) error {
	return r.db.Save(store).Error
}

// Delete 软删除店铺
func (r *GormStoreRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Store{}, id).Error
}

// List 分页查询店铺
func (r *GormStoreRepository) List(filter StoreListFilter) ([]models.Store, int64, error) {
	query := r.db.Model(&models.Store{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Keyword != "" {
		query = query.Where("name LIKE ?", "%"+filter.Keyword+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var stores []models.Store
	if err := query.Preload("Plan").Order("id desc").Find(&stores).Error; err != nil {
		return nil, 0, err
	}
	return stores, total, nil
}

// CountOwnedLive 统计用户未归档的店铺数（套餐到期 37 天内仍算占位）
func (r *GormStoreRepository) CountOwnedLive(userID uint, now time.Time) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	archiveBoundary := now.AddDate(0, 0, -37)
	var count int64
	if err := r.db.Model(&models.Store{}).
		Where("user_id = ? AND expires_at > ?", userID, archiveBoundary).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListExpiringBetween 查询套餐到期时间落在区间内的店铺
func (r *GormStoreRepository) ListExpiringBetween(from, to time.Time) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.
		Where("expires_at > ? AND expires_at <= ?", from, to).
		Order("expires_at asc").
		Find(&stores).Error; err != nil {
		return nil, err
	}
	return stores, nil
}

// ListFollowers 查询店铺关注人列表
func (r *GormStoreRepository) ListFollowers(storeID uint) ([]models.StoreFollower, error) {
	if storeID == 0 {
		return []models.StoreFollower{}, nil
	}
	var followers []models.StoreFollower
	if err := r.db.Where("store_id = ?", storeID).Find(&followers).Error; err != nil {
		return nil, err
	}
	return followers, nil
}

// AddFollower 添加关注关系
func (r *GormStoreRepository) AddFollower(follower *models.StoreFollower) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(follower).Error
}

// RemoveFollower 移除关注关系
func (r *GormStoreRepository) RemoveFollower(storeID, userID uint) error {
	if storeID == 0 || userID == 0 {
		return nil
	}
	return r.db.Where("store_id = ? AND user_id = ?", storeID, userID).
		Delete(&models.StoreFollower{}).Error
}

// CountFollowers 统计店铺关注人数
func (r *GormStoreRepository) CountFollowers(storeID uint) (int64, error) {
	if storeID == 0 {
		return 0, nil
	}
	var count int64
	if err := r.db.Model(&models.StoreFollower{}).
		Where("store_id = ?", storeID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
