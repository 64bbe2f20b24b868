package repository

import (
	"errors"
	"time"

	"github.com/bazar-next/internal/models"

	"gorm.io/gorm"
)

// CampaignListFilter 活动查询条件
type CampaignListFilter struct {
	StoreID  uint
	Type     string
	Active   *bool
	Page     int
	PageSize int
}

// CampaignRepository 活动数据访问接口
type CampaignRepository interface {
	GetByID(id uint) (*models.Campaign, error)
	Create(campaign *models.Campaign) error
	Update(campaign *models.Campaign) error
	Delete(id uint) error
	List(filter CampaignListFilter) ([]models.Campaign, int64, error)
	ListActiveForStore(storeID uint, now time.Time) ([]models.Campaign, error)
	WithTx(tx *gorm.DB) *GormCampaignRepository
}

// GormCampaignRepository GORM 活动仓储实现
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository 创建活动仓储
func NewCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCampaignRepository) WithTx(tx *gorm.DB) *GormCampaignRepository {
	if tx == nil {
		return r
	}
	return &GormCampaignRepository{db: tx}
}

// GetByID 按ID获取活动
func (r *GormCampaignRepository) GetByID(id uint) (*models.Campaign, error) {
	if id == 0 {
		return nil, nil
	}
	var campaign models.Campaign
	if err := r.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

// Create 创建活动
func (r *GormCampaignRepository) Create(campaign *models.Campaign) error {
	return r.db.Create(campaign).Error
}

// Update 更新活动
func (r *GormCampaignRepository) Update(campaign *models.Campaign) error {
	return r.db.Save(campaign).Error
}

// Delete 软删除活动
func (r *GormCampaignRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Campaign{}, id).Error
}

// List 分页查询活动
func (r *GormCampaignRepository) List(filter CampaignListFilter) ([]models.Campaign, int64, error) {
	query := r.db.Model(&models.Campaign{})
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

	var campaigns []models.Campaign
	if err := query.Order("id desc").Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}
	return campaigns, total, nil
}

// ListActiveForStore 查询店铺当前生效的活动，按创建先后排序保证结果稳定
func (r *GormCampaignRepository) ListActiveForStore(storeID uint, now time.Time) ([]models.Campaign, error) {
	if storeID == 0 {
		return []models.Campaign{}, nil
	}
	var campaigns []models.Campaign
	if err := r.db.
		Where("store_id = ? AND is_active = ? AND starts_at <= ? AND ends_at >= ?", storeID, true, now, now).
		Order("id asc").
		Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}
