package service

import (
	"strings"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"gorm.io/gorm"
)

// StoreService 店铺生命周期服务
type StoreService struct {
	storeRepo   repository.StoreRepository
	planRepo    repository.StorePlanRepository
	listingRepo repository.ListingRepository
	notifySvc   *NotificationService
	maxPerUser  int
}

// StoreStatusInfo 店铺状态快照。状态由到期时间惰性推导，
// 边界附近相邻两次读取可能得到不同结果，调用方只能当快照使用。
type StoreStatusInfo struct {
	Store       *models.Store `json:"store"`
	Status      string        `json:"status"`
	ExpiresAt   time.Time     `json:"expires_at"`
	GraceEndsAt time.Time     `json:"grace_ends_at"`
	ArchivesAt  time.Time     `json:"archives_at"`
	Followers   int64         `json:"followers"`
}

// StoreCreateInput 店铺创建输入
type StoreCreateInput struct {
	UserID      uint
	PlanID      uint
	Name        string
	Description string
}

// NewStoreService 创建店铺服务
func NewStoreService(
	storeRepo repository.StoreRepository,
	planRepo repository.StorePlanRepository,
	listingRepo repository.ListingRepository,
	notifySvc *NotificationService,
	maxPerUser int,
) *StoreService {
	if maxPerUser <= 0 {
		maxPerUser = 1
	}
	return &StoreService{
		storeRepo:   storeRepo,
		planRepo:    planRepo,
		listingRepo: listingRepo,
		notifySvc:   notifySvc,
		maxPerUser:  maxPerUser,
	}
}

// DeriveStatus 从到期时间推导店铺状态，纯函数。
// 到期前 active，到期后 7 天内 grace_period，到期后 37 天内 deactivated，之后 archived。
func DeriveStatus(expiresAt, now time.Time) string {
	if now.Before(expiresAt) {
		return constants.StoreStatusActive
	}
	if now.Before(expiresAt.Add(constants.StoreGracePeriod)) {
		return constants.StoreStatusGracePeriod
	}
	if now.Before(expiresAt.Add(constants.StoreArchiveWindow)) {
		return constants.StoreStatusDeactivated
	}
	return constants.StoreStatusArchived
}

// StoreVisible 判断店铺对外可见：active 与 grace_period 可见，
// deactivated 起店铺商品对外隐藏、目录折扣与活动停止生效。
func StoreVisible(store *models.Store, now time.Time) bool {
	if store == nil {
		return false
	}
	switch DeriveStatus(store.ExpiresAt, now) {
	case constants.StoreStatusActive, constants.StoreStatusGracePeriod:
		return true
	}
	return false
}

// CheckStatus 查询店铺状态快照
func (s *StoreService) CheckStatus(storeID uint, now time.Time) (*StoreStatusInfo, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	return s.buildStatusInfo(store, now)
}

func (s *StoreService) buildStatusInfo(store *models.Store, now time.Time) (*StoreStatusInfo, error) {
	status := DeriveStatus(store.ExpiresAt, now)
	if status == constants.StoreStatusArchived && store.ArchivedAt == nil {
		// 首次观测到归档时留痕，不参与后续推导
		observed := now
		store.ArchivedAt = &observed
		if err := s.storeRepo.Update(store); err != nil {
			logger.Warnw("store_archived_at_stamp_failed", "store_id", store.ID, "error", err)
		}
	}
	followers, err := s.storeRepo.CountFollowers(store.ID)
	if err != nil {
		return nil, err
	}
	return &StoreStatusInfo{
		Store:       store,
		Status:      status,
		ExpiresAt:   store.ExpiresAt,
		GraceEndsAt: store.ExpiresAt.Add(constants.StoreGracePeriod),
		ArchivesAt:  store.ExpiresAt.Add(constants.StoreArchiveWindow),
		Followers:   followers,
	}, nil
}

// List 分页查询店铺
func (s *StoreService) List(filter repository.StoreListFilter) ([]models.Store, int64, error) {
	return s.storeRepo.List(filter)
}

// ListPlans 查询可购买套餐
func (s *StoreService) ListPlans() ([]models.StorePlan, error) {
	return s.planRepo.ListActive()
}

// GetPlan 查询套餐
func (s *StoreService) GetPlan(planID uint) (*models.StorePlan, error) {
	plan, err := s.planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrStorePlanNotFound
	}
	return plan, nil
}

// ValidateCreate 创建店铺的静态前置校验（扣款前调用）
func (s *StoreService) ValidateCreate(input StoreCreateInput, now time.Time) (*models.StorePlan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrValidation
	}
	plan, err := s.GetPlan(input.PlanID)
	if err != nil {
		return nil, err
	}
	owned, err := s.storeRepo.CountOwnedLive(input.UserID, now)
	if err != nil {
		return nil, err
	}
	if owned >= int64(s.maxPerUser) {
		return nil, ErrStoreLimitReached
	}
	return plan, nil
}

// ActivateInTx 在事务内创建店铺并进入 active。扣款由调用方先行完成。
func (s *StoreService) ActivateInTx(tx *gorm.DB, input StoreCreateInput, now time.Time) (*models.Store, error) {
	repo := s.storeRepo.WithTx(tx)
	planRepo := s.planRepo.WithTx(tx)

	plan, err := planRepo.GetByID(input.PlanID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrStorePlanNotFound
	}
	owned, err := repo.CountOwnedLive(input.UserID, now)
	if err != nil {
		return nil, err
	}
	if owned >= int64(s.maxPerUser) {
		return nil, ErrStoreLimitReached
	}

	store := &models.Store{
		UserID:      input.UserID,
		PlanID:      plan.ID,
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		AdsUsed:     0,
		ActivatedAt: now,
		ExpiresAt:   now.AddDate(0, 0, plan.DurationDays),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := repo.Create(store); err != nil {
		return nil, err
	}
	logger.Infow("store_activated",
		"store_id", store.ID,
		"user_id", store.UserID,
		"plan_id", plan.ID,
		"expires_at", store.ExpiresAt,
	)
	return store, nil
}

// RenewInTx 在事务内续费店铺。active 状态下在原到期时间上顺延，
// 其余状态从当前时间重新起算。归档店铺亦可续费复活，数据保留不清除。
func (s *StoreService) RenewInTx(tx *gorm.DB, storeID, userID, planID uint, now time.Time) (*models.Store, error) {
	repo := s.storeRepo.WithTx(tx)
	planRepo := s.planRepo.WithTx(tx)

	store, err := repo.GetByIDForUpdate(storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if store.UserID != userID {
		return nil, ErrNotOwner
	}
	plan, err := planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrStorePlanNotFound
	}

	base := now
	if DeriveStatus(store.ExpiresAt, now) == constants.StoreStatusActive {
		base = store.ExpiresAt
	}
	store.PlanID = plan.ID
	store.ExpiresAt = base.AddDate(0, 0, plan.DurationDays)
	store.ArchivedAt = nil
	store.UpdatedAt = now
	if err := repo.Update(store); err != nil {
		return nil, err
	}
	logger.Infow("store_renewed",
		"store_id", store.ID,
		"plan_id", plan.ID,
		"expires_at", store.ExpiresAt,
	)
	return store, nil
}

// ReactivateInTx 在事务内复活停用/归档店铺。关注者、评分与商品历史在
// 停用期间一直保留，复活后随新的到期窗口重新可见。
func (s *StoreService) ReactivateInTx(tx *gorm.DB, storeID, userID, planID uint, now time.Time) (*models.Store, error) {
	repo := s.storeRepo.WithTx(tx)
	planRepo := s.planRepo.WithTx(tx)

	store, err := repo.GetByIDForUpdate(storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if store.UserID != userID {
		return nil, ErrNotOwner
	}
	status := DeriveStatus(store.ExpiresAt, now)
	if status == constants.StoreStatusActive {
		return nil, ErrStoreAlreadyActive
	}
	plan, err := planRepo.GetByID(planID)
	if err != nil {
		return nil, err
	}
	if plan == nil || !plan.IsActive {
		return nil, ErrStorePlanNotFound
	}

	store.PlanID = plan.ID
	store.ActivatedAt = now
	store.ExpiresAt = now.AddDate(0, 0, plan.DurationDays)
	store.ArchivedAt = nil
	store.UpdatedAt = now
	if err := repo.Update(store); err != nil {
		return nil, err
	}

	followers, err := repo.CountFollowers(store.ID)
	if err != nil {
		return nil, err
	}
	logger.Infow("store_reactivated",
		"store_id", store.ID,
		"previous_status", status,
		"followers_restored", followers,
		"expires_at", store.ExpiresAt,
	)
	if s.notifySvc != nil {
		s.notifySvc.NotifyStoreEvent(store.ID, constants.StoreEventReactivated)
	}
	return store, nil
}

// Delete 删除店铺。店铺必须未归档且无存留商品，否则返回携带剩余商品数的错误。
// 删除为终态，随后通知关注者，店主可另行创建新店铺。
func (s *StoreService) Delete(storeID, userID uint, now time.Time) error {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return ErrStoreNotFound
	}
	if store.UserID != userID {
		return ErrNotOwner
	}
	if DeriveStatus(store.ExpiresAt, now) == constants.StoreStatusArchived {
		return ErrStoreArchived
	}
	count, err := s.listingRepo.CountByStoreID(storeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return &StoreActiveListingsError{StoreID: storeID, Count: count}
	}
	if err := s.storeRepo.Delete(storeID); err != nil {
		return err
	}
	logger.Infow("store_deleted", "store_id", storeID, "user_id", userID)
	if s.notifySvc != nil {
		s.notifySvc.NotifyStoreEvent(storeID, constants.StoreEventDeleted)
	}
	return nil
}

// AttachListing 将商品挂入店铺，占用一个商品额度。
// 商品归属写入与额度递增在同一事务内完成。
func (s *StoreService) AttachListing(storeID, userID, listingID uint, now time.Time) (*models.Listing, error) {
	var attached *models.Listing
	err := s.storeRepo.Transaction(func(tx *gorm.DB) error {
		storeRepo := s.storeRepo.WithTx(tx)
		listingRepo := s.listingRepo.WithTx(tx)

		store, err := storeRepo.GetByIDForUpdate(storeID)
		if err != nil {
			return err
		}
		if store == nil {
			return ErrStoreNotFound
		}
		if store.UserID != userID {
			return ErrNotOwner
		}
		if DeriveStatus(store.ExpiresAt, now) != constants.StoreStatusActive {
			return ErrStoreNotActive
		}
		plan, err := s.planRepo.GetByID(store.PlanID)
		if err != nil {
			return err
		}
		if plan == nil {
			return ErrStorePlanNotFound
		}
		if store.AdsUsed >= plan.MaxAds {
			return ErrStoreQuotaExceeded
		}
		listing, err := listingRepo.GetByID(listingID)
		if err != nil {
			return err
		}
		if listing == nil {
			return ErrListingNotFound
		}
		if listing.UserID != userID {
			return ErrNotOwner
		}

		listing.StoreID = &store.ID
		listing.UpdatedAt = now
		if err := listingRepo.Update(listing); err != nil {
			return err
		}
		store.AdsUsed++
		store.UpdatedAt = now
		if err := storeRepo.Update(store); err != nil {
			return err
		}
		attached = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return attached, nil
}

// Follow 关注店铺
func (s *StoreService) Follow(storeID, userID uint) error {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return ErrStoreNotFound
	}
	return s.storeRepo.AddFollower(&models.StoreFollower{
		StoreID:   storeID,
		UserID:    userID,
		CreatedAt: time.Now(),
	})
}

// Unfollow 取消关注店铺
func (s *StoreService) Unfollow(storeID, userID uint) error {
	return s.storeRepo.RemoveFollower(storeID, userID)
}
