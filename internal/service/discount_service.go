package service

import (
	"strings"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DiscountService 折扣目录服务
type DiscountService struct {
	discountRepo repository.DiscountRepository
	campaignRepo repository.CampaignRepository
	listingRepo  repository.ListingRepository
	storeRepo    repository.StoreRepository
}

// DiscountCreateInput 折扣创建输入
type DiscountCreateInput struct {
	UserID             uint
	StoreID            uint
	Title              string
	Description        string
	Type               string
	Value              models.Money
	MinPurchaseAmount  models.Money
	MaxDiscountAmount  models.Money
	ApplicableListings models.IDList
	StartsAt           time.Time
	EndsAt             time.Time
	UsageLimit         int
}

// CampaignCreateInput 活动创建输入
type CampaignCreateInput struct {
	UserID             uint
	StoreID            uint
	Title              string
	Description        string
	Type               string
	Value              models.Money
	MaxDiscountAmount  models.Money
	ApplicableListings models.IDList
	StartsAt           time.Time
	EndsAt             time.Time
	UsageLimit         int
}

// TimerBarInput 倒计时条设置输入
type TimerBarInput struct {
	UserID    uint
	ListingID uint
	Enabled   bool
	Title     string
	Color     string
	EndsAt    *time.Time
}

// NewDiscountService 创建折扣目录服务
func NewDiscountService(
	discountRepo repository.DiscountRepository,
	campaignRepo repository.CampaignRepository,
	listingRepo repository.ListingRepository,
	storeRepo repository.StoreRepository,
) *DiscountService {
	return &DiscountService{
		discountRepo: discountRepo,
		campaignRepo: campaignRepo,
		listingRepo:  listingRepo,
		storeRepo:    storeRepo,
	}
}

// CreateDiscount 创建店铺折扣
func (s *DiscountService) CreateDiscount(input DiscountCreateInput, now time.Time) (*models.Discount, error) {
	store, err := s.requireOwnedStore(input.StoreID, input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validateDiscountInput(input); err != nil {
		return nil, err
	}

	discount := &models.Discount{
		StoreID:            store.ID,
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		Type:               input.Type,
		Value:              input.Value,
		MinPurchaseAmount:  input.MinPurchaseAmount,
		MaxDiscountAmount:  input.MaxDiscountAmount,
		ApplicableListings: input.ApplicableListings,
		StartsAt:           input.StartsAt,
		EndsAt:             input.EndsAt,
		UsageLimit:         input.UsageLimit,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.discountRepo.Create(discount); err != nil {
		return nil, err
	}
	logger.Infow("discount_created", "discount_id", discount.ID, "store_id", store.ID, "type", discount.Type)
	return discount, nil
}

// UpdateDiscount 更新店铺折扣
func (s *DiscountService) UpdateDiscount(discountID uint, input DiscountCreateInput, now time.Time) (*models.Discount, error) {
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return nil, err
	}
	if discount == nil {
		return nil, ErrDiscountNotFound
	}
	if _, err := s.requireOwnedStore(discount.StoreID, input.UserID); err != nil {
		return nil, err
	}
	input.StoreID = discount.StoreID
	if err := s.validateDiscountInput(input); err != nil {
		return nil, err
	}

	discount.Title = strings.TrimSpace(input.Title)
	discount.Description = strings.TrimSpace(input.Description)
	discount.Type = input.Type
	discount.Value = input.Value
	discount.MinPurchaseAmount = input.MinPurchaseAmount
	discount.MaxDiscountAmount = input.MaxDiscountAmount
	discount.ApplicableListings = input.ApplicableListings
	discount.StartsAt = input.StartsAt
	discount.EndsAt = input.EndsAt
	discount.UsageLimit = input.UsageLimit
	discount.UpdatedAt = now
	if err := s.discountRepo.Update(discount); err != nil {
		return nil, err
	}
	return discount, nil
}

// DeleteDiscount 删除店铺折扣
func (s *DiscountService) DeleteDiscount(discountID, userID uint) error {
	discount, err := s.discountRepo.GetByID(discountID)
	if err != nil {
		return err
	}
	if discount == nil {
		return ErrDiscountNotFound
	}
	if _, err := s.requireOwnedStore(discount.StoreID, userID); err != nil {
		return err
	}
	return s.discountRepo.Delete(discountID)
}

// ListDiscounts 分页查询折扣
func (s *DiscountService) ListDiscounts(filter repository.DiscountListFilter) ([]models.Discount, int64, error) {
	return s.discountRepo.List(filter)
}

// CreateCampaign 创建营销活动
func (s *DiscountService) CreateCampaign(input CampaignCreateInput, now time.Time) (*models.Campaign, error) {
	store, err := s.requireOwnedStore(input.StoreID, input.UserID)
	if err != nil {
		return nil, err
	}
	if !isValidCampaignType(input.Type) {
		return nil, ErrValidation
	}
	if err := validatePercentValue(input.Value); err != nil {
		return nil, err
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}
	if len(input.ApplicableListings) == 0 {
		return nil, ErrValidation
	}

	campaign := &models.Campaign{
		StoreID:            store.ID,
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		Type:               input.Type,
		Value:              input.Value,
		MaxDiscountAmount:  input.MaxDiscountAmount,
		ApplicableListings: input.ApplicableListings,
		StartsAt:           input.StartsAt,
		EndsAt:             input.EndsAt,
		UsageLimit:         input.UsageLimit,
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.campaignRepo.Create(campaign); err != nil {
		return nil, err
	}
	logger.Infow("campaign_created", "campaign_id", campaign.ID, "store_id", store.ID, "type", campaign.Type)
	return campaign, nil
}

// ListCampaigns 分页查询活动
func (s *DiscountService) ListCampaigns(filter repository.CampaignListFilter) ([]models.Campaign, int64, error) {
	return s.campaignRepo.List(filter)
}

// DeleteCampaign 删除营销活动
func (s *DiscountService) DeleteCampaign(campaignID, userID uint) error {
	campaign, err := s.campaignRepo.GetByID(campaignID)
	if err != nil {
		return err
	}
	if campaign == nil {
		return ErrCampaignNotFound
	}
	if _, err := s.requireOwnedStore(campaign.StoreID, userID); err != nil {
		return err
	}
	return s.campaignRepo.Delete(campaignID)
}

// ActiveForListing 返回当前对某商品生效的折扣与活动，
// 店铺失效后目录整体不生效
func (s *DiscountService) ActiveForListing(listingID uint, now time.Time) ([]models.Discount, []models.Campaign, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, nil, err
	}
	if listing == nil {
		return nil, nil, ErrListingNotFound
	}
	if listing.StoreID == nil || *listing.StoreID == 0 {
		return []models.Discount{}, []models.Campaign{}, nil
	}
	store, err := s.storeRepo.GetByID(*listing.StoreID)
	if err != nil {
		return nil, nil, err
	}
	if !StoreVisible(store, now) {
		return []models.Discount{}, []models.Campaign{}, nil
	}

	discounts, err := s.discountRepo.ListActiveForStore(*listing.StoreID, now)
	if err != nil {
		return nil, nil, err
	}
	campaigns, err := s.campaignRepo.ListActiveForStore(*listing.StoreID, now)
	if err != nil {
		return nil, nil, err
	}

	matchedDiscounts := make([]models.Discount, 0, len(discounts))
	for _, d := range discounts {
		if d.ApplicableListings.Contains(listingID) {
			matchedDiscounts = append(matchedDiscounts, d)
		}
	}
	matchedCampaigns := make([]models.Campaign, 0, len(campaigns))
	for _, c := range campaigns {
		if c.ApplicableListings.Contains(listingID) {
			matchedCampaigns = append(matchedCampaigns, c)
		}
	}
	return matchedDiscounts, matchedCampaigns, nil
}

// ApplyListingDiscountInTx 在事务内为商品写入商品级折扣（付费操作的领域变更部分）
func (s *DiscountService) ApplyListingDiscountInTx(tx *gorm.DB, userID, listingID uint, percentage models.Money, endsAt time.Time, now time.Time) (*models.Listing, error) {
	if err := validatePercentValue(percentage); err != nil {
		return nil, err
	}
	if !endsAt.After(now) {
		return nil, ErrValidation
	}
	if endsAt.Sub(now) > time.Duration(constants.DiscountMaxDays)*24*time.Hour {
		return nil, ErrValidation
	}

	repo := s.listingRepo.WithTx(tx)
	listing, err := repo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, ErrNotOwner
	}

	// 原价保留折扣前价格，现价改写为折后价
	base := listing.Price.Decimal
	if listing.OriginalPrice != nil && listing.OriginalPrice.GreaterThan(base) {
		base = listing.OriginalPrice.Decimal
	}
	factor := decimalOne.Sub(percentage.Decimal.Div(decimalHundred))
	discounted := models.NewMoneyFromDecimal(base.Mul(factor))
	original := models.NewMoneyFromDecimal(base)

	listing.HasDiscount = true
	listing.DiscountPercentage = &percentage
	listing.OriginalPrice = &original
	listing.Price = discounted
	listing.DiscountEndsAt = &endsAt
	listing.UpdatedAt = now
	if err := repo.Update(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// PromoteListingInTx 在事务内为商品写入推广截止时间（付费操作的领域变更部分）
func (s *DiscountService) PromoteListingInTx(tx *gorm.DB, userID, listingID uint, days int, now time.Time) (*models.Listing, error) {
	if days <= 0 {
		days = constants.PromotionDefaultDays
	}
	repo := s.listingRepo.WithTx(tx)
	listing, err := repo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, ErrNotOwner
	}

	// 推广期内续购从当前截止时间顺延
	base := now
	if listing.PromotionEndsAt != nil && listing.PromotionEndsAt.After(now) {
		base = *listing.PromotionEndsAt
	}
	endsAt := base.AddDate(0, 0, days)
	listing.PromotionEndsAt = &endsAt
	listing.UpdatedAt = now
	if err := repo.Update(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// SetTimerBar 设置商品倒计时条
func (s *DiscountService) SetTimerBar(input TimerBarInput, now time.Time) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(input.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	if listing.UserID != input.UserID {
		return nil, ErrNotOwner
	}
	if input.Enabled {
		if input.EndsAt == nil || !input.EndsAt.After(now) {
			return nil, ErrValidation
		}
		if input.EndsAt.Sub(now) > time.Duration(constants.TimerBarMaxDays)*24*time.Hour {
			return nil, ErrValidation
		}
	}

	listing.TimerBarEnabled = input.Enabled
	listing.TimerBarTitle = strings.TrimSpace(input.Title)
	listing.TimerBarColor = strings.TrimSpace(input.Color)
	listing.TimerBarEndsAt = input.EndsAt
	listing.UpdatedAt = now
	if err := s.listingRepo.Update(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *DiscountService) requireOwnedStore(storeID, userID uint) (*models.Store, error) {
	store, err := s.storeRepo.GetByID(storeID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, ErrStoreNotFound
	}
	if store.UserID != userID {
		return nil, ErrNotOwner
	}
	return store, nil
}

func (s *DiscountService) validateDiscountInput(input DiscountCreateInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return ErrValidation
	}
	if len(input.ApplicableListings) == 0 {
		return ErrValidation
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return err
	}
	switch input.Type {
	case constants.DiscountTypePercentage:
		return validatePercentValue(input.Value)
	case constants.DiscountTypeFixedAmount:
		if !input.Value.IsPositive() {
			return ErrValidation
		}
		// 固定金额不得吃掉任何适用商品的全部价格
		for _, listingID := range input.ApplicableListings {
			listing, err := s.listingRepo.GetByID(listingID)
			if err != nil {
				return err
			}
			if listing == nil {
				return ErrListingNotFound
			}
			if input.Value.GreaterThanOrEqual(listing.Price.Decimal) {
				return ErrValidation
			}
		}
		return nil
	case constants.DiscountTypeBuyXGetY:
		return nil
	default:
		return ErrValidation
	}
}

func validatePercentValue(value models.Money) error {
	min := decimal.NewFromInt(int64(constants.DiscountPercentMin))
	max := decimal.NewFromInt(int64(constants.DiscountPercentMax))
	if value.LessThan(min) || value.GreaterThan(max) {
		return ErrValidation
	}
	return nil
}

func validateWindow(startsAt, endsAt time.Time) error {
	if startsAt.IsZero() || endsAt.IsZero() {
		return ErrValidation
	}
	if !startsAt.Before(endsAt) {
		return ErrValidation
	}
	if endsAt.Sub(startsAt) > time.Duration(constants.DiscountMaxDays)*24*time.Hour {
		return ErrValidation
	}
	return nil
}

func isValidCampaignType(t string) bool {
	switch t {
	case constants.CampaignTypeFlashSale,
		constants.CampaignTypeSeasonal,
		constants.CampaignTypeClearance,
		constants.CampaignTypeBundle,
		constants.CampaignTypeLoyalty:
		return true
	}
	return false
}
