package service

import (
	"strings"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"
)

// ListingService 商品服务
type ListingService struct {
	listingRepo repository.ListingRepository
	storeRepo   repository.StoreRepository
}

// ListingCreateInput 商品创建输入
type ListingCreateInput struct {
	UserID   uint
	Title    string
	Price    models.Money
	Currency string
}

// NewListingService 创建商品服务
func NewListingService(listingRepo repository.ListingRepository, storeRepo repository.StoreRepository) *ListingService {
	return &ListingService{
		listingRepo: listingRepo,
		storeRepo:   storeRepo,
	}
}

// Get 查询商品
func (s *ListingService) Get(listingID uint) (*models.Listing, error) {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, ErrListingNotFound
	}
	return listing, nil
}

// GetVisible 查询对外可见的商品，所属店铺停用或归档时视同不存在
func (s *ListingService) GetVisible(listingID uint, now time.Time) (*models.Listing, error) {
	listing, err := s.Get(listingID)
	if err != nil {
		return nil, err
	}
	if listing.StoreID != nil && *listing.StoreID != 0 {
		store, err := s.storeRepo.GetByID(*listing.StoreID)
		if err != nil {
			return nil, err
		}
		if !StoreVisible(store, now) {
			return nil, ErrListingNotFound
		}
	}
	return listing, nil
}

// List 分页查询商品
func (s *ListingService) List(filter repository.ListingListFilter) ([]models.Listing, int64, error) {
	return s.listingRepo.List(filter)
}

// ListVisible 分页查询对外可见的商品，隐藏停用/归档店铺的商品
func (s *ListingService) ListVisible(filter repository.ListingListFilter, now time.Time) ([]models.Listing, int64, error) {
	filter.StoreExpiresAfter = now.Add(-constants.StoreGracePeriod)
	return s.listingRepo.List(filter)
}

// Create 创建个人商品（挂入店铺经由店铺额度校验单独处理）
func (s *ListingService) Create(input ListingCreateInput) (*models.Listing, error) {
	if input.UserID == 0 || strings.TrimSpace(input.Title) == "" {
		return nil, ErrValidation
	}
	if !input.Price.IsPositive() {
		return nil, ErrValidation
	}
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	now := time.Now()
	listing := &models.Listing{
		UserID:    input.UserID,
		Title:     strings.TrimSpace(input.Title),
		Price:     input.Price,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Delete 删除商品，店铺商品同时释放一个额度
func (s *ListingService) Delete(listingID, userID uint) error {
	listing, err := s.listingRepo.GetByID(listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if listing.UserID != userID {
		return ErrNotOwner
	}
	if err := s.listingRepo.Delete(listingID); err != nil {
		return err
	}
	if listing.StoreID != nil && *listing.StoreID != 0 {
		store, err := s.storeRepo.GetByID(*listing.StoreID)
		if err != nil || store == nil {
			return err
		}
		if store.AdsUsed > 0 {
			store.AdsUsed--
			store.UpdatedAt = time.Now()
			return s.storeRepo.Update(store)
		}
	}
	return nil
}
