package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupPurchaseServiceTest(t *testing.T) (*PurchaseService, *WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:purchase_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.StorePlan{},
		&models.Store{},
		&models.StoreFollower{},
		&models.Listing{},
		&models.Discount{},
		&models.Campaign{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.WalletRechargeOrder{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	walletRepo := repository.NewWalletRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	planRepo := repository.NewStorePlanRepository(db)
	listingRepo := repository.NewListingRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)

	walletSvc := NewWalletService(walletRepo, nil)
	storeSvc := NewStoreService(storeRepo, planRepo, listingRepo, nil, 2)
	discountSvc := NewDiscountService(discountRepo, campaignRepo, listingRepo, storeRepo)
	purchaseSvc := NewPurchaseService(walletRepo, walletSvc, storeSvc, discountSvc, config.PromotionConfig{
		ListingPromote:  config.PromotionTierConfig{Days: 7, Price: 5},
		ListingDiscount: config.PromotionTierConfig{Days: 7, Price: 3},
	})
	return purchaseSvc, walletSvc, db
}

func countWalletTransactions(t *testing.T, db *gorm.DB, userID uint, direction string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.WalletTransaction{}).
		Where("user_id = ? AND direction = ?", userID, direction).
		Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	return count
}

func TestPurchaseStoreCreate(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	plan := createTestPlan(t, db, 40, 100, 30)
	creditTestBalance(t, walletSvc, db, 201, 100)

	result, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    201,
		Kind:      constants.PurchaseKindStoreCreate,
		Confirmed: true,
		PlanID:    plan.ID,
		Name:      "Yeni Mağaza",
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.Store == nil {
		t.Fatalf("expected store in result")
	}
	if !result.AmountCharged.Decimal.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("expected charge 40, got %s", result.AmountCharged.String())
	}
	if !result.Balance.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected balance 60, got %s", result.Balance.String())
	}
	if countWalletTransactions(t, db, 201, constants.WalletTxnDirectionOut) != 1 {
		t.Fatalf("expected one debit recorded")
	}
}

func TestPurchaseNotConfirmed(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	plan := createTestPlan(t, db, 40, 100, 30)
	creditTestBalance(t, walletSvc, db, 202, 100)

	_, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID: 202,
		Kind:   constants.PurchaseKindStoreCreate,
		PlanID: plan.ID,
		Name:   "Mağaza",
	})
	if !errors.Is(err, ErrPurchaseNotConfirmed) {
		t.Fatalf("expected confirmation required, got %v", err)
	}
	if countWalletTransactions(t, db, 202, constants.WalletTxnDirectionOut) != 0 {
		t.Fatalf("expected no debit before confirmation")
	}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	plan := createTestPlan(t, db, 40, 100, 30)
	creditTestBalance(t, walletSvc, db, 203, 25)

	_, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    203,
		Kind:      constants.PurchaseKindStoreCreate,
		Confirmed: true,
		PlanID:    plan.ID,
		Name:      "Mağaza",
	})
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !insufficient.Shortfall.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected shortfall 15, got %s", insufficient.Shortfall.String())
	}
	account, accErr := walletSvc.GetAccount(203)
	if accErr != nil {
		t.Fatalf("get account failed: %v", accErr)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected balance untouched, got %s", account.Balance.String())
	}
}

func TestPurchaseInvalidKind(t *testing.T) {
	svc, _, _ := setupPurchaseServiceTest(t)
	_, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    204,
		Kind:      "store_teleport",
		Confirmed: true,
	})
	if !errors.Is(err, ErrPurchaseKindInvalid) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestPurchaseListingDiscountRollbackKeepsBalance(t *testing.T) {
	// 校验通过但领域变更失败时，扣款必须随事务回滚
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	creditTestBalance(t, walletSvc, db, 205, 50)
	listing := models.Listing{UserID: 205, Title: "mal", Currency: constants.SiteCurrencyDefault, Price: models.NewMoneyFromInt(90)}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	// 截止时间超出允许窗口：前置校验只看未来性，事务内写入才会拒绝
	_, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:             205,
		Kind:               constants.PurchaseKindListingDiscount,
		Confirmed:          true,
		ListingID:          listing.ID,
		DiscountPercentage: models.NewMoneyFromInt(20),
		DiscountEndsAt:     time.Now().Add(400 * 24 * time.Hour),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error from domain mutation, got %v", err)
	}

	account, accErr := walletSvc.GetAccount(205)
	if accErr != nil {
		t.Fatalf("get account failed: %v", accErr)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected debit rolled back, balance %s", account.Balance.String())
	}
	if countWalletTransactions(t, db, 205, constants.WalletTxnDirectionOut) != 0 {
		t.Fatalf("expected no debit row after rollback")
	}
}

func TestPurchaseListingDiscountSuccess(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	creditTestBalance(t, walletSvc, db, 206, 50)
	listing := models.Listing{UserID: 206, Title: "mal", Currency: constants.SiteCurrencyDefault, Price: models.NewMoneyFromInt(100)}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	result, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:             206,
		Kind:               constants.PurchaseKindListingDiscount,
		Confirmed:          true,
		ListingID:          listing.ID,
		DiscountPercentage: models.NewMoneyFromInt(30),
		DiscountEndsAt:     time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.Listing == nil || !result.Listing.HasDiscount {
		t.Fatalf("expected discounted listing in result")
	}
	if !result.Listing.Price.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected discounted price 70, got %s", result.Listing.Price.String())
	}
	if !result.Balance.Decimal.Equal(decimal.NewFromInt(47)) {
		t.Fatalf("expected balance 47, got %s", result.Balance.String())
	}
}

func TestPurchaseListingPromote(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	creditTestBalance(t, walletSvc, db, 207, 50)
	listing := models.Listing{UserID: 207, Title: "mal", Currency: constants.SiteCurrencyDefault, Price: models.NewMoneyFromInt(60)}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}

	result, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    207,
		Kind:      constants.PurchaseKindListingPromote,
		Confirmed: true,
		ListingID: listing.ID,
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.Listing == nil || result.Listing.PromotionEndsAt == nil {
		t.Fatalf("expected promotion deadline set")
	}
	if !result.Listing.PromotionEndsAt.After(time.Now().Add(6 * 24 * time.Hour)) {
		t.Fatalf("expected roughly 7 days of promotion, got %v", result.Listing.PromotionEndsAt)
	}
}

func TestPurchaseStoreRenewNotOwner(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	plan := createTestPlan(t, db, 15, 20, 30)
	creditTestBalance(t, walletSvc, db, 208, 50)
	store := createTestStore(t, db, 999, plan.ID, time.Now().Add(10*24*time.Hour))

	_, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    208,
		Kind:      constants.PurchaseKindStoreRenew,
		Confirmed: true,
		StoreID:   store.ID,
		PlanID:    plan.ID,
	})
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestPurchaseStoreReactivate(t *testing.T) {
	svc, walletSvc, db := setupPurchaseServiceTest(t)
	plan := createTestPlan(t, db, 15, 20, 30)
	creditTestBalance(t, walletSvc, db, 209, 50)
	store := createTestStore(t, db, 209, plan.ID, time.Now().Add(-20*24*time.Hour))

	result, err := svc.Purchase(context.Background(), PurchaseInput{
		UserID:    209,
		Kind:      constants.PurchaseKindStoreReactivate,
		Confirmed: true,
		StoreID:   store.ID,
		PlanID:    plan.ID,
	})
	if err != nil {
		t.Fatalf("purchase failed: %v", err)
	}
	if result.Store == nil {
		t.Fatalf("expected store in result")
	}
	if DeriveStatus(result.Store.ExpiresAt, time.Now()) != constants.StoreStatusActive {
		t.Fatalf("expected store active after reactivation")
	}
}
