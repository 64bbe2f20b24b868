package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDiscountServiceTest(t *testing.T) (*DiscountService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:discount_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Listing{},
		&models.Discount{},
		&models.Campaign{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewDiscountService(
		repository.NewDiscountRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewListingRepository(db),
		repository.NewStoreRepository(db),
	), db
}

func seedDiscountStore(t *testing.T, db *gorm.DB, userID uint) (*models.Store, *models.Listing) {
	t.Helper()
	now := time.Now()
	store := &models.Store{
		UserID:      userID,
		PlanID:      1,
		Name:        fmt.Sprintf("store-%d", userID),
		ActivatedAt: now.Add(-24 * time.Hour),
		ExpiresAt:   now.Add(20 * 24 * time.Hour),
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	listing := &models.Listing{
		UserID:   userID,
		StoreID:  &store.ID,
		Title:    "mal",
		Currency: constants.SiteCurrencyDefault,
		Price:    models.NewMoneyFromInt(80),
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	return store, listing
}

func baseDiscountInput(store *models.Store, listing *models.Listing, now time.Time) DiscountCreateInput {
	return DiscountCreateInput{
		UserID:             store.UserID,
		StoreID:            store.ID,
		Title:              "endirim",
		Type:               constants.DiscountTypePercentage,
		Value:              models.NewMoneyFromInt(20),
		ApplicableListings: models.IDList{listing.ID},
		StartsAt:           now,
		EndsAt:             now.Add(7 * 24 * time.Hour),
	}
}

func TestDiscountServiceCreatePercentage(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 1)
	now := time.Now()

	discount, err := svc.CreateDiscount(baseDiscountInput(store, listing, now), now)
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if !discount.IsActive {
		t.Fatalf("expected active discount")
	}
	if !discount.ApplicableListings.Contains(listing.ID) {
		t.Fatalf("expected listing bound")
	}
}

func TestDiscountServicePercentOutOfRange(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 2)
	now := time.Now()

	for _, value := range []int64{0, 100, 150} {
		input := baseDiscountInput(store, listing, now)
		input.Value = models.NewMoneyFromInt(value)
		if _, err := svc.CreateDiscount(input, now); !errors.Is(err, ErrValidation) {
			t.Fatalf("value %d: expected validation error, got %v", value, err)
		}
	}
}

func TestDiscountServiceWindowTooLong(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 3)
	now := time.Now()

	input := baseDiscountInput(store, listing, now)
	input.EndsAt = now.Add(400 * 24 * time.Hour)
	if _, err := svc.CreateDiscount(input, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDiscountServiceFixedAmountExceedsPrice(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 4)
	now := time.Now()

	input := baseDiscountInput(store, listing, now)
	input.Type = constants.DiscountTypeFixedAmount
	input.Value = models.NewMoneyFromInt(80)
	if _, err := svc.CreateDiscount(input, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	input.Value = models.NewMoneyFromInt(30)
	if _, err := svc.CreateDiscount(input, now); err != nil {
		t.Fatalf("expected fixed amount under price accepted, got %v", err)
	}
}

func TestDiscountServiceCreateNotOwner(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 5)
	now := time.Now()

	input := baseDiscountInput(store, listing, now)
	input.UserID = 99
	if _, err := svc.CreateDiscount(input, now); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected not owner, got %v", err)
	}
}

func TestDiscountServiceUpdateAndDelete(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 6)
	now := time.Now()

	discount, err := svc.CreateDiscount(baseDiscountInput(store, listing, now), now)
	if err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	input := baseDiscountInput(store, listing, now)
	input.Title = "yenilənmiş"
	input.Value = models.NewMoneyFromInt(35)
	updated, err := svc.UpdateDiscount(discount.ID, input, now)
	if err != nil {
		t.Fatalf("update discount failed: %v", err)
	}
	if updated.Title != "yenilənmiş" || !updated.Value.Decimal.Equal(decimal.NewFromInt(35)) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	if err := svc.DeleteDiscount(discount.ID, store.UserID); err != nil {
		t.Fatalf("delete discount failed: %v", err)
	}
	if err := svc.DeleteDiscount(discount.ID, store.UserID); !errors.Is(err, ErrDiscountNotFound) {
		t.Fatalf("expected discount gone, got %v", err)
	}
}

func TestDiscountServiceCampaignInvalidType(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 7)
	now := time.Now()

	_, err := svc.CreateCampaign(CampaignCreateInput{
		UserID:             store.UserID,
		StoreID:            store.ID,
		Title:              "kampaniya",
		Type:               "mega_sale",
		Value:              models.NewMoneyFromInt(10),
		ApplicableListings: models.IDList{listing.ID},
		StartsAt:           now,
		EndsAt:             now.Add(24 * time.Hour),
	}, now)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDiscountServiceActiveForListing(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 8)
	now := time.Now()

	if _, err := svc.CreateDiscount(baseDiscountInput(store, listing, now), now); err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	if _, err := svc.CreateCampaign(CampaignCreateInput{
		UserID:             store.UserID,
		StoreID:            store.ID,
		Title:              "kampaniya",
		Type:               constants.CampaignTypeFlashSale,
		Value:              models.NewMoneyFromInt(15),
		ApplicableListings: models.IDList{listing.ID},
		StartsAt:           now.Add(-time.Hour),
		EndsAt:             now.Add(24 * time.Hour),
	}, now); err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}

	discounts, campaigns, err := svc.ActiveForListing(listing.ID, now)
	if err != nil {
		t.Fatalf("active for listing failed: %v", err)
	}
	if len(discounts) != 1 || len(campaigns) != 1 {
		t.Fatalf("expected 1 discount and 1 campaign, got %d/%d", len(discounts), len(campaigns))
	}
}

func TestDiscountServiceActiveForListingLapsedStore(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	store, listing := seedDiscountStore(t, db, 18)
	now := time.Now()

	if _, err := svc.CreateDiscount(baseDiscountInput(store, listing, now), now); err != nil {
		t.Fatalf("create discount failed: %v", err)
	}

	// 店铺停用后目录整体失效
	store.ExpiresAt = now.Add(-10 * 24 * time.Hour)
	if err := db.Save(store).Error; err != nil {
		t.Fatalf("save store failed: %v", err)
	}

	discounts, campaigns, err := svc.ActiveForListing(listing.ID, now)
	if err != nil {
		t.Fatalf("active for listing failed: %v", err)
	}
	if len(discounts) != 0 || len(campaigns) != 0 {
		t.Fatalf("expected empty catalog, got %d/%d", len(discounts), len(campaigns))
	}
}

func TestDiscountServiceApplyListingDiscountRewritesPrice(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	_, listing := seedDiscountStore(t, db, 9)
	now := time.Now()
	endsAt := now.Add(7 * 24 * time.Hour)

	var updated *models.Listing
	if err := db.Transaction(func(tx *gorm.DB) error {
		result, err := svc.ApplyListingDiscountInTx(tx, 9, listing.ID, models.NewMoneyFromInt(25), endsAt, now)
		updated = result
		return err
	}); err != nil {
		t.Fatalf("apply discount failed: %v", err)
	}
	if !updated.HasDiscount {
		t.Fatalf("expected discount flag set")
	}
	if updated.OriginalPrice == nil || !updated.OriginalPrice.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected original price 80 preserved")
	}
	if !updated.Price.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected discounted price 60, got %s", updated.Price.String())
	}
	if updated.DiscountEndsAt == nil || !updated.DiscountEndsAt.Equal(endsAt) {
		t.Fatalf("unexpected discount ends at")
	}
}

func TestDiscountServiceApplyListingDiscountTooLong(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	_, listing := seedDiscountStore(t, db, 10)
	now := time.Now()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.ApplyListingDiscountInTx(tx, 10, listing.ID, models.NewMoneyFromInt(25), now.Add(400*24*time.Hour), now)
		return err
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDiscountServicePromoteListingExtends(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	_, listing := seedDiscountStore(t, db, 11)
	now := time.Now()

	var promoted *models.Listing
	if err := db.Transaction(func(tx *gorm.DB) error {
		result, err := svc.PromoteListingInTx(tx, 11, listing.ID, 7, now)
		promoted = result
		return err
	}); err != nil {
		t.Fatalf("promote failed: %v", err)
	}
	firstEnds := *promoted.PromotionEndsAt
	if !firstEnds.Equal(now.AddDate(0, 0, 7)) {
		t.Fatalf("expected promotion until %v, got %v", now.AddDate(0, 0, 7), firstEnds)
	}

	// 推广期内续购从当前截止时间顺延
	if err := db.Transaction(func(tx *gorm.DB) error {
		result, err := svc.PromoteListingInTx(tx, 11, listing.ID, 7, now)
		promoted = result
		return err
	}); err != nil {
		t.Fatalf("second promote failed: %v", err)
	}
	if !promoted.PromotionEndsAt.Equal(firstEnds.AddDate(0, 0, 7)) {
		t.Fatalf("expected extension from %v, got %v", firstEnds, promoted.PromotionEndsAt)
	}
}

func TestDiscountServiceSetTimerBar(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	_, listing := seedDiscountStore(t, db, 12)
	now := time.Now()
	endsAt := now.Add(5 * 24 * time.Hour)

	updated, err := svc.SetTimerBar(TimerBarInput{
		UserID:    12,
		ListingID: listing.ID,
		Enabled:   true,
		Title:     "Endirim bitir",
		Color:     "#e74c3c",
		EndsAt:    &endsAt,
	}, now)
	if err != nil {
		t.Fatalf("set timer bar failed: %v", err)
	}
	if !updated.TimerBarEnabled || updated.TimerBarTitle != "Endirim bitir" {
		t.Fatalf("unexpected timer bar state: %+v", updated)
	}

	disabled, err := svc.SetTimerBar(TimerBarInput{UserID: 12, ListingID: listing.ID, Enabled: false}, now)
	if err != nil {
		t.Fatalf("disable timer bar failed: %v", err)
	}
	if disabled.TimerBarEnabled {
		t.Fatalf("expected timer bar disabled")
	}
}

func TestDiscountServiceSetTimerBarValidation(t *testing.T) {
	svc, db := setupDiscountServiceTest(t)
	_, listing := seedDiscountStore(t, db, 13)
	now := time.Now()

	past := now.Add(-time.Hour)
	if _, err := svc.SetTimerBar(TimerBarInput{UserID: 13, ListingID: listing.ID, Enabled: true, EndsAt: &past}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation for past deadline, got %v", err)
	}

	tooFar := now.Add(60 * 24 * time.Hour)
	if _, err := svc.SetTimerBar(TimerBarInput{UserID: 13, ListingID: listing.ID, Enabled: true, EndsAt: &tooFar}, now); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation for distant deadline, got %v", err)
	}
}
