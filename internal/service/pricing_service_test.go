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

func newTestListing(id uint, storeID uint, price int64) *models.Listing {
	listing := &models.Listing{
		ID:       id,
		UserID:   1,
		Currency: constants.SiteCurrencyDefault,
		Price:    models.NewMoneyFromInt(price),
	}
	if storeID != 0 {
		listing.StoreID = &storeID
	}
	return listing
}

func newTestDiscount(id uint, discountType string, value int64, maxDiscount int64, listingID uint, endsAt time.Time) models.Discount {
	return models.Discount{
		ID:                 id,
		StoreID:            1,
		Title:              fmt.Sprintf("discount-%d", id),
		Type:               discountType,
		Value:              models.NewMoneyFromInt(value),
		MaxDiscountAmount:  models.NewMoneyFromInt(maxDiscount),
		ApplicableListings: models.IDList{listingID},
		StartsAt:           endsAt.Add(-30 * 24 * time.Hour),
		EndsAt:             endsAt,
		IsActive:           true,
	}
}

func newTestCampaign(id uint, campaignType string, value int64, listingID uint, endsAt time.Time) models.Campaign {
	return models.Campaign{
		ID:                 id,
		StoreID:            1,
		Title:              fmt.Sprintf("campaign-%d", id),
		Type:               campaignType,
		Value:              models.NewMoneyFromInt(value),
		ApplicableListings: models.IDList{listingID},
		StartsAt:           endsAt.Add(-30 * 24 * time.Hour),
		EndsAt:             endsAt,
		IsActive:           true,
	}
}

func TestResolvePricePercentageDiscountWithCap(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 100)
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypePercentage, 20, 15, 10, now.Add(48*time.Hour)),
	}

	info := ResolvePrice(listing, discounts, nil, now)
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected discount source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected discounted price 85, got %s", info.DiscountedPrice.String())
	}
	if !info.AbsoluteSavings.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected savings capped at 15, got %s", info.AbsoluteSavings.String())
	}
	if info.DisplayPercentage != 15 {
		t.Fatalf("expected display percentage 15, got %d", info.DisplayPercentage)
	}
}

func TestResolvePriceFixedAmountDiscount(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 80)
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypeFixedAmount, 25, 0, 10, now.Add(24*time.Hour)),
	}

	info := ResolvePrice(listing, discounts, nil, now)
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(55)) {
		t.Fatalf("expected discounted price 55, got %s", info.DiscountedPrice.String())
	}
	if info.DiscountType != constants.DiscountTypeFixedAmount {
		t.Fatalf("unexpected discount type: %s", info.DiscountType)
	}
}

func TestResolvePriceFixedAmountFloorsAtZero(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 80)
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypeFixedAmount, 100, 0, 10, now.Add(24*time.Hour)),
	}

	info := ResolvePrice(listing, discounts, nil, now)
	if !info.DiscountedPrice.Decimal.Equal(decimal.Zero) {
		t.Fatalf("expected price floored at zero, got %s", info.DiscountedPrice.String())
	}
	if !info.AbsoluteSavings.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected savings clamped to 80, got %s", info.AbsoluteSavings.String())
	}
}

func TestResolvePriceCatalogOverridesListingFlags(t *testing.T) {
	// 目录折扣命中时商品自带折扣字段不再参与，价格只来自单一来源
	now := time.Now()
	listing := newTestListing(10, 1, 80)
	original := models.NewMoneyFromInt(100)
	listing.HasDiscount = true
	listing.OriginalPrice = &original
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypePercentage, 10, 0, 10, now.Add(24*time.Hour)),
	}

	info := ResolvePrice(listing, discounts, nil, now)
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected catalog source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(72)) {
		t.Fatalf("expected 10%% off current price, got %s", info.DiscountedPrice.String())
	}
	if !info.OriginalPrice.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected catalog math to ignore legacy original price, got %s", info.OriginalPrice.String())
	}
}

func TestResolvePriceDiscountPrecedesCampaign(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 100)
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypePercentage, 10, 0, 10, now.Add(24*time.Hour)),
	}
	campaigns := []models.Campaign{
		newTestCampaign(2, constants.CampaignTypeFlashSale, 50, 10, now.Add(24*time.Hour)),
	}

	info := ResolvePrice(listing, discounts, campaigns, now)
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected discount to win over campaign, got %s", info.Source)
	}
	if info.SourceID != 1 {
		t.Fatalf("unexpected source id: %d", info.SourceID)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("expected discounted price 90, got %s", info.DiscountedPrice.String())
	}
}

func TestResolvePriceCampaignAsPercentage(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 200)
	campaigns := []models.Campaign{
		newTestCampaign(3, constants.CampaignTypeSeasonal, 10, 10, now.Add(24*time.Hour)),
	}

	info := ResolvePrice(listing, nil, campaigns, now)
	if info.Source != constants.PriceSourceCampaign {
		t.Fatalf("expected campaign source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(180)) {
		t.Fatalf("expected discounted price 180, got %s", info.DiscountedPrice.String())
	}
	if info.DiscountType != constants.CampaignTypeSeasonal {
		t.Fatalf("expected campaign type carried for badge, got %s", info.DiscountType)
	}
}

func TestResolvePriceStaleFractionPercentage(t *testing.T) {
	// 历史数据里百分比被写成小数 0.2，按价差重建为固定金额折扣
	now := time.Now()
	listing := newTestListing(10, 0, 80)
	original := models.NewMoneyFromInt(100)
	stale := models.NewMoneyFromFloat(0.2)
	staleEndsAt := now.Add(-48 * time.Hour)
	listing.OriginalPrice = &original
	listing.HasDiscount = true
	listing.DiscountPercentage = &stale
	listing.DiscountEndsAt = &staleEndsAt

	info := ResolvePrice(listing, nil, nil, now)
	if info.Source != constants.PriceSourceListing {
		t.Fatalf("expected listing source, got %s", info.Source)
	}
	if info.DiscountType != constants.DiscountTypeFixedAmount {
		t.Fatalf("expected reconstruction as fixed amount, got %s", info.DiscountType)
	}
	if !info.DiscountValue.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected reconstructed value 20, got %s", info.DiscountValue.String())
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected discounted price 80, got %s", info.DiscountedPrice.String())
	}
	if info.DisplayPercentage != 20 {
		t.Fatalf("expected display percentage 20, got %d", info.DisplayPercentage)
	}
	if info.Deadline != nil {
		t.Fatalf("expected no deadline for expired window, got %v", info.Deadline)
	}
}

func TestResolvePricePercentageReconstructsOriginal(t *testing.T) {
	// 现价已是折后价且原价缺失，按百分比反推原价
	now := time.Now()
	listing := newTestListing(10, 0, 80)
	pct := models.NewMoneyFromInt(20)
	listing.HasDiscount = true
	listing.DiscountPercentage = &pct

	info := ResolvePrice(listing, nil, nil, now)
	if !info.OriginalPrice.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected reconstructed original 100, got %s", info.OriginalPrice.String())
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("expected discounted price kept at 80, got %s", info.DiscountedPrice.String())
	}
	if info.DisplayPercentage != 20 {
		t.Fatalf("expected display percentage 20, got %d", info.DisplayPercentage)
	}
}

func TestResolvePriceMinPurchaseBlocksDiscount(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 1, 30)
	discount := newTestDiscount(1, constants.DiscountTypePercentage, 20, 0, 10, now.Add(24*time.Hour))
	discount.MinPurchaseAmount = models.NewMoneyFromInt(50)

	info := ResolvePrice(listing, []models.Discount{discount}, nil, now)
	if info.Source != constants.PriceSourceNone {
		t.Fatalf("expected threshold to block discount, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(listing.Price.Decimal) {
		t.Fatalf("expected price unchanged, got %s", info.DiscountedPrice.String())
	}
}

func TestResolvePriceNoDiscount(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 0, 60)

	info := ResolvePrice(listing, nil, nil, now)
	if info.Source != constants.PriceSourceNone {
		t.Fatalf("expected no discount source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected price 60, got %s", info.DiscountedPrice.String())
	}
	if info.Deadline != nil {
		t.Fatalf("expected nil deadline, got %v", info.Deadline)
	}
	if info.HasDiscount() {
		t.Fatalf("expected HasDiscount false")
	}
}

func TestResolveDeadlineIndependentOfPriceWinner(t *testing.T) {
	// 固定金额折扣赢得价格，但倒计时指向更早结束的活动
	now := time.Now()
	listing := newTestListing(10, 1, 100)
	discountEnds := now.Add(72 * time.Hour)
	campaignEnds := now.Add(12 * time.Hour)
	discounts := []models.Discount{
		newTestDiscount(1, constants.DiscountTypeFixedAmount, 30, 0, 10, discountEnds),
	}
	campaigns := []models.Campaign{
		newTestCampaign(2, constants.CampaignTypeFlashSale, 5, 10, campaignEnds),
	}

	info := ResolvePrice(listing, discounts, campaigns, now)
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected discount to win price, got %s", info.Source)
	}
	if info.Deadline == nil || !info.Deadline.Equal(campaignEnds) {
		t.Fatalf("expected deadline %v from earlier campaign, got %v", campaignEnds, info.Deadline)
	}
}

func TestResolveDeadlineSkipsPastCandidates(t *testing.T) {
	now := time.Now()
	listing := newTestListing(10, 0, 100)
	promotionEnds := now.Add(5 * 24 * time.Hour)
	pastEnds := now.Add(-time.Hour)
	listing.PromotionEndsAt = &promotionEnds
	listing.HasDiscount = true
	listing.DiscountEndsAt = &pastEnds

	deadline := ResolveDeadline(listing, nil, nil, now)
	if deadline == nil || !deadline.Equal(promotionEnds) {
		t.Fatalf("expected promotion deadline %v, got %v", promotionEnds, deadline)
	}
}

func setupPricingServiceTest(t *testing.T) (*PricingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:pricing_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	return NewPricingService(
		repository.NewListingRepository(db),
		repository.NewDiscountRepository(db),
		repository.NewCampaignRepository(db),
		repository.NewStoreRepository(db),
	), db
}

// createPricingFixture 建立一家店铺、一个挂店商品与一条30%目录折扣
func createPricingFixture(t *testing.T, db *gorm.DB, now, storeExpiresAt time.Time) *models.Listing {
	t.Helper()
	store := models.Store{
		UserID:      1,
		PlanID:      1,
		Name:        fmt.Sprintf("pricing-store-%d", storeExpiresAt.UnixNano()),
		ActivatedAt: storeExpiresAt.AddDate(0, 0, -30),
		ExpiresAt:   storeExpiresAt,
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	listing := models.Listing{
		UserID:   1,
		StoreID:  &store.ID,
		Currency: constants.SiteCurrencyDefault,
		Price:    models.NewMoneyFromInt(100),
	}
	if err := db.Create(&listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	discount := models.Discount{
		StoreID:            store.ID,
		Title:              "店铺折扣",
		Type:               constants.DiscountTypePercentage,
		Value:              models.NewMoneyFromInt(30),
		ApplicableListings: models.IDList{listing.ID},
		StartsAt:           now.Add(-time.Hour),
		EndsAt:             now.Add(24 * time.Hour),
		IsActive:           true,
	}
	if err := db.Create(&discount).Error; err != nil {
		t.Fatalf("create discount failed: %v", err)
	}
	return &listing
}

func TestPricingServiceResolveForListing(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	now := time.Now()
	listing := createPricingFixture(t, db, now, now.Add(10*24*time.Hour))

	info, err := svc.ResolveForListing(listing.ID, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected discount source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected discounted price 70, got %s", info.DiscountedPrice.String())
	}
}

func TestPricingServiceResolveForListingGraceStoreKeepsDiscount(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	now := time.Now()
	// 宽限期店铺仍对外可见，折扣继续生效
	listing := createPricingFixture(t, db, now, now.Add(-3*24*time.Hour))

	info, err := svc.ResolveForListing(listing.ID, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if info.Source != constants.PriceSourceDiscount {
		t.Fatalf("expected discount source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected discounted price 70, got %s", info.DiscountedPrice.String())
	}
}

func TestPricingServiceResolveForListingLapsedStoreDropsDiscount(t *testing.T) {
	svc, db := setupPricingServiceTest(t)
	now := time.Now()
	// 店铺到期 60 天已归档，目录折扣虽在有效期内也不得生效
	listing := createPricingFixture(t, db, now, now.Add(-60*24*time.Hour))

	info, err := svc.ResolveForListing(listing.ID, now)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if info.Source != constants.PriceSourceNone {
		t.Fatalf("expected no discount source, got %s", info.Source)
	}
	if !info.DiscountedPrice.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected undiscounted price 100, got %s", info.DiscountedPrice.String())
	}
}

func TestPricingServiceResolveForListingNotFound(t *testing.T) {
	svc, _ := setupPricingServiceTest(t)
	if _, err := svc.ResolveForListing(999, time.Now()); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected listing not found, got %v", err)
	}
}
