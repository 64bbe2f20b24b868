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
	"gorm.io/gorm"
)

func setupListingServiceTest(t *testing.T) (*ListingService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:listing_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Listing{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewListingService(
		repository.NewListingRepository(db),
		repository.NewStoreRepository(db),
	), db
}

func createVisibilityListing(t *testing.T, db *gorm.DB, title string, storeID *uint) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		UserID:   1,
		StoreID:  storeID,
		Title:    title,
		Currency: constants.SiteCurrencyDefault,
		Price:    models.NewMoneyFromInt(50),
	}
	if err := db.Create(listing).Error; err != nil {
		t.Fatalf("create listing failed: %v", err)
	}
	return listing
}

func createVisibilityStore(t *testing.T, db *gorm.DB, name string, expiresAt time.Time) *models.Store {
	t.Helper()
	store := &models.Store{
		UserID:      1,
		PlanID:      1,
		Name:        name,
		ActivatedAt: expiresAt.AddDate(0, 0, -30),
		ExpiresAt:   expiresAt,
	}
	if err := db.Create(store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}
	return store
}

func TestListingServiceListVisibleHidesLapsedStores(t *testing.T) {
	svc, db := setupListingServiceTest(t)
	now := time.Now()

	activeStore := createVisibilityStore(t, db, "aktiv", now.Add(10*24*time.Hour))
	graceStore := createVisibilityStore(t, db, "möhlət", now.Add(-3*24*time.Hour))
	lapsedStore := createVisibilityStore(t, db, "dayandırılmış", now.Add(-10*24*time.Hour))
	archivedStore := createVisibilityStore(t, db, "arxiv", now.Add(-60*24*time.Hour))

	createVisibilityListing(t, db, "müstəqil", nil)
	createVisibilityListing(t, db, "aktiv mal", &activeStore.ID)
	createVisibilityListing(t, db, "möhlət mal", &graceStore.ID)
	hidden := createVisibilityListing(t, db, "gizli mal", &lapsedStore.ID)
	createVisibilityListing(t, db, "arxiv mal", &archivedStore.ID)

	listings, total, err := svc.ListVisible(repository.ListingListFilter{Page: 1, PageSize: 20}, now)
	if err != nil {
		t.Fatalf("list visible failed: %v", err)
	}
	if total != 3 || len(listings) != 3 {
		t.Fatalf("expected 3 visible listings, got total=%d len=%d", total, len(listings))
	}
	for _, l := range listings {
		if l.ID == hidden.ID {
			t.Fatalf("expected lapsed-store listing hidden")
		}
		if l.StoreID != nil && *l.StoreID == archivedStore.ID {
			t.Fatalf("expected archived-store listing hidden")
		}
	}
}

func TestListingServiceListStillReturnsLapsedStoreListings(t *testing.T) {
	svc, db := setupListingServiceTest(t)
	now := time.Now()
	lapsedStore := createVisibilityStore(t, db, "dayandırılmış", now.Add(-10*24*time.Hour))
	createVisibilityListing(t, db, "gizli mal", &lapsedStore.ID)

	// 不带可见性条件的内部查询仍可取到
	listings, total, err := svc.List(repository.ListingListFilter{StoreID: lapsedStore.ID, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("expected 1 listing, got total=%d len=%d", total, len(listings))
	}
}

func TestListingServiceGetVisible(t *testing.T) {
	svc, db := setupListingServiceTest(t)
	now := time.Now()

	graceStore := createVisibilityStore(t, db, "möhlət", now.Add(-3*24*time.Hour))
	lapsedStore := createVisibilityStore(t, db, "dayandırılmış", now.Add(-10*24*time.Hour))
	visible := createVisibilityListing(t, db, "görünən", &graceStore.ID)
	hidden := createVisibilityListing(t, db, "gizli", &lapsedStore.ID)

	if _, err := svc.GetVisible(visible.ID, now); err != nil {
		t.Fatalf("expected grace-store listing visible, got %v", err)
	}
	if _, err := svc.GetVisible(hidden.ID, now); !errors.Is(err, ErrListingNotFound) {
		t.Fatalf("expected not found for lapsed-store listing, got %v", err)
	}
}
