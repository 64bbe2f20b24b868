package main

import (
	"fmt"
	"time"

	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 初始化默认店铺套餐
	if err := models.InitDefaultStorePlans(); err != nil {
		stdLog.Fatalf("Failed to init store plans: %v", err)
	}

	// 添加演示用户
	password, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash password: %v", err)
	}

	users := []models.User{
		{Username: "aysel", Email: "aysel@example.com", Password: string(password), Nickname: "Aysel", Status: constants.UserStatusActive},
		{Username: "rashad", Email: "rashad@example.com", Password: string(password), Nickname: "Rəşad", Status: constants.UserStatusActive},
		{Username: "nigar", Email: "nigar@example.com", Password: string(password), Nickname: "Nigar", Status: constants.UserStatusActive},
	}

	userIDs := map[string]uint{}
	for _, user := range users {
		var existing models.User
		if err := models.DB.Where("email = ?", user.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&user).Error; err != nil {
				stdLog.Printf("Failed to create user %s: %v", user.Email, err)
				continue
			}
			stdLog.Printf("Created user: %s (password: demo123456)", user.Email)
			userIDs[user.Username] = user.ID
		} else {
			stdLog.Printf("User already exists: %s", user.Email)
			userIDs[existing.Username] = existing.ID
		}
	}

	// 为演示用户开通钱包并充值
	for username, userID := range userIDs {
		var account models.WalletAccount
		if err := models.DB.Where("user_id = ?", userID).First(&account).Error; err != nil {
			account = models.WalletAccount{
				UserID:   userID,
				Balance:  models.NewMoneyFromInt(200),
				Currency: constants.SiteCurrencyDefault,
			}
			if err := models.DB.Create(&account).Error; err != nil {
				stdLog.Printf("Failed to create wallet for %s: %v", username, err)
				continue
			}
			txn := models.WalletTransaction{
				UserID:        userID,
				Type:          constants.WalletTxnTypeRecharge,
				Direction:     constants.WalletTxnDirectionIn,
				Amount:        models.NewMoneyFromInt(200),
				BalanceBefore: models.MoneyZero(),
				BalanceAfter:  models.NewMoneyFromInt(200),
				Currency:      constants.SiteCurrencyDefault,
				Reference:     fmt.Sprintf("seed-recharge-%d", userID),
				Remark:        "Seed balance",
			}
			if err := models.DB.Create(&txn).Error; err != nil {
				stdLog.Printf("Failed to create seed transaction for %s: %v", username, err)
			}
			stdLog.Printf("Created wallet for %s: balance=200", username)
		} else {
			stdLog.Printf("Wallet already exists for %s", username)
		}
	}

	// 查询套餐ID
	planIDs := map[string]uint{}
	var planList []models.StorePlan
	if err := models.DB.Find(&planList).Error; err != nil {
		stdLog.Printf("Failed to load store plans: %v", err)
	}
	for _, plan := range planList {
		planIDs[plan.Name] = plan.ID
	}
	starterPlanID := planIDs["Başlanğıc"]
	businessPlanID := planIDs["Biznes"]

	// 添加演示店铺（到期时间覆盖各生命周期区间）
	now := time.Now()
	archivedAt := now.Add(-10 * 24 * time.Hour)
	stores := []models.Store{
		{
			UserID:      userIDs["aysel"],
			PlanID:      businessPlanID,
			Name:        "Aysel Electronics",
			Description: "Telefon və aksesuarlar",
			Rating:      4.7,
			ActivatedAt: now.Add(-10 * 24 * time.Hour),
			ExpiresAt:   now.Add(20 * 24 * time.Hour),
		},
		{
			UserID:      userIDs["rashad"],
			PlanID:      starterPlanID,
			Name:        "Rəşad Second Hand",
			Description: "İşlənmiş əşyalar",
			Rating:      4.2,
			ActivatedAt: now.Add(-33 * 24 * time.Hour),
			ExpiresAt:   now.Add(-3 * 24 * time.Hour),
		},
		{
			UserID:      userIDs["rashad"],
			PlanID:      starterPlanID,
			Name:        "Köhnə Kitablar",
			Description: "Kitab mağazası",
			Rating:      4.9,
			ActivatedAt: now.Add(-50 * 24 * time.Hour),
			ExpiresAt:   now.Add(-20 * 24 * time.Hour),
		},
		{
			UserID:      userIDs["nigar"],
			PlanID:      starterPlanID,
			Name:        "Nigar Vintage",
			Description: "Vintaj geyimlər",
			Rating:      3.8,
			ActivatedAt: now.Add(-80 * 24 * time.Hour),
			ExpiresAt:   now.Add(-50 * 24 * time.Hour),
			ArchivedAt:  &archivedAt,
		},
	}

	storeIDs := map[string]uint{}
	for _, store := range stores {
		if store.UserID == 0 || store.PlanID == 0 {
			stdLog.Printf("Skip store %s: owner or plan missing", store.Name)
			continue
		}
		var existing models.Store
		if err := models.DB.Where("name = ? AND user_id = ?", store.Name, store.UserID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&store).Error; err != nil {
				stdLog.Printf("Failed to create store %s: %v", store.Name, err)
				continue
			}
			stdLog.Printf("Created store: %s", store.Name)
			storeIDs[store.Name] = store.ID
		} else {
			stdLog.Printf("Store already exists: %s", store.Name)
			storeIDs[existing.Name] = existing.ID
		}
	}

	// 添加演示商品
	ayselStoreID := storeIDs["Aysel Electronics"]
	discountEndsAt := now.Add(5 * 24 * time.Hour)
	staleDiscountEndsAt := now.Add(-2 * 24 * time.Hour)
	promotionEndsAt := now.Add(7 * 24 * time.Hour)
	originalPrice := models.NewMoneyFromInt(100)
	stalePercentage := models.NewMoneyFromFloat(0.2)
	freshPercentage := models.NewMoneyFromInt(15)

	listings := []models.Listing{
		{
			UserID:   userIDs["aysel"],
			StoreID:  &ayselStoreID,
			Title:    "Simsiz qulaqlıq",
			Currency: constants.SiteCurrencyDefault,
			Price:    models.NewMoneyFromInt(120),
		},
		{
			UserID:             userIDs["aysel"],
			StoreID:            &ayselStoreID,
			Title:              "Smart saat",
			Currency:           constants.SiteCurrencyDefault,
			Price:              models.NewMoneyFromInt(170),
			OriginalPrice:      &originalPrice,
			HasDiscount:        true,
			DiscountPercentage: &freshPercentage,
			DiscountEndsAt:     &discountEndsAt,
			PromotionEndsAt:    &promotionEndsAt,
			TimerBarEnabled:    true,
			TimerBarTitle:      "Endirim bitir",
			TimerBarColor:      "#e74c3c",
			TimerBarEndsAt:     &discountEndsAt,
		},
		{
			// 旧版数据形态：百分比存成了小数，截止时间已过期
			UserID:             userIDs["rashad"],
			Title:              "İşlənmiş velosiped",
			Currency:           constants.SiteCurrencyDefault,
			Price:              models.NewMoneyFromInt(80),
			OriginalPrice:      &originalPrice,
			HasDiscount:        true,
			DiscountPercentage: &stalePercentage,
			DiscountEndsAt:     &staleDiscountEndsAt,
		},
		{
			UserID:   userIDs["nigar"],
			Title:    "Vintaj jaket",
			Currency: constants.SiteCurrencyDefault,
			Price:    models.NewMoneyFromInt(45),
		},
	}

	listingIDs := map[string]uint{}
	for _, listing := range listings {
		if listing.UserID == 0 {
			stdLog.Printf("Skip listing %s: owner missing", listing.Title)
			continue
		}
		var existing models.Listing
		if err := models.DB.Where("title = ? AND user_id = ?", listing.Title, listing.UserID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&listing).Error; err != nil {
				stdLog.Printf("Failed to create listing %s: %v", listing.Title, err)
				continue
			}
			stdLog.Printf("Created listing: %s", listing.Title)
			listingIDs[listing.Title] = listing.ID
		} else {
			stdLog.Printf("Listing already exists: %s", listing.Title)
			listingIDs[existing.Title] = existing.ID
		}
	}

	// 回填店铺已占用额度
	if ayselStoreID != 0 {
		var adsUsed int64
		models.DB.Model(&models.Listing{}).Where("store_id = ?", ayselStoreID).Count(&adsUsed)
		if err := models.DB.Model(&models.Store{}).Where("id = ?", ayselStoreID).
			Update("ads_used", adsUsed).Error; err != nil {
			stdLog.Printf("Failed to update ads_used: %v", err)
		}
	}

	// 添加店铺折扣与营销活动
	if ayselStoreID != 0 {
		discounts := []models.Discount{
			{
				StoreID:            ayselStoreID,
				Title:              "Qulaqlıq endirimi",
				Description:        "Simsiz qulaqlıqlara 20% endirim",
				Type:               constants.DiscountTypePercentage,
				Value:              models.NewMoneyFromInt(20),
				MaxDiscountAmount:  models.NewMoneyFromInt(15),
				ApplicableListings: models.IDList{listingIDs["Simsiz qulaqlıq"]},
				StartsAt:           now.Add(-24 * time.Hour),
				EndsAt:             now.Add(10 * 24 * time.Hour),
				IsActive:           true,
			},
			{
				StoreID:            ayselStoreID,
				Title:              "Sabit endirim",
				Description:        "Smart saatlara 25 AZN endirim",
				Type:               constants.DiscountTypeFixedAmount,
				Value:              models.NewMoneyFromInt(25),
				ApplicableListings: models.IDList{listingIDs["Smart saat"]},
				StartsAt:           now.Add(-12 * time.Hour),
				EndsAt:             now.Add(5 * 24 * time.Hour),
				IsActive:           true,
			},
		}
		for _, discount := range discounts {
			var existing models.Discount
			if err := models.DB.Where("title = ? AND store_id = ?", discount.Title, discount.StoreID).First(&existing).Error; err != nil {
				if err := models.DB.Create(&discount).Error; err != nil {
					stdLog.Printf("Failed to create discount %s: %v", discount.Title, err)
				} else {
					stdLog.Printf("Created discount: %s", discount.Title)
				}
			} else {
				stdLog.Printf("Discount already exists: %s", discount.Title)
			}
		}

		campaigns := []models.Campaign{
			{
				StoreID:     ayselStoreID,
				Title:       "Payız kampaniyası",
				Description: "Bütün mağazaya 10% endirim",
				Type:        constants.CampaignTypeSeasonal,
				Value:       models.NewMoneyFromInt(10),
				StartsAt:    now.Add(-24 * time.Hour),
				EndsAt:      now.Add(14 * 24 * time.Hour),
				IsActive:    true,
			},
		}
		for _, campaign := range campaigns {
			var existing models.Campaign
			if err := models.DB.Where("title = ? AND store_id = ?", campaign.Title, campaign.StoreID).First(&existing).Error; err != nil {
				if err := models.DB.Create(&campaign).Error; err != nil {
					stdLog.Printf("Failed to create campaign %s: %v", campaign.Title, err)
				} else {
					stdLog.Printf("Created campaign: %s", campaign.Title)
				}
			} else {
				stdLog.Printf("Campaign already exists: %s", campaign.Title)
			}
		}
	}

	// 添加店铺关注关系
	if ayselStoreID != 0 && userIDs["nigar"] != 0 {
		follower := models.StoreFollower{StoreID: ayselStoreID, UserID: userIDs["nigar"]}
		var existing models.StoreFollower
		if err := models.DB.Where("store_id = ? AND user_id = ?", follower.StoreID, follower.UserID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&follower).Error; err != nil {
				stdLog.Printf("Failed to create store follower: %v", err)
			} else {
				stdLog.Printf("Created store follower: user %d -> store %d", follower.UserID, follower.StoreID)
			}
		} else {
			stdLog.Printf("Store follower already exists: user %d -> store %d", follower.UserID, follower.StoreID)
		}
	}

	fmt.Println("\n✅ Test data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Store plans")
	fmt.Println("- 3 Users (password: demo123456)")
	fmt.Println("- 3 Wallets with 200 AZN balance")
	fmt.Println("- 4 Stores (active / grace / deactivated / archived)")
	fmt.Println("- 4 Listings (含旧版折扣数据形态)")
	fmt.Println("- 2 Discounts + 1 Campaign")
	fmt.Println("- 1 Store follower")
}
