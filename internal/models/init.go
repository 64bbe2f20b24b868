package models

import (
	"github.com/bazar-next/internal/logger"
)

// InitDefaultStorePlans 初始化默认店铺套餐
func InitDefaultStorePlans() error {
	var count int64
	DB.Model(&StorePlan{}).Count(&count)
	if count > 0 {
		return nil
	}

	plans := []StorePlan{
		{Name: "Başlanğıc", Price: NewMoneyFromInt(15), MaxAds: 20, DurationDays: 30, Features: `["badge_basic"]`, IsActive: true},
		{Name: "Biznes", Price: NewMoneyFromInt(40), MaxAds: 100, DurationDays: 30, Features: `["badge_basic","priority_search"]`, IsActive: true},
		{Name: "Premium", Price: NewMoneyFromInt(90), MaxAds: 500, DurationDays: 30, Features: `["badge_premium","priority_search","banner_slot"]`, IsActive: true},
	}

	if err := DB.Create(&plans).Error; err != nil {
		return err
	}
	logger.Infow("default_store_plans_created", "count", len(plans))
	return nil
}
