package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign 营销活动（价格计算等同百分比折扣，仅用于角标与轮播）
type Campaign struct {
	ID          uint   `gorm:"primarykey" json:"id"`           // 主键
	StoreID     uint   `gorm:"index;not null" json:"store_id"` // 所属店铺ID
	Title       string `gorm:"not null" json:"title"`          // 名称
	Description string `json:"description"`                    // 描述
	Type        string `gorm:"not null" json:"type"`           // 类型（flash_sale/seasonal/clearance/bundle/loyalty）
	Value       Money  `gorm:"type:decimal(20,2);not null" json:"value"` // 折扣百分比

	MaxDiscountAmount  Money  `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount_amount"` // 最大优惠金额（0 表示不限制）
	ApplicableListings IDList `gorm:"type:text" json:"applicable_listings"`                             // 适用商品ID集合（JSON数组）

	StartsAt   time.Time `gorm:"index;not null" json:"starts_at"`        // 生效时间
	EndsAt     time.Time `gorm:"index;not null" json:"ends_at"`          // 失效时间
	UsageLimit int       `gorm:"not null;default:0" json:"usage_limit"`  // 总使用上限（0 表示不限制）
	UsedCount  int       `gorm:"not null;default:0" json:"used_count"`   // 已使用次数
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"` // 是否启用

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Campaign) TableName() string {
	return "campaigns"
}

// ActiveAt 判断活动在指定时间是否生效
func (c *Campaign) ActiveAt(now time.Time) bool {
	if c == nil || !c.IsActive {
		return false
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return false
	}
	if c.StartsAt.IsZero() || c.EndsAt.IsZero() {
		return false
	}
	return !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}
