package models

import (
	"time"

	"gorm.io/gorm"
)

// Discount 店铺折扣
type Discount struct {
	ID          uint   `gorm:"primarykey" json:"id"`            // 主键
	StoreID     uint   `gorm:"index;not null" json:"store_id"`  // 所属店铺ID
	Title       string `gorm:"not null" json:"title"`           // 名称
	Description string `json:"description"`                     // 描述
	Type        string `gorm:"not null" json:"type"`            // 类型（percentage/fixed_amount/buy_x_get_y）
	Value       Money  `gorm:"type:decimal(20,2);not null" json:"value"` // 数值（百分比或固定金额）

	MinPurchaseAmount Money `gorm:"type:decimal(20,2);not null;default:0" json:"min_purchase_amount"` // 使用门槛
	MaxDiscountAmount Money `gorm:"type:decimal(20,2);not null;default:0" json:"max_discount_amount"` // 最大优惠金额（0 表示不限制）

	ApplicableListings IDList `gorm:"type:text" json:"applicable_listings"` // 适用商品ID集合（JSON数组）

	StartsAt   time.Time `gorm:"index;not null" json:"starts_at"`       // 生效时间
	EndsAt     time.Time `gorm:"index;not null" json:"ends_at"`         // 失效时间
	UsageLimit int       `gorm:"not null;default:0" json:"usage_limit"` // 总使用上限（0 表示不限制）
	UsedCount  int       `gorm:"not null;default:0" json:"used_count"`  // 已使用次数
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"` // 是否启用

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Discount) TableName() string {
	return "discounts"
}

// ActiveAt 判断折扣在指定时间是否生效
func (d *Discount) ActiveAt(now time.Time) bool {
	if d == nil || !d.IsActive {
		return false
	}
	if d.UsageLimit > 0 && d.UsedCount >= d.UsageLimit {
		return false
	}
	if d.StartsAt.IsZero() || d.EndsAt.IsZero() {
		return false
	}
	return !now.Before(d.StartsAt) && !now.After(d.EndsAt)
}
