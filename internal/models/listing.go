package models

import (
	"time"

	"gorm.io/gorm"
)

// Listing 商品信息
type Listing struct {
	ID       uint   `gorm:"primarykey" json:"id"`             // 主键
	UserID   uint   `gorm:"index;not null" json:"user_id"`    // 发布人ID
	StoreID  *uint  `gorm:"index" json:"store_id"`            // 所属店铺ID（个人商品为空）
	Title    string `gorm:"not null" json:"title"`            // 标题
	Currency string `gorm:"not null;default:AZN" json:"currency"` // 币种

	Price         Money  `gorm:"type:decimal(20,2);not null" json:"price"`          // 当前售价
	OriginalPrice *Money `gorm:"type:decimal(20,2)" json:"original_price"`          // 折前原价（可选）

	HasDiscount        bool       `gorm:"not null;default:false" json:"has_discount"`       // 商品级折扣标记
	DiscountPercentage *Money     `gorm:"type:decimal(20,2)" json:"discount_percentage"`    // 折扣百分比（可能是反推出的历史值）
	DiscountEndsAt     *time.Time `gorm:"index" json:"discount_ends_at"`                    // 商品级折扣截止时间
	PromotionEndsAt    *time.Time `gorm:"index" json:"promotion_ends_at"`                   // 推广截止时间

	TimerBarEnabled bool       `gorm:"not null;default:false" json:"timer_bar_enabled"` // 倒计时条开关
	TimerBarTitle   string     `json:"timer_bar_title"`                                 // 倒计时条标题
	TimerBarColor   string     `json:"timer_bar_color"`                                 // 倒计时条颜色
	TimerBarEndsAt  *time.Time `json:"timer_bar_ends_at"`                               // 倒计时条截止时间

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Listing) TableName() string {
	return "listings"
}
