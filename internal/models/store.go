package models

import (
	"time"

	"gorm.io/gorm"
)

// StorePlan 店铺套餐（只读目录，由配置或种子数据维护）
type StorePlan struct {
	ID           uint      `gorm:"primarykey" json:"id"`                    // 主键
	Name         string    `gorm:"not null" json:"name"`                    // 名称
	Price        Money     `gorm:"type:decimal(20,2);not null" json:"price"` // 价格
	MaxAds       int       `gorm:"not null" json:"max_ads"`                 // 可发布商品上限
	DurationDays int       `gorm:"not null" json:"duration_days"`           // 有效期天数
	Features     string    `gorm:"type:text" json:"features"`               // 套餐特性（JSON数组文本）
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`  // 是否可购买
	CreatedAt    time.Time `json:"created_at"`                              // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (StorePlan) TableName() string {
	return "store_plans"
}

// Store 店铺
type Store struct {
	ID          uint   `gorm:"primarykey" json:"id"`          // 主键
	UserID      uint   `gorm:"index;not null" json:"user_id"` // 店主ID
	PlanID      uint   `gorm:"index;not null" json:"plan_id"` // 当前套餐ID
	Name        string `gorm:"not null" json:"name"`          // 名称
	Description string `json:"description"`                   // 描述

	AdsUsed int     `gorm:"not null;default:0" json:"ads_used"` // 已占用商品额度
	Rating  float64 `gorm:"not null;default:0" json:"rating"`   // 店铺评分（停用期间保留）

	ActivatedAt time.Time  `gorm:"not null" json:"activated_at"` // 激活时间
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"` // 套餐到期时间（状态据此惰性推导）
	ArchivedAt  *time.Time `json:"archived_at"`                  // 进入归档的观测时间（仅记录，不参与推导）

	Plan *StorePlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"` // 套餐信息

	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"` // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (Store) TableName() string {
	return "stores"
}

// StoreFollower 店铺关注关系（停用/归档期间保留，复活时恢复）
type StoreFollower struct {
	ID        uint      `gorm:"primarykey" json:"id"`                              // 主键
	StoreID   uint      `gorm:"index:idx_store_follower,unique;not null" json:"store_id"` // 店铺ID
	UserID    uint      `gorm:"index:idx_store_follower,unique;not null" json:"user_id"`  // 关注人ID
	CreatedAt time.Time `json:"created_at"`                                        // 关注时间
}

// TableName 指定表名
func (StoreFollower) TableName() string {
	return "store_followers"
}
