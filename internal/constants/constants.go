package constants

import "time"

// 店铺状态常量（按到期时间惰性推导，不落库）
const (
	StoreStatusActive      = "active"
	StoreStatusGracePeriod = "grace_period"
	StoreStatusDeactivated = "deactivated"
	StoreStatusArchived    = "archived"
)

// 店铺状态窗口常量
const (
	StoreGracePeriodDays = 7
	StoreArchiveDays     = 37
	StoreGracePeriod     = StoreGracePeriodDays * 24 * time.Hour
	StoreArchiveWindow   = StoreArchiveDays * 24 * time.Hour
)

// 折扣类型常量
const (
	DiscountTypePercentage  = "percentage"
	DiscountTypeFixedAmount = "fixed_amount"
	DiscountTypeBuyXGetY    = "buy_x_get_y"
)

// 营销活动类型常量（价格计算等同百分比折扣，仅角标与轮播顺序不同）
const (
	CampaignTypeFlashSale = "flash_sale"
	CampaignTypeSeasonal  = "seasonal"
	CampaignTypeClearance = "clearance"
	CampaignTypeBundle    = "bundle"
	CampaignTypeLoyalty   = "loyalty"
)

// 价格来源常量
const (
	PriceSourceDiscount = "discount"
	PriceSourceCampaign = "campaign"
	PriceSourceListing  = "listing"
	PriceSourceNone     = "none"
)

// 折扣校验边界常量
const (
	DiscountPercentMin   = 1
	DiscountPercentMax   = 99
	DiscountMaxDays      = 366
	TimerBarMaxDays      = 30
	PromotionDefaultDays = 7
)

// 付费动作类型常量
const (
	PurchaseKindStoreCreate     = "store_create"
	PurchaseKindStoreRenew      = "store_renew"
	PurchaseKindStoreReactivate = "store_reactivate"
	PurchaseKindListingPromote  = "listing_promote"
	PurchaseKindListingDiscount = "listing_discount"
)

// 钱包交易类型常量
const (
	WalletTxnTypeRecharge       = "recharge"
	WalletTxnTypePurchase       = "promotion_purchase"
	WalletTxnTypePurchaseRefund = "promotion_refund"
	WalletTxnTypeAdminAdjust    = "admin_adjust"
)

// 钱包交易方向常量
const (
	WalletTxnDirectionIn  = "in"
	WalletTxnDirectionOut = "out"
)

// 钱包充值状态常量
const (
	WalletRechargeStatusPending = "pending"
	WalletRechargeStatusSuccess = "success"
	WalletRechargeStatusFailed  = "failed"
	WalletRechargeStatusExpired = "expired"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 队列常量
const (
	QueueDefault          = "default"
	TaskStoreNotify       = "store:notify_followers"
	TaskStoreExpiryRemind = "store:expiry_remind"
)

// 店铺通知事件常量
const (
	StoreEventDeleted     = "store_deleted"
	StoreEventReactivated = "store_reactivated"
	StoreEventExpiring    = "store_expiring"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "bz"
)

// 币种常量
const (
	SiteCurrencyDefault = "AZN"
)
