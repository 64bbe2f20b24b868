package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletAccount 用户钱包账户
type WalletAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`                 // 用户ID
	Balance   Money     `gorm:"type:decimal(20,2);not null;default:0" json:"balance"` // 余额
	Currency  string    `gorm:"not null;default:AZN" json:"currency"`                // 币种
	CreatedAt time.Time `json:"created_at"`                                          // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                          // 更新时间
}

// TableName 指定表名
func (WalletAccount) TableName() string {
	return "wallet_accounts"
}

// WalletTransaction 钱包流水（余额的唯一变更凭证）
type WalletTransaction struct {
	ID        uint   `gorm:"primarykey" json:"id"`          // 主键
	UserID    uint   `gorm:"index;not null" json:"user_id"` // 用户ID
	Type      string `gorm:"index;not null" json:"type"`    // 类型（recharge/promotion_purchase/promotion_refund/admin_adjust）
	Direction string `gorm:"not null" json:"direction"`     // 方向（in/out）

	Amount        Money  `gorm:"type:decimal(20,2);not null" json:"amount"`         // 金额（恒为正数）
	BalanceBefore Money  `gorm:"type:decimal(20,2);not null" json:"balance_before"` // 变更前余额
	BalanceAfter  Money  `gorm:"type:decimal(20,2);not null" json:"balance_after"`  // 变更后余额
	Currency      string `gorm:"not null;default:AZN" json:"currency"`              // 币种

	Reference string `gorm:"uniqueIndex;not null" json:"reference"` // 业务引用号（幂等键）
	Remark    string `json:"remark"`                                // 备注

	CreatedAt time.Time `gorm:"index" json:"created_at"` // 创建时间
}

// TableName 指定表名
func (WalletTransaction) TableName() string {
	return "wallet_transactions"
}

// WalletRechargeOrder 钱包充值订单
type WalletRechargeOrder struct {
	ID      uint   `gorm:"primarykey" json:"id"`              // 主键
	UserID  uint   `gorm:"index;not null" json:"user_id"`     // 用户ID
	OrderNo string `gorm:"uniqueIndex;not null" json:"order_no"` // 订单号

	Amount   Money  `gorm:"type:decimal(20,2);not null" json:"amount"` // 充值金额
	Currency string `gorm:"not null;default:AZN" json:"currency"`      // 币种
	Status   string `gorm:"index;not null" json:"status"`              // 状态（pending/paid/failed/expired）

	Gateway       string `gorm:"not null" json:"gateway"`  // 支付网关
	TransactionID string `json:"transaction_id"`           // 网关侧交易号
	PaymentURL    string `gorm:"-" json:"payment_url,omitempty"` // 支付跳转地址（不落库）

	PaidAt    *time.Time     `json:"paid_at"`                 // 支付完成时间
	CreatedAt time.Time      `gorm:"index" json:"created_at"` // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`          // 软删除时间
}

// TableName 指定表名
func (WalletRechargeOrder) TableName() string {
	return "wallet_recharge_orders"
}
