package service

import (
	"errors"
	"fmt"

	"github.com/bazar-next/internal/models"
)

// 服务层业务错误定义
var (
	// ErrValidation 输入校验失败
	ErrValidation = errors.New("validation failed")
	// ErrNotOwner 非资源所有者
	ErrNotOwner = errors.New("not resource owner")
	// ErrListingNotFound 商品不存在
	ErrListingNotFound = errors.New("listing not found")
	// ErrDiscountNotFound 折扣不存在
	ErrDiscountNotFound = errors.New("discount not found")
	// ErrCampaignNotFound 活动不存在
	ErrCampaignNotFound = errors.New("campaign not found")
	// ErrStoreNotFound 店铺不存在
	ErrStoreNotFound = errors.New("store not found")
	// ErrStorePlanNotFound 店铺套餐不存在
	ErrStorePlanNotFound = errors.New("store plan not found")
	// ErrStoreArchived 店铺已归档
	ErrStoreArchived = errors.New("store archived")
	// ErrStoreNotRenewable 店铺当前状态不可续费
	ErrStoreNotRenewable = errors.New("store not renewable")
	// ErrStoreNotActive 店铺未处于活跃状态
	ErrStoreNotActive = errors.New("store not active")
	// ErrStoreAlreadyActive 店铺仍在活跃期，无需复活
	ErrStoreAlreadyActive = errors.New("store already active")
	// ErrStoreQuotaExceeded 店铺商品额度已满
	ErrStoreQuotaExceeded = errors.New("store ads quota exceeded")
	// ErrStoreLimitReached 持有店铺数量达到上限
	ErrStoreLimitReached = errors.New("store ownership limit reached")
	// ErrStoreHasActiveListings 店铺存在未删除商品
	ErrStoreHasActiveListings = errors.New("store has active listings")
	// ErrWalletAccountNotFound 钱包账户不存在
	ErrWalletAccountNotFound = errors.New("wallet account not found")
	// ErrWalletAccountCreateFailed 钱包账户创建失败
	ErrWalletAccountCreateFailed = errors.New("wallet account create failed")
	// ErrWalletAccountUpdateFailed 钱包账户更新失败
	ErrWalletAccountUpdateFailed = errors.New("wallet account update failed")
	// ErrWalletTransactionCreateFailed 钱包流水写入失败
	ErrWalletTransactionCreateFailed = errors.New("wallet transaction create failed")
	// ErrWalletInsufficientBalance 钱包余额不足
	ErrWalletInsufficientBalance = errors.New("wallet balance insufficient")
	// ErrWalletInvalidAmount 金额非法
	ErrWalletInvalidAmount = errors.New("wallet amount invalid")
	// ErrPurchaseNotConfirmed 购买未经确认
	ErrPurchaseNotConfirmed = errors.New("purchase not confirmed")
	// ErrPurchaseInFlight 同类购买正在处理中
	ErrPurchaseInFlight = errors.New("purchase already in flight")
	// ErrPurchaseKindInvalid 购买类型非法
	ErrPurchaseKindInvalid = errors.New("purchase kind invalid")
	// ErrRechargeOrderNotFound 充值订单不存在
	ErrRechargeOrderNotFound = errors.New("recharge order not found")
	// ErrRechargeOrderClosed 充值订单已终态
	ErrRechargeOrderClosed = errors.New("recharge order closed")
	// ErrPaymentGatewayDisabled 支付网关未启用
	ErrPaymentGatewayDisabled = errors.New("payment gateway disabled")
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidEmail 邮箱格式非法
	ErrInvalidEmail = errors.New("invalid email")
	// ErrEmailExists 邮箱已被注册
	ErrEmailExists = errors.New("email already registered")
	// ErrUsernameExists 用户名已被占用
	ErrUsernameExists = errors.New("username already taken")
	// ErrPasswordTooShort 密码长度不足
	ErrPasswordTooShort = errors.New("password too short")
	// ErrInvalidCredentials 账号或密码错误
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserDisabled 用户已被禁用
	ErrUserDisabled = errors.New("user disabled")
)

// InsufficientFundsError 余额不足错误，携带差额供前端提示
type InsufficientFundsError struct {
	Required  models.Money
	Balance   models.Money
	Shortfall models.Money
}

// Error 实现 error 接口
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, balance %s, shortfall %s",
		e.Required.String(), e.Balance.String(), e.Shortfall.String())
}

// Unwrap 支持 errors.Is 匹配哨兵错误
func (e *InsufficientFundsError) Unwrap() error {
	return ErrWalletInsufficientBalance
}

// StoreActiveListingsError 删除店铺前置校验失败，携带剩余商品数
type StoreActiveListingsError struct {
	StoreID uint
	Count   int64
}

// Error 实现 error 接口
func (e *StoreActiveListingsError) Error() string {
	return fmt.Sprintf("store %d still has %d active listings", e.StoreID, e.Count)
}

// Unwrap 支持 errors.Is 匹配哨兵错误
func (e *StoreActiveListingsError) Unwrap() error {
	return ErrStoreHasActiveListings
}
