package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/payment/payriff"
	"github.com/bazar-next/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService 钱包服务
type WalletService struct {
	walletRepo repository.WalletRepository
	gateway    *payriff.Client
}

// WalletSpendInput 余额扣减输入
type WalletSpendInput struct {
	UserID    uint
	Amount    models.Money
	Currency  string
	TxnType   string
	Reference string
	Remark    string
}

// WalletCreditInput 事务内入账输入
type WalletCreditInput struct {
	UserID    uint
	Amount    models.Money
	Currency  string
	TxnType   string
	Reference string
	Remark    string
}

// WalletRechargeInput 用户充值输入
type WalletRechargeInput struct {
	UserID   uint
	Amount   models.Money
	Currency string
	Remark   string
}

// NewWalletService 创建钱包服务
func NewWalletService(walletRepo repository.WalletRepository, gateway *payriff.Client) *WalletService {
	return &WalletService{
		walletRepo: walletRepo,
		gateway:    gateway,
	}
}

// GetAccount 获取钱包账户（不存在时自动创建）
func (s *WalletService) GetAccount(userID uint) (*models.WalletAccount, error) {
	if userID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	return s.getOrCreateAccount(userID)
}

// ListTransactions 查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// ListRechargeOrders 查询充值订单
func (s *WalletService) ListRechargeOrders(filter repository.WalletRechargeListFilter) ([]models.WalletRechargeOrder, int64, error) {
	return s.walletRepo.ListRechargeOrders(filter)
}

// Spend 扣减余额。余额不足返回 false 且余额保持不变，不视为系统错误；
// 扣减要么整体成功要么整体失败，不存在部分扣减。
func (s *WalletService) Spend(input WalletSpendInput) (bool, *models.WalletAccount, error) {
	var accountResult *models.WalletAccount
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		account, _, txErr := s.SpendInTx(tx, input)
		accountResult = account
		return txErr
	})
	if err != nil {
		var insufficient *InsufficientFundsError
		if errors.As(err, &insufficient) {
			account, accErr := s.getOrCreateAccount(input.UserID)
			if accErr != nil {
				return false, nil, accErr
			}
			return false, account, nil
		}
		return false, nil, err
	}
	return true, accountResult, nil
}

// SpendInTx 在事务内扣减余额并写入流水。
// 余额不足返回携带差额的 InsufficientFundsError；参考号重复时幂等返回已有流水。
func (s *WalletService) SpendInTx(tx *gorm.DB, input WalletSpendInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if tx == nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	txnType := strings.TrimSpace(input.TxnType)
	if txnType == "" {
		txnType = constants.WalletTxnTypePurchase
	}
	now := time.Now()
	repo := s.walletRepo.WithTx(tx)

	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		account, accountErr := repo.GetAccountByUserID(input.UserID)
		if accountErr != nil {
			return nil, nil, accountErr
		}
		return account, exists, nil
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	before := account.Balance.Decimal.Round(2)
	after := before.Sub(amount).Round(2)
	if after.LessThan(decimal.Zero) {
		return nil, nil, &InsufficientFundsError{
			Required:  models.NewMoneyFromDecimal(amount),
			Balance:   models.NewMoneyFromDecimal(before),
			Shortfall: models.NewMoneyFromDecimal(amount.Sub(before)),
		}
	}
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}

	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		Type:          txnType,
		Direction:     constants.WalletTxnDirectionOut,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		Remark:        cleanWalletRemark(input.Remark, "推广购买扣款"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	return account, txn, nil
}

// CreditInTx 在事务内执行钱包入账并写入唯一参考号流水
func (s *WalletService) CreditInTx(tx *gorm.DB, input WalletCreditInput) (*models.WalletAccount, *models.WalletTransaction, error) {
	if tx == nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}
	if input.UserID == 0 {
		return nil, nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, ErrWalletInvalidAmount
	}
	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	txnType := strings.TrimSpace(input.TxnType)
	if txnType == "" {
		txnType = constants.WalletTxnTypeRecharge
	}
	now := time.Now()
	repo := s.walletRepo.WithTx(tx)

	exists, err := repo.GetTransactionByReference(reference)
	if err != nil {
		return nil, nil, err
	}
	if exists != nil {
		account, accountErr := repo.GetAccountByUserID(input.UserID)
		if accountErr != nil {
			return nil, nil, accountErr
		}
		return account, exists, nil
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID, now)
	if err != nil {
		return nil, nil, err
	}
	before := account.Balance.Decimal.Round(2)
	after := before.Add(amount).Round(2)
	account.Balance = models.NewMoneyFromDecimal(after)
	account.UpdatedAt = now
	if err := repo.UpdateAccount(account); err != nil {
		return nil, nil, ErrWalletAccountUpdateFailed
	}

	txn := &models.WalletTransaction{
		UserID:        input.UserID,
		Type:          txnType,
		Direction:     constants.WalletTxnDirectionIn,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Currency:      normalizeWalletCurrency(input.Currency),
		Reference:     reference,
		Remark:        cleanWalletRemark(input.Remark, "钱包入账"),
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, nil, ErrWalletTransactionCreateFailed
	}
	return account, txn, nil
}

// Recharge 发起在线充值，创建充值订单并向网关下单
func (s *WalletService) Recharge(ctx context.Context, input WalletRechargeInput) (*models.WalletRechargeOrder, error) {
	if input.UserID == 0 {
		return nil, ErrWalletAccountNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrWalletInvalidAmount
	}
	if s.gateway == nil {
		return nil, ErrPaymentGatewayDisabled
	}

	now := time.Now()
	order := &models.WalletRechargeOrder{
		UserID:    input.UserID,
		OrderNo:   buildRechargeOrderNo(),
		Amount:    models.NewMoneyFromDecimal(amount),
		Currency:  normalizeWalletCurrency(input.Currency),
		Status:    constants.WalletRechargeStatusPending,
		Gateway:   "payriff",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateRechargeOrder(order); err != nil {
		return nil, err
	}

	result, err := s.gateway.CreateOrder(ctx, payriff.CreateInput{
		OrderNo:     order.OrderNo,
		Amount:      order.Amount.String(),
		Currency:    order.Currency,
		Description: cleanWalletRemark(input.Remark, "钱包充值"),
	})
	if err != nil {
		order.Status = constants.WalletRechargeStatusFailed
		order.UpdatedAt = time.Now()
		if updateErr := s.walletRepo.UpdateRechargeOrder(order); updateErr != nil {
			logger.Warnw("wallet_recharge_mark_failed_error", "order_no", order.OrderNo, "error", updateErr)
		}
		return nil, err
	}
	if !result.Success {
		order.Status = constants.WalletRechargeStatusFailed
		order.UpdatedAt = time.Now()
		if updateErr := s.walletRepo.UpdateRechargeOrder(order); updateErr != nil {
			logger.Warnw("wallet_recharge_mark_failed_error", "order_no", order.OrderNo, "error", updateErr)
		}
		return nil, ErrRechargeOrderClosed
	}

	order.TransactionID = result.TransactionID
	order.PaymentURL = result.PaymentURL
	order.UpdatedAt = time.Now()
	if err := s.walletRepo.UpdateRechargeOrder(order); err != nil {
		return nil, err
	}
	logger.Infow("wallet_recharge_created",
		"user_id", order.UserID,
		"order_no", order.OrderNo,
		"amount", order.Amount.String(),
	)
	return order, nil
}

// ConfirmRecharge 查询网关状态，支付成功则入账
func (s *WalletService) ConfirmRecharge(ctx context.Context, orderNo string) (*models.WalletRechargeOrder, error) {
	if s.gateway == nil {
		return nil, ErrPaymentGatewayDisabled
	}
	order, err := s.walletRepo.GetRechargeOrderByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrRechargeOrderNotFound
	}
	if order.Status == constants.WalletRechargeStatusSuccess {
		return order, nil
	}
	if order.Status != constants.WalletRechargeStatusPending {
		return nil, ErrRechargeOrderClosed
	}

	status, err := s.gateway.GetOrderStatus(ctx, orderNo)
	if err != nil {
		return nil, err
	}
	switch status.Status {
	case payriff.StatusApproved:
		return s.ApplyRechargeSuccess(orderNo, status.TransactionID)
	case payriff.StatusDeclined:
		order.Status = constants.WalletRechargeStatusFailed
	case payriff.StatusExpired:
		order.Status = constants.WalletRechargeStatusExpired
	default:
		return order, nil
	}
	order.UpdatedAt = time.Now()
	if err := s.walletRepo.UpdateRechargeOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// ApplyRechargeSuccess 充值到账：标记订单已支付并原子入账，按订单号幂等
func (s *WalletService) ApplyRechargeSuccess(orderNo string, transactionID string) (*models.WalletRechargeOrder, error) {
	var orderResult *models.WalletRechargeOrder
	err := s.walletRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.walletRepo.WithTx(tx)
		order, err := repo.GetRechargeOrderByOrderNoForUpdate(orderNo)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrRechargeOrderNotFound
		}
		if order.Status == constants.WalletRechargeStatusSuccess {
			orderResult = order
			return nil
		}
		if order.Status != constants.WalletRechargeStatusPending {
			return ErrRechargeOrderClosed
		}

		now := time.Now()
		order.Status = constants.WalletRechargeStatusSuccess
		order.PaidAt = &now
		order.UpdatedAt = now
		if strings.TrimSpace(transactionID) != "" {
			order.TransactionID = strings.TrimSpace(transactionID)
		}
		if err := repo.UpdateRechargeOrder(order); err != nil {
			return err
		}

		if _, _, err := s.CreditInTx(tx, WalletCreditInput{
			UserID:    order.UserID,
			Amount:    order.Amount,
			Currency:  order.Currency,
			TxnType:   constants.WalletTxnTypeRecharge,
			Reference: fmt.Sprintf("recharge:%s:success", order.OrderNo),
			Remark:    "在线充值到账",
		}); err != nil {
			return err
		}
		orderResult = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("wallet_recharge_applied", "order_no", orderNo)
	return orderResult, nil
}

func (s *WalletService) getOrCreateAccount(userID uint) (*models.WalletAccount, error) {
	account, err := s.walletRepo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	now := time.Now()
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  constants.SiteCurrencyDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.walletRepo.CreateAccount(account); err != nil {
		created, queryErr := s.walletRepo.GetAccountByUserID(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func (s *WalletService) ensureAccountForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.WalletAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	account = &models.WalletAccount{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		Currency:  constants.SiteCurrencyDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.CreateAccount(account); err != nil {
		created, queryErr := repo.GetAccountByUserIDForUpdate(userID)
		if queryErr == nil && created != nil {
			return created, nil
		}
		return nil, ErrWalletAccountCreateFailed
	}
	return account, nil
}

func normalizeWalletCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))
	if normalized == "" {
		return constants.SiteCurrencyDefault
	}
	return normalized
}

func cleanWalletRemark(raw string, fallback string) string {
	remark := strings.TrimSpace(raw)
	if remark == "" {
		return fallback
	}
	return remark
}

func buildRechargeOrderNo() string {
	return fmt.Sprintf("RC%s", strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:20]))
}
