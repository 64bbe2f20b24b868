package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bazar-next/internal/cache"
	"github.com/bazar-next/internal/config"
	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/logger"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const purchaseInFlightTTL = 30 * time.Second

// PurchaseService 付费动作编排服务。
// 固定顺序执行：校验、余额预检、确认、扣款、领域变更；
// 扣款与领域变更在同一个数据库事务内提交，变更失败时扣款随之回滚。
type PurchaseService struct {
	walletRepo  repository.WalletRepository
	walletSvc   *WalletService
	storeSvc    *StoreService
	discountSvc *DiscountService
	promotion   config.PromotionConfig
}

// PurchaseInput 付费动作输入
type PurchaseInput struct {
	UserID    uint
	Kind      string
	Confirmed bool

	// 店铺类动作
	StoreID uint
	PlanID  uint
	Name    string

	Description string

	// 商品类动作
	ListingID          uint
	DiscountPercentage models.Money
	DiscountEndsAt     time.Time
	Days               int
}

// PurchaseResult 付费动作结果
type PurchaseResult struct {
	Kind          string          `json:"kind"`
	Reference     string          `json:"reference"`
	AmountCharged models.Money    `json:"amount_charged"`
	Balance       models.Money    `json:"balance"`
	Store         *models.Store   `json:"store,omitempty"`
	Listing       *models.Listing `json:"listing,omitempty"`
}

// NewPurchaseService 创建付费动作服务
func NewPurchaseService(
	walletRepo repository.WalletRepository,
	walletSvc *WalletService,
	storeSvc *StoreService,
	discountSvc *DiscountService,
	promotion config.PromotionConfig,
) *PurchaseService {
	return &PurchaseService{
		walletRepo:  walletRepo,
		walletSvc:   walletSvc,
		storeSvc:    storeSvc,
		discountSvc: discountSvc,
		promotion:   promotion,
	}
}

// Purchase 执行付费动作
func (s *PurchaseService) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	now := time.Now()

	amount, err := s.validate(input, now)
	if err != nil {
		return nil, err
	}

	// 余额预检，差额随错误返回给前端提示
	account, err := s.walletSvc.GetAccount(input.UserID)
	if err != nil {
		return nil, err
	}
	if account.Balance.LessThan(amount.Decimal) {
		return nil, &InsufficientFundsError{
			Required:  amount,
			Balance:   account.Balance,
			Shortfall: models.NewMoneyFromDecimal(amount.Decimal.Sub(account.Balance.Decimal)),
		}
	}

	// 不可逆的资金操作必须显式确认
	if !input.Confirmed {
		return nil, ErrPurchaseNotConfirmed
	}

	// 同一用户同时只允许一笔购买在途，挡住确认弹窗上的连续双击
	guardKey := fmt.Sprintf("purchase:inflight:%d", input.UserID)
	acquired, err := cache.SetNX(ctx, guardKey, input.Kind, purchaseInFlightTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, ErrPurchaseInFlight
	}
	defer func() {
		if err := cache.Del(ctx, guardKey); err != nil {
			logger.Warnw("purchase_inflight_release_failed", "user_id", input.UserID, "error", err)
		}
	}()

	reference := fmt.Sprintf("purchase:%s:%s", input.Kind, uuid.NewString())
	result := &PurchaseResult{
		Kind:          input.Kind,
		Reference:     reference,
		AmountCharged: amount,
	}

	err = s.walletRepo.Transaction(func(tx *gorm.DB) error {
		spendAccount, _, err := s.walletSvc.SpendInTx(tx, WalletSpendInput{
			UserID:    input.UserID,
			Amount:    amount,
			TxnType:   constants.WalletTxnTypePurchase,
			Reference: reference,
			Remark:    purchaseRemark(input.Kind),
		})
		if err != nil {
			return err
		}
		result.Balance = spendAccount.Balance

		return s.perform(tx, input, now, result)
	})
	if err != nil {
		logger.Warnw("purchase_failed",
			"user_id", input.UserID,
			"kind", input.Kind,
			"amount", amount.String(),
			"error", err,
		)
		return nil, err
	}

	logger.Infow("purchase_completed",
		"user_id", input.UserID,
		"kind", input.Kind,
		"amount", amount.String(),
		"reference", reference,
	)
	return result, nil
}

// validate 静态前置校验，返回该动作的应付金额
func (s *PurchaseService) validate(input PurchaseInput, now time.Time) (models.Money, error) {
	if input.UserID == 0 {
		return models.MoneyZero(), ErrValidation
	}
	switch input.Kind {
	case constants.PurchaseKindStoreCreate:
		plan, err := s.storeSvc.ValidateCreate(StoreCreateInput{
			UserID:      input.UserID,
			PlanID:      input.PlanID,
			Name:        input.Name,
			Description: input.Description,
		}, now)
		if err != nil {
			return models.MoneyZero(), err
		}
		return plan.Price, nil
	case constants.PurchaseKindStoreRenew, constants.PurchaseKindStoreReactivate:
		status, err := s.storeSvc.CheckStatus(input.StoreID, now)
		if err != nil {
			return models.MoneyZero(), err
		}
		if status.Store.UserID != input.UserID {
			return models.MoneyZero(), ErrNotOwner
		}
		if input.Kind == constants.PurchaseKindStoreReactivate && status.Status == constants.StoreStatusActive {
			return models.MoneyZero(), ErrStoreAlreadyActive
		}
		plan, err := s.storeSvc.GetPlan(input.PlanID)
		if err != nil {
			return models.MoneyZero(), err
		}
		return plan.Price, nil
	case constants.PurchaseKindListingPromote:
		if err := s.requireOwnedListing(input.ListingID, input.UserID); err != nil {
			return models.MoneyZero(), err
		}
		return models.NewMoneyFromFloat(s.promotion.ListingPromote.Price), nil
	case constants.PurchaseKindListingDiscount:
		if err := s.requireOwnedListing(input.ListingID, input.UserID); err != nil {
			return models.MoneyZero(), err
		}
		if err := validatePercentValue(input.DiscountPercentage); err != nil {
			return models.MoneyZero(), err
		}
		if !input.DiscountEndsAt.After(now) {
			return models.MoneyZero(), ErrValidation
		}
		return models.NewMoneyFromFloat(s.promotion.ListingDiscount.Price), nil
	default:
		return models.MoneyZero(), ErrPurchaseKindInvalid
	}
}

// perform 扣款后的领域变更，与扣款同事务
func (s *PurchaseService) perform(tx *gorm.DB, input PurchaseInput, now time.Time, result *PurchaseResult) error {
	switch input.Kind {
	case constants.PurchaseKindStoreCreate:
		store, err := s.storeSvc.ActivateInTx(tx, StoreCreateInput{
			UserID:      input.UserID,
			PlanID:      input.PlanID,
			Name:        input.Name,
			Description: input.Description,
		}, now)
		if err != nil {
			return err
		}
		result.Store = store
		return nil
	case constants.PurchaseKindStoreRenew:
		store, err := s.storeSvc.RenewInTx(tx, input.StoreID, input.UserID, input.PlanID, now)
		if err != nil {
			return err
		}
		result.Store = store
		return nil
	case constants.PurchaseKindStoreReactivate:
		store, err := s.storeSvc.ReactivateInTx(tx, input.StoreID, input.UserID, input.PlanID, now)
		if err != nil {
			return err
		}
		result.Store = store
		return nil
	case constants.PurchaseKindListingPromote:
		days := input.Days
		if days <= 0 {
			days = s.promotion.ListingPromote.Days
		}
		listing, err := s.discountSvc.PromoteListingInTx(tx, input.UserID, input.ListingID, days, now)
		if err != nil {
			return err
		}
		result.Listing = listing
		return nil
	case constants.PurchaseKindListingDiscount:
		listing, err := s.discountSvc.ApplyListingDiscountInTx(tx, input.UserID, input.ListingID, input.DiscountPercentage, input.DiscountEndsAt, now)
		if err != nil {
			return err
		}
		result.Listing = listing
		return nil
	default:
		return ErrPurchaseKindInvalid
	}
}

func (s *PurchaseService) requireOwnedListing(listingID, userID uint) error {
	listing, err := s.discountSvc.listingRepo.GetByID(listingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return ErrListingNotFound
	}
	if listing.UserID != userID {
		return ErrNotOwner
	}
	return nil
}

func purchaseRemark(kind string) string {
	switch kind {
	case constants.PurchaseKindStoreCreate:
		return "开通店铺"
	case constants.PurchaseKindStoreRenew:
		return "店铺续费"
	case constants.PurchaseKindStoreReactivate:
		return "店铺复活"
	case constants.PurchaseKindListingPromote:
		return "商品推广"
	case constants.PurchaseKindListingDiscount:
		return "商品折扣"
	default:
		return "推广购买"
	}
}
