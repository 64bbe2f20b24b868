package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/bazar-next/internal/constants"
	"github.com/bazar-next/internal/models"
	"github.com/bazar-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.WalletRechargeOrder{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	walletRepo := repository.NewWalletRepository(db)
	return NewWalletService(walletRepo, nil), db
}

func creditTestBalance(t *testing.T, svc *WalletService, db *gorm.DB, userID uint, amount int64) {
	t.Helper()
	if err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.CreditInTx(tx, WalletCreditInput{
			UserID:    userID,
			Amount:    models.NewMoneyFromInt(amount),
			TxnType:   constants.WalletTxnTypeRecharge,
			Reference: fmt.Sprintf("test-credit-%d-%d", userID, amount),
		})
		return err
	}); err != nil {
		t.Fatalf("credit balance failed: %v", err)
	}
}

func TestWalletServiceSpendSuccess(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	creditTestBalance(t, svc, db, 101, 50)

	ok, account, err := svc.Spend(WalletSpendInput{
		UserID:    101,
		Amount:    models.NewMoneyFromInt(30),
		TxnType:   constants.WalletTxnTypePurchase,
		Reference: "test-spend-101",
	})
	if err != nil {
		t.Fatalf("spend failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected spend ok")
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected balance: %s", account.Balance.String())
	}

	var txn models.WalletTransaction
	if err := db.Where("reference = ?", "test-spend-101").First(&txn).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if txn.Direction != constants.WalletTxnDirectionOut {
		t.Fatalf("unexpected direction: %s", txn.Direction)
	}
	if !txn.BalanceBefore.Decimal.Equal(decimal.NewFromInt(50)) || !txn.BalanceAfter.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("unexpected balance trail: %s -> %s", txn.BalanceBefore.String(), txn.BalanceAfter.String())
	}
}

func TestWalletServiceSpendInsufficientKeepsBalance(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	creditTestBalance(t, svc, db, 102, 50)

	ok, account, err := svc.Spend(WalletSpendInput{
		UserID:    102,
		Amount:    models.NewMoneyFromInt(60),
		Reference: "test-spend-102",
	})
	if err != nil {
		t.Fatalf("spend returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected spend rejected")
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected balance unchanged, got %s", account.Balance.String())
	}

	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("reference = ?", "test-spend-102").Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no transaction recorded, got %d", count)
	}
}

func TestWalletServiceSpendInTxShortfall(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	creditTestBalance(t, svc, db, 103, 10)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.SpendInTx(tx, WalletSpendInput{
			UserID:    103,
			Amount:    models.NewMoneyFromInt(25),
			Reference: "test-spend-103",
		})
		return err
	})
	var insufficient *InsufficientFundsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected insufficient funds error, got %v", err)
	}
	if !insufficient.Shortfall.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("expected shortfall 15, got %s", insufficient.Shortfall.String())
	}
	if !errors.Is(err, ErrWalletInsufficientBalance) {
		t.Fatalf("expected sentinel match, got %v", err)
	}
}

func TestWalletServiceSpendIdempotentReference(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	creditTestBalance(t, svc, db, 104, 100)

	for i := 0; i < 2; i++ {
		ok, _, err := svc.Spend(WalletSpendInput{
			UserID:    104,
			Amount:    models.NewMoneyFromInt(40),
			Reference: "test-spend-104",
		})
		if err != nil || !ok {
			t.Fatalf("spend attempt %d failed: ok=%v err=%v", i, ok, err)
		}
	}

	account, err := svc.GetAccount(104)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected single deduction, balance %s", account.Balance.String())
	}
	var count int64
	if err := db.Model(&models.WalletTransaction{}).Where("reference = ?", "test-spend-104").Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one transaction, got %d", count)
	}
}

func TestWalletServiceSpendAtomicityRandomized(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	creditTestBalance(t, svc, db, 110, 1)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		balance := decimal.New(rng.Int63n(10001), -2)
		amount := decimal.New(rng.Int63n(10000)+1, -2)
		if err := db.Model(&models.WalletAccount{}).
			Where("user_id = ?", 110).
			Update("balance", models.NewMoneyFromDecimal(balance)).Error; err != nil {
			t.Fatalf("reset balance failed: %v", err)
		}

		ok, account, err := svc.Spend(WalletSpendInput{
			UserID:    110,
			Amount:    models.NewMoneyFromDecimal(amount),
			Reference: fmt.Sprintf("test-spend-110-%d", i),
		})
		if err != nil {
			t.Fatalf("spend %d failed: %v", i, err)
		}
		if balance.GreaterThanOrEqual(amount) {
			if !ok {
				t.Fatalf("spend %d: expected success for balance %s amount %s", i, balance, amount)
			}
			if !account.Balance.Decimal.Equal(balance.Sub(amount)) {
				t.Fatalf("spend %d: expected balance %s, got %s", i, balance.Sub(amount), account.Balance.String())
			}
		} else {
			if ok {
				t.Fatalf("spend %d: expected rejection for balance %s amount %s", i, balance, amount)
			}
			if !account.Balance.Decimal.Equal(balance) {
				t.Fatalf("spend %d: expected balance unchanged at %s, got %s", i, balance, account.Balance.String())
			}
		}
	}
}

func TestWalletServiceSpendInvalidAmount(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)

	_, _, err := svc.Spend(WalletSpendInput{
		UserID:    105,
		Amount:    models.MoneyZero(),
		Reference: "test-spend-105",
	})
	if !errors.Is(err, ErrWalletInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
}

func TestWalletServiceCreditCreatesAccount(t *testing.T) {
	svc, db := setupWalletServiceTest(t)

	if err := db.Transaction(func(tx *gorm.DB) error {
		account, txn, err := svc.CreditInTx(tx, WalletCreditInput{
			UserID:    106,
			Amount:    models.NewMoneyFromInt(75),
			Reference: "test-credit-106",
		})
		if err != nil {
			return err
		}
		if !account.Balance.Decimal.Equal(decimal.NewFromInt(75)) {
			t.Fatalf("unexpected balance: %s", account.Balance.String())
		}
		if txn.Direction != constants.WalletTxnDirectionIn || txn.Type != constants.WalletTxnTypeRecharge {
			t.Fatalf("unexpected transaction: %+v", txn)
		}
		return nil
	}); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	account, err := svc.GetAccount(106)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if account.Currency != constants.SiteCurrencyDefault {
		t.Fatalf("unexpected currency: %s", account.Currency)
	}
}

func TestWalletServiceRechargeWithoutGateway(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)

	_, err := svc.Recharge(context.Background(), WalletRechargeInput{
		UserID: 107,
		Amount: models.NewMoneyFromInt(20),
	})
	if !errors.Is(err, ErrPaymentGatewayDisabled) {
		t.Fatalf("expected gateway disabled, got %v", err)
	}
}

func TestWalletServiceApplyRechargeSuccessIdempotent(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	order := models.WalletRechargeOrder{
		UserID:   108,
		OrderNo:  "RCTEST108",
		Amount:   models.NewMoneyFromInt(30),
		Currency: constants.SiteCurrencyDefault,
		Status:   constants.WalletRechargeStatusPending,
		Gateway:  "payriff",
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create recharge order failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		applied, err := svc.ApplyRechargeSuccess("RCTEST108", "txn-108")
		if err != nil {
			t.Fatalf("apply attempt %d failed: %v", i, err)
		}
		if applied.Status != constants.WalletRechargeStatusSuccess {
			t.Fatalf("unexpected status: %s", applied.Status)
		}
	}

	account, err := svc.GetAccount(108)
	if err != nil {
		t.Fatalf("get account failed: %v", err)
	}
	if !account.Balance.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("expected single credit, balance %s", account.Balance.String())
	}
}

func TestWalletServiceApplyRechargeSuccessUnknownOrder(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	if _, err := svc.ApplyRechargeSuccess("RCUNKNOWN", ""); !errors.Is(err, ErrRechargeOrderNotFound) {
		t.Fatalf("expected order not found, got %v", err)
	}
}
