package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/internal/domain/service"
	"recyclex/pkg/config"
	"recyclex/pkg/errors"
	"recyclex/pkg/logger"
	"recyclex/pkg/utils"
)

type WalletUseCase struct {
	walletRepo        repository.WalletRepository
	txnRepo           repository.TransactionRepository
	paymentMethodRepo repository.PaymentMethodRepository
	paymentGateway    service.PaymentGateway
	limits            config.TransactionLimits
}

func NewWalletUseCase(
	walletRepo repository.WalletRepository,
	txnRepo repository.TransactionRepository,
	paymentMethodRepo repository.PaymentMethodRepository,
	paymentGateway service.PaymentGateway,
	limits config.TransactionLimits,
) *WalletUseCase {
	return &WalletUseCase{
		walletRepo:        walletRepo,
		txnRepo:           txnRepo,
		paymentMethodRepo: paymentMethodRepo,
		paymentGateway:    paymentGateway,
		limits:            limits,
	}
}

type CreateWalletInput struct {
	UserID   string
	Type     string
	Currency string
}

type DepositInput struct {
	UserID          string
	WalletID        string
	Amount          int64
	PaymentMethodID string
}

type WithdrawInput struct {
	UserID          string
	WalletID        string
	Amount          int64
	PaymentMethodID string
}

// TransferResult pairs the recorded transaction with the wallet state after
// the balance effect.
type TransferResult struct {
	Transaction entity.Transaction `json:"transaction"`
	Wallet      entity.Wallet      `json:"wallet"`
}

func (uc *WalletUseCase) CreateWallet(ctx context.Context, input CreateWalletInput) (*entity.Wallet, error) {
	currency := input.Currency
	if currency == "" {
		currency = "LKR"
	}

	walletType := input.Type
	if walletType == "" {
		walletType = entity.WalletTypeBuyer
	}

	existing, err := uc.walletRepo.GetWalletsByUserID(ctx, input.UserID)
	if err == nil {
		for _, w := range existing {
			if w.Type == walletType {
				return nil, errors.Conflict("Wallet of this type already exists for user")
			}
		}
	}

	wallet := &entity.Wallet{
		ID:        uuid.New().String(),
		UserID:    input.UserID,
		Type:      walletType,
		Balance:   0,
		Currency:  currency,
		IsActive:  true,
		LastTxnAt: time.Now(),
	}

	if err := uc.walletRepo.CreateWallet(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

func (uc *WalletUseCase) GetWallets(ctx context.Context, userID string) ([]entity.Wallet, error) {
	wallets, err := uc.walletRepo.GetWalletsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wallets == nil {
		wallets = []entity.Wallet{}
	}
	return wallets, nil
}

func (uc *WalletUseCase) GetTransactions(ctx context.Context, userID, walletID string, pagination *utils.Pagination) ([]entity.Transaction, error) {
	if _, err := uc.ownedWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}
	return uc.txnRepo.GetTransactionsByWalletID(ctx, walletID, pagination)
}

// Deposit runs the full server-side deposit: limit validation, a payment
// intent against the provider, then the atomic ledger append. Client-side
// checks are advisory; these are the ones that count.
func (uc *WalletUseCase) Deposit(ctx context.Context, input DepositInput) (*TransferResult, error) {
	if input.Amount < uc.limits.MinDeposit {
		return nil, errors.BadRequest("Deposit amount below minimum", nil)
	}
	if input.Amount > uc.limits.MaxDeposit {
		return nil, errors.BadRequest("Deposit amount above maximum", nil)
	}

	wallet, err := uc.ownedWallet(ctx, input.UserID, input.WalletID)
	if err != nil {
		return nil, err
	}

	method, err := uc.paymentMethodRepo.GetPaymentMethodByID(ctx, input.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if method.UserID != input.UserID {
		return nil, errors.Forbidden("Payment method does not belong to user", nil)
	}

	orderID := uuid.New().String()
	intent, err := uc.paymentGateway.CreatePaymentIntent(ctx, service.PaymentIntentRequest{
		OrderID:       orderID,
		Amount:        input.Amount,
		Currency:      wallet.Currency,
		CustomerID:    input.UserID,
		Description:   "Wallet deposit",
		PaymentMethod: method.Type,
	})
	if err != nil {
		return nil, errors.Internal("Failed to create payment", err)
	}

	confirmed, err := uc.paymentGateway.ConfirmPayment(ctx, intent.ID)
	if err != nil {
		return nil, errors.Internal("Failed to confirm payment", err)
	}
	if confirmed.Status != "success" {
		return nil, errors.BadRequest("Payment was not completed", nil)
	}

	txn := &entity.Transaction{
		WalletID:    input.WalletID,
		Type:        entity.TransactionTypeDeposit,
		Amount:      input.Amount,
		Currency:    wallet.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: "Wallet deposit",
		Reference:   orderID,
	}

	updated, err := uc.walletRepo.ApplyTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}

	logger.Info("Deposit completed: wallet=%s amount=%d", input.WalletID, input.Amount)
	return &TransferResult{Transaction: *txn, Wallet: *updated}, nil
}

// Withdraw debits the full requested amount; the fee is carved out of the
// payout, so the user receives amount minus fee.
func (uc *WalletUseCase) Withdraw(ctx context.Context, input WithdrawInput) (*TransferResult, error) {
	if input.Amount < uc.limits.MinWithdrawal {
		return nil, errors.BadRequest("Withdrawal amount below minimum", nil)
	}
	if input.Amount > uc.limits.MaxWithdrawal {
		return nil, errors.BadRequest("Withdrawal amount above maximum", nil)
	}

	wallet, err := uc.ownedWallet(ctx, input.UserID, input.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet.Balance < input.Amount {
		return nil, errors.InsufficientBalance()
	}

	dayStart := time.Now().UTC().Truncate(24 * time.Hour)
	usedToday, err := uc.txnRepo.SumWithdrawalsSince(ctx, input.WalletID, dayStart)
	if err != nil {
		return nil, err
	}
	if usedToday+input.Amount > uc.limits.DailyLimit {
		return nil, errors.DailyLimitExceeded()
	}

	method, err := uc.paymentMethodRepo.GetPaymentMethodByID(ctx, input.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	if method.UserID != input.UserID {
		return nil, errors.Forbidden("Payment method does not belong to user", nil)
	}

	fee := input.Amount * uc.limits.WithdrawFeePercent / 100
	net := input.Amount - fee

	txn := &entity.Transaction{
		WalletID:    input.WalletID,
		Type:        entity.TransactionTypeWithdrawal,
		Amount:      input.Amount,
		Currency:    wallet.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: fmt.Sprintf("Withdrawal to %s (fee %d, net %d)", method.Provider, fee, net),
	}

	updated, err := uc.walletRepo.ApplyTransaction(ctx, txn)
	if err != nil {
		return nil, err
	}

	logger.Info("Withdrawal completed: wallet=%s amount=%d fee=%d net=%d", input.WalletID, input.Amount, fee, net)
	return &TransferResult{Transaction: *txn, Wallet: *updated}, nil
}

func (uc *WalletUseCase) ownedWallet(ctx context.Context, userID, walletID string) (*entity.Wallet, error) {
	wallet, err := uc.walletRepo.GetWalletByID(ctx, walletID)
	if err != nil {
		return nil, err
	}
	// The shared admin wallet carries no owner.
	if wallet.UserID != "" && wallet.UserID != userID {
		return nil, errors.Forbidden("Wallet does not belong to user", nil)
	}
	if !wallet.IsActive {
		return nil, errors.BadRequest("Wallet is not active", nil)
	}
	return wallet, nil
}

type CreatePaymentMethodInput struct {
	Type          string
	Provider      string
	AccountNumber string
	AccountName   string
	IsDefault     bool
}

func (uc *WalletUseCase) CreatePaymentMethod(ctx context.Context, userID string, input CreatePaymentMethodInput) (*entity.PaymentMethod, error) {
	method := &entity.PaymentMethod{
		ID:            uuid.New().String(),
		UserID:        userID,
		Type:          input.Type,
		Provider:      input.Provider,
		AccountNumber: input.AccountNumber,
		AccountName:   input.AccountName,
		IsDefault:     input.IsDefault,
	}

	if err := uc.paymentMethodRepo.CreatePaymentMethod(ctx, method); err != nil {
		return nil, err
	}

	if input.IsDefault {
		if err := uc.paymentMethodRepo.SetDefaultPaymentMethod(ctx, userID, method.ID); err != nil {
			return nil, err
		}
	}

	return method, nil
}

func (uc *WalletUseCase) GetPaymentMethods(ctx context.Context, userID string) ([]entity.PaymentMethod, error) {
	return uc.paymentMethodRepo.GetPaymentMethodsByUserID(ctx, userID)
}

func (uc *WalletUseCase) DeletePaymentMethod(ctx context.Context, userID, paymentMethodID string) error {
	method, err := uc.paymentMethodRepo.GetPaymentMethodByID(ctx, paymentMethodID)
	if err != nil {
		return err
	}
	if method.UserID != userID {
		return errors.Forbidden("Payment method does not belong to user", nil)
	}
	return uc.paymentMethodRepo.DeletePaymentMethod(ctx, paymentMethodID)
}

var periodDurations = map[string]time.Duration{
	"day":     24 * time.Hour,
	"week":    7 * 24 * time.Hour,
	"month":   30 * 24 * time.Hour,
	"quarter": 90 * 24 * time.Hour,
	"year":    365 * 24 * time.Hour,
}

// GetAnalytics aggregates the ledger over the requested period.
func (uc *WalletUseCase) GetAnalytics(ctx context.Context, period string) (*entity.FinancialAnalytics, error) {
	window, ok := periodDurations[period]
	if !ok {
		return nil, errors.BadRequest("Unknown analytics period", nil)
	}

	since := time.Now().Add(-window)
	transactions, err := uc.txnRepo.GetTransactionsSince(ctx, since)
	if err != nil {
		return nil, err
	}

	analytics := &entity.FinancialAnalytics{
		Period:               period,
		TransactionsByType:   make(map[string]int),
		TransactionsByStatus: make(map[string]int),
	}

	var held, released int64
	for _, txn := range transactions {
		analytics.TransactionsByType[txn.Type]++
		analytics.TransactionsByStatus[txn.Status]++

		if txn.Status != entity.TransactionStatusCompleted {
			continue
		}
		analytics.TotalTransactions++

		switch txn.Type {
		case entity.TransactionTypeFee, entity.TransactionTypeCommission:
			analytics.TotalRevenue += txn.Amount
		case entity.TransactionTypeEscrowHold:
			held += txn.Amount
		case entity.TransactionTypeEscrowRelease:
			released += txn.Amount
		}
	}

	if analytics.TotalTransactions > 0 {
		var volume int64
		for _, txn := range transactions {
			if txn.Status == entity.TransactionStatusCompleted {
				volume += txn.Amount
			}
		}
		analytics.AverageTransactionValue = volume / int64(analytics.TotalTransactions)
	}

	analytics.EscrowMetrics = entity.EscrowMetrics{
		TotalHeld:     held,
		TotalReleased: released,
	}

	return analytics, nil
}
