package repository

import (
	"context"
	"time"

	"recyclex/internal/domain/entity"
	"recyclex/pkg/utils"
)

type WalletRepository interface {
	CreateWallet(ctx context.Context, wallet *entity.Wallet) error
	GetWalletByID(ctx context.Context, walletID string) (*entity.Wallet, error)
	GetWalletsByUserID(ctx context.Context, userID string) ([]entity.Wallet, error)
	GetWalletByType(ctx context.Context, walletType string) (*entity.Wallet, error)
	UpdateWallet(ctx context.Context, wallet *entity.Wallet) error

	// ApplyTransaction atomically records the transaction and applies its
	// balance effect to the wallet, failing the whole operation if the
	// balance would go negative.
	ApplyTransaction(ctx context.Context, txn *entity.Transaction) (*entity.Wallet, error)
}

type TransactionRepository interface {
	CreateTransaction(ctx context.Context, txn *entity.Transaction) error
	GetTransactionByID(ctx context.Context, transactionID string) (*entity.Transaction, error)
	GetTransactionsByWalletID(ctx context.Context, walletID string, pagination *utils.Pagination) ([]entity.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *entity.Transaction) error

	// SumWithdrawalsSince totals completed and pending withdrawal amounts
	// recorded for the wallet at or after the given instant.
	SumWithdrawalsSince(ctx context.Context, walletID string, since time.Time) (int64, error)

	// GetTransactionsSince returns every transaction recorded at or after
	// the given instant, for analytics aggregation.
	GetTransactionsSince(ctx context.Context, since time.Time) ([]entity.Transaction, error)
}

type PaymentMethodRepository interface {
	CreatePaymentMethod(ctx context.Context, paymentMethod *entity.PaymentMethod) error
	GetPaymentMethodByID(ctx context.Context, paymentMethodID string) (*entity.PaymentMethod, error)
	GetPaymentMethodsByUserID(ctx context.Context, userID string) ([]entity.PaymentMethod, error)
	UpdatePaymentMethod(ctx context.Context, paymentMethod *entity.PaymentMethod) error
	DeletePaymentMethod(ctx context.Context, paymentMethodID string) error
	SetDefaultPaymentMethod(ctx context.Context, userID string, paymentMethodID string) error
}
