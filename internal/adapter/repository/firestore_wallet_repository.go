package repository

import (
	"context"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/pkg/errors"
	"recyclex/pkg/utils"
)

type firestoreWalletRepository struct {
	client *firestore.Client
}

func NewFirestoreWalletRepository(client *firestore.Client) repository.WalletRepository {
	return &firestoreWalletRepository{
		client: client,
	}
}

func (r *firestoreWalletRepository) CreateWallet(ctx context.Context, wallet *entity.Wallet) error {
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}

	now := time.Now()
	wallet.CreatedAt = now
	wallet.UpdatedAt = now

	_, err := r.client.Collection("wallets").Doc(wallet.ID).Set(ctx, wallet)
	if err != nil {
		return errors.Internal("Failed to create wallet", err)
	}

	return nil
}

func (r *firestoreWalletRepository) GetWalletByID(ctx context.Context, walletID string) (*entity.Wallet, error) {
	doc, err := r.client.Collection("wallets").Doc(walletID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Wallet", err)
		}
		return nil, errors.Internal("Failed to get wallet", err)
	}

	var wallet entity.Wallet
	if err := doc.DataTo(&wallet); err != nil {
		return nil, errors.Internal("Failed to parse wallet data", err)
	}

	return &wallet, nil
}

func (r *firestoreWalletRepository) GetWalletsByUserID(ctx context.Context, userID string) ([]entity.Wallet, error) {
	iter := r.client.Collection("wallets").Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var wallets []entity.Wallet
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate wallets", err)
		}

		var wallet entity.Wallet
		if err := doc.DataTo(&wallet); err != nil {
			log.Printf("Error converting wallet document: %v", err)
			continue
		}

		wallets = append(wallets, wallet)
	}

	return wallets, nil
}

func (r *firestoreWalletRepository) GetWalletByType(ctx context.Context, walletType string) (*entity.Wallet, error) {
	iter := r.client.Collection("wallets").Where("type", "==", walletType).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("Wallet", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get wallet", err)
	}

	var wallet entity.Wallet
	if err := doc.DataTo(&wallet); err != nil {
		return nil, errors.Internal("Failed to parse wallet data", err)
	}

	return &wallet, nil
}

func (r *firestoreWalletRepository) UpdateWallet(ctx context.Context, wallet *entity.Wallet) error {
	wallet.UpdatedAt = time.Now()
	_, err := r.client.Collection("wallets").Doc(wallet.ID).Set(ctx, wallet)
	if err != nil {
		return errors.Internal("Failed to update wallet", err)
	}
	return nil
}

// ApplyTransaction records the transaction document and mutates the wallet
// balance inside a single Firestore transaction. The balance effect comes
// from the transaction type, never from the caller.
func (r *firestoreWalletRepository) ApplyTransaction(ctx context.Context, txn *entity.Transaction) (*entity.Wallet, error) {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	now := time.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	delta := entity.TransactionDirection(txn.Type) * txn.Amount
	if delta == 0 && txn.Amount != 0 {
		return nil, errors.BadRequest("Unknown transaction type", nil)
	}

	var updated entity.Wallet
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		walletRef := r.client.Collection("wallets").Doc(txn.WalletID)
		doc, err := tx.Get(walletRef)
		if err != nil {
			return err
		}

		var wallet entity.Wallet
		if err := doc.DataTo(&wallet); err != nil {
			return err
		}

		wallet.Balance += delta
		if wallet.Balance < 0 {
			return errors.InsufficientBalance()
		}
		wallet.UpdatedAt = now
		wallet.LastTxnAt = now

		txnRef := r.client.Collection("transactions").Doc(txn.ID)
		if err := tx.Set(txnRef, txn); err != nil {
			return err
		}
		if err := tx.Set(walletRef, wallet); err != nil {
			return err
		}

		updated = wallet
		return nil
	})
	if err != nil {
		if errors.Is(err, "INSUFFICIENT_BALANCE") {
			return nil, err
		}
		return nil, errors.Internal("Failed to apply transaction", err)
	}

	return &updated, nil
}

type firestoreTransactionRepository struct {
	client *firestore.Client
}

func NewFirestoreTransactionRepository(client *firestore.Client) repository.TransactionRepository {
	return &firestoreTransactionRepository{
		client: client,
	}
}

func (r *firestoreTransactionRepository) CreateTransaction(ctx context.Context, txn *entity.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}

	now := time.Now()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err := r.client.Collection("transactions").Doc(txn.ID).Set(ctx, txn)
	if err != nil {
		return errors.Internal("Failed to create transaction", err)
	}

	return nil
}

func (r *firestoreTransactionRepository) GetTransactionByID(ctx context.Context, transactionID string) (*entity.Transaction, error) {
	doc, err := r.client.Collection("transactions").Doc(transactionID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Transaction", err)
		}
		return nil, errors.Internal("Failed to get transaction", err)
	}

	var txn entity.Transaction
	if err := doc.DataTo(&txn); err != nil {
		return nil, errors.Internal("Failed to parse transaction data", err)
	}

	return &txn, nil
}

func (r *firestoreTransactionRepository) GetTransactionsByWalletID(ctx context.Context, walletID string, pagination *utils.Pagination) ([]entity.Transaction, error) {
	query := r.client.Collection("transactions").
		Where("walletId", "==", walletID).
		OrderBy("createdAt", firestore.Desc)

	if pagination.Page > 1 {
		query = query.Offset(pagination.Offset())
	}
	query = query.Limit(pagination.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var transactions []entity.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate transactions", err)
		}

		var txn entity.Transaction
		if err := doc.DataTo(&txn); err != nil {
			log.Printf("Error converting transaction document: %v", err)
			continue
		}

		transactions = append(transactions, txn)
	}

	if transactions == nil {
		transactions = []entity.Transaction{}
	}

	return transactions, nil
}

func (r *firestoreTransactionRepository) UpdateTransaction(ctx context.Context, txn *entity.Transaction) error {
	txn.UpdatedAt = time.Now()
	_, err := r.client.Collection("transactions").Doc(txn.ID).Set(ctx, txn)
	if err != nil {
		return errors.Internal("Failed to update transaction", err)
	}
	return nil
}

func (r *firestoreTransactionRepository) SumWithdrawalsSince(ctx context.Context, walletID string, since time.Time) (int64, error) {
	iter := r.client.Collection("transactions").
		Where("walletId", "==", walletID).
		Where("type", "==", entity.TransactionTypeWithdrawal).
		Where("createdAt", ">=", since).
		Documents(ctx)
	defer iter.Stop()

	var total int64
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, errors.Internal("Failed to sum withdrawals", err)
		}

		var txn entity.Transaction
		if err := doc.DataTo(&txn); err != nil {
			log.Printf("Error converting transaction document: %v", err)
			continue
		}

		if txn.Status == entity.TransactionStatusCompleted || txn.Status == entity.TransactionStatusPending {
			total += txn.Amount
		}
	}

	return total, nil
}

func (r *firestoreTransactionRepository) GetTransactionsSince(ctx context.Context, since time.Time) ([]entity.Transaction, error) {
	iter := r.client.Collection("transactions").Where("createdAt", ">=", since).Documents(ctx)
	defer iter.Stop()

	var transactions []entity.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate transactions", err)
		}

		var txn entity.Transaction
		if err := doc.DataTo(&txn); err != nil {
			log.Printf("Error converting transaction document: %v", err)
			continue
		}

		transactions = append(transactions, txn)
	}

	return transactions, nil
}
