package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/service"
	"recyclex/pkg/errors"
	"recyclex/pkg/utils"
)

// In-memory doubles for the Firestore repositories, with the same atomicity
// contract on ApplyTransaction.

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[string]*entity.Wallet
	ledger  []entity.Transaction
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[string]*entity.Wallet)}
}

func (r *fakeWalletRepo) CreateWallet(_ context.Context, wallet *entity.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if wallet.ID == "" {
		wallet.ID = uuid.New().String()
	}
	copied := *wallet
	r.wallets[wallet.ID] = &copied
	return nil
}

func (r *fakeWalletRepo) GetWalletByID(_ context.Context, walletID string) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return nil, errors.NotFound("Wallet", nil)
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWalletRepo) GetWalletsByUserID(_ context.Context, userID string) ([]entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Wallet
	for _, w := range r.wallets {
		if w.UserID == userID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) GetWalletByType(_ context.Context, walletType string) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.wallets {
		if w.Type == walletType {
			copied := *w
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Wallet", nil)
}

func (r *fakeWalletRepo) UpdateWallet(_ context.Context, wallet *entity.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *wallet
	r.wallets[wallet.ID] = &copied
	return nil
}

func (r *fakeWalletRepo) ApplyTransaction(_ context.Context, txn *entity.Transaction) (*entity.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[txn.WalletID]
	if !ok {
		return nil, errors.NotFound("Wallet", nil)
	}

	delta := entity.TransactionDirection(txn.Type) * txn.Amount
	if w.Balance+delta < 0 {
		return nil, errors.InsufficientBalance()
	}

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	txn.CreatedAt = time.Now()
	w.Balance += delta
	w.LastTxnAt = txn.CreatedAt
	r.ledger = append(r.ledger, *txn)

	copied := *w
	return &copied, nil
}

func (r *fakeWalletRepo) balance(walletID string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.wallets[walletID].Balance
}

type fakeTxnRepo struct {
	mu   sync.Mutex
	txns []entity.Transaction
}

func (r *fakeTxnRepo) CreateTransaction(_ context.Context, txn *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	r.txns = append(r.txns, *txn)
	return nil
}

func (r *fakeTxnRepo) GetTransactionByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.txns {
		if t.ID == id {
			copied := t
			return &copied, nil
		}
	}
	return nil, errors.NotFound("Transaction", nil)
}

func (r *fakeTxnRepo) GetTransactionsByWalletID(_ context.Context, walletID string, _ *utils.Pagination) ([]entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Transaction
	for _, t := range r.txns {
		if t.WalletID == walletID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTxnRepo) UpdateTransaction(_ context.Context, txn *entity.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.txns {
		if r.txns[i].ID == txn.ID {
			r.txns[i] = *txn
			return nil
		}
	}
	return errors.NotFound("Transaction", nil)
}

func (r *fakeTxnRepo) SumWithdrawalsSince(_ context.Context, walletID string, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, t := range r.txns {
		if t.WalletID != walletID || t.Type != entity.TransactionTypeWithdrawal {
			continue
		}
		if t.Status != entity.TransactionStatusCompleted && t.Status != entity.TransactionStatusPending {
			continue
		}
		if t.CreatedAt.Before(since) {
			continue
		}
		sum += t.Amount
	}
	return sum, nil
}

func (r *fakeTxnRepo) GetTransactionsSince(_ context.Context, since time.Time) ([]entity.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Transaction
	for _, t := range r.txns {
		if !t.CreatedAt.Before(since) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakePaymentMethodRepo struct {
	mu      sync.Mutex
	methods map[string]*entity.PaymentMethod
}

func newFakePaymentMethodRepo() *fakePaymentMethodRepo {
	return &fakePaymentMethodRepo{methods: make(map[string]*entity.PaymentMethod)}
}

func (r *fakePaymentMethodRepo) CreatePaymentMethod(_ context.Context, m *entity.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	copied := *m
	r.methods[m.ID] = &copied
	return nil
}

func (r *fakePaymentMethodRepo) GetPaymentMethodByID(_ context.Context, id string) (*entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.methods[id]
	if !ok {
		return nil, errors.NotFound("Payment method", nil)
	}
	copied := *m
	return &copied, nil
}

func (r *fakePaymentMethodRepo) GetPaymentMethodsByUserID(_ context.Context, userID string) ([]entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.PaymentMethod
	for _, m := range r.methods {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *fakePaymentMethodRepo) UpdatePaymentMethod(_ context.Context, m *entity.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *m
	r.methods[m.ID] = &copied
	return nil
}

func (r *fakePaymentMethodRepo) DeletePaymentMethod(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.methods, id)
	return nil
}

func (r *fakePaymentMethodRepo) SetDefaultPaymentMethod(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.methods {
		if m.UserID == userID {
			m.IsDefault = m.ID == id
		}
	}
	return nil
}

// fakePaymentGateway approves everything unless told otherwise.
type fakePaymentGateway struct {
	confirmStatus string
	createErr     error
}

func (g *fakePaymentGateway) CreatePaymentIntent(_ context.Context, req service.PaymentIntentRequest) (*service.PaymentIntent, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &service.PaymentIntent{
		ID:       "intent-" + req.OrderID,
		OrderID:  req.OrderID,
		Amount:   req.Amount,
		Currency: req.Currency,
		Status:   "pending",
	}, nil
}

func (g *fakePaymentGateway) ConfirmPayment(_ context.Context, intentID string) (*service.PaymentIntent, error) {
	status := g.confirmStatus
	if status == "" {
		status = "success"
	}
	return &service.PaymentIntent{ID: intentID, Status: status}, nil
}

func (g *fakePaymentGateway) GetPaymentStatus(_ context.Context, orderID string) (*service.PaymentIntent, error) {
	return &service.PaymentIntent{OrderID: orderID, Status: "success"}, nil
}

type fakeEscrowRepo struct {
	mu       sync.Mutex
	escrows  map[string]*entity.EscrowTransaction
	disputes map[string]*entity.Dispute
}

func newFakeEscrowRepo() *fakeEscrowRepo {
	return &fakeEscrowRepo{
		escrows:  make(map[string]*entity.EscrowTransaction),
		disputes: make(map[string]*entity.Dispute),
	}
}

func (r *fakeEscrowRepo) CreateEscrow(_ context.Context, e *entity.EscrowTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	copied := *e
	r.escrows[e.ID] = &copied
	return nil
}

func (r *fakeEscrowRepo) GetEscrowByID(_ context.Context, id string) (*entity.EscrowTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.escrows[id]
	if !ok {
		return nil, errors.NotFound("Escrow transaction", nil)
	}
	copied := *e
	return &copied, nil
}

func (r *fakeEscrowRepo) GetEscrowsByUserID(_ context.Context, userID string, _ *utils.Pagination) ([]entity.EscrowTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.EscrowTransaction
	for _, e := range r.escrows {
		if e.BuyerID == userID || e.SupplierID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEscrowRepo) UpdateEscrow(_ context.Context, e *entity.EscrowTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.escrows[e.ID]; !ok {
		return fmt.Errorf("escrow %s does not exist", e.ID)
	}
	copied := *e
	r.escrows[e.ID] = &copied
	return nil
}

func (r *fakeEscrowRepo) GetHeldEscrowsExpiringBefore(_ context.Context, deadline time.Time) ([]entity.EscrowTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.EscrowTransaction
	for _, e := range r.escrows {
		if e.Status == entity.EscrowStatusHeld && e.HoldExpiresAt != nil && !e.HoldExpiresAt.After(deadline) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeEscrowRepo) CreateDispute(_ context.Context, d *entity.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	copied := *d
	r.disputes[d.ID] = &copied
	return nil
}

func (r *fakeEscrowRepo) GetDisputeByID(_ context.Context, id string) (*entity.Dispute, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.disputes[id]
	if !ok {
		return nil, errors.NotFound("Dispute", nil)
	}
	copied := *d
	return &copied, nil
}

func (r *fakeEscrowRepo) UpdateDispute(_ context.Context, d *entity.Dispute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *d
	r.disputes[d.ID] = &copied
	return nil
}
