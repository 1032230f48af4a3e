package state

import (
	"sync"
	"time"

	"recyclex/internal/domain/entity"
)

// Resource names the independently tracked sub-resources of the wallet store.
// Loading and error state are kept per resource so a failed fetch in one does
// not block or clear the others.
type Resource string

const (
	ResourceWallets        Resource = "wallets"
	ResourceTransactions   Resource = "transactions"
	ResourcePaymentMethods Resource = "paymentMethods"
	ResourceAnalytics      Resource = "analytics"
	ResourceEscrow         Resource = "escrow"
)

// WalletStore is a read-through cache of server-authoritative wallet data,
// locally patched by actions pending confirmation. Each fetch is issued a
// monotonic token per resource; a response whose token is no longer the
// latest issued for that resource is discarded rather than applied.
type WalletStore struct {
	mu sync.Mutex

	wallets         []entity.Wallet
	currentWalletID string
	transactions    []entity.Transaction
	paymentMethods  []entity.PaymentMethod
	escrows         []entity.EscrowTransaction
	analytics       *entity.FinancialAnalytics

	loading map[Resource]bool
	errors  map[Resource]string
	tokens  map[Resource]uint64
}

func NewWalletStore() *WalletStore {
	return &WalletStore{
		loading: make(map[Resource]bool),
		errors:  make(map[Resource]string),
		tokens:  make(map[Resource]uint64),
	}
}

// BeginFetch marks a resource loading and returns the token the eventual
// response must present to be applied.
func (s *WalletStore) BeginFetch(resource Resource) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[resource]++
	s.loading[resource] = true
	s.errors[resource] = ""
	return s.tokens[resource]
}

func (s *WalletStore) stale(resource Resource, token uint64) bool {
	return token != s.tokens[resource]
}

// ApplyWallets replaces the wallet list. If no wallet was previously selected
// the first returned one becomes current. Returns false when the response was
// stale and dropped.
func (s *WalletStore) ApplyWallets(token uint64, wallets []entity.Wallet) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ResourceWallets, token) {
		return false
	}
	s.loading[ResourceWallets] = false
	s.wallets = append([]entity.Wallet(nil), wallets...)
	if s.currentWalletID == "" && len(wallets) > 0 {
		s.currentWalletID = wallets[0].ID
	}
	return true
}

func (s *WalletStore) ApplyTransactions(token uint64, txns []entity.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ResourceTransactions, token) {
		return false
	}
	s.loading[ResourceTransactions] = false
	s.transactions = append([]entity.Transaction(nil), txns...)
	return true
}

func (s *WalletStore) ApplyPaymentMethods(token uint64, methods []entity.PaymentMethod) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ResourcePaymentMethods, token) {
		return false
	}
	s.loading[ResourcePaymentMethods] = false
	s.paymentMethods = append([]entity.PaymentMethod(nil), methods...)
	return true
}

func (s *WalletStore) ApplyAnalytics(token uint64, analytics *entity.FinancialAnalytics) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ResourceAnalytics, token) {
		return false
	}
	s.loading[ResourceAnalytics] = false
	s.analytics = analytics
	return true
}

func (s *WalletStore) ApplyEscrows(token uint64, escrows []entity.EscrowTransaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(ResourceEscrow, token) {
		return false
	}
	s.loading[ResourceEscrow] = false
	s.escrows = append([]entity.EscrowTransaction(nil), escrows...)
	return true
}

// FailFetch records a per-resource error without touching the cached data of
// any resource.
func (s *WalletStore) FailFetch(resource Resource, token uint64, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stale(resource, token) {
		return false
	}
	s.loading[resource] = false
	s.errors[resource] = message
	return true
}

func (s *WalletStore) Loading(resource Resource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading[resource]
}

func (s *WalletStore) ResourceError(resource Resource) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[resource]
}

func (s *WalletStore) Wallets() []entity.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Wallet(nil), s.wallets...)
}

func (s *WalletStore) SetCurrentWallet(walletID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentWalletID = walletID
}

func (s *WalletStore) CurrentWallet() (entity.Wallet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.wallets {
		if w.ID == s.currentWalletID {
			return w, true
		}
	}
	return entity.Wallet{}, false
}

// AddTransaction prepends a locally-originated transaction so it shows ahead
// of fetched history.
func (s *WalletStore) AddTransaction(txn entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append([]entity.Transaction{txn}, s.transactions...)
}

func (s *WalletStore) UpdateTransaction(txn entity.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.transactions {
		if s.transactions[i].ID == txn.ID {
			s.transactions[i] = txn
			return
		}
	}
}

func (s *WalletStore) Transactions() []entity.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Transaction(nil), s.transactions...)
}

func (s *WalletStore) PaymentMethods() []entity.PaymentMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.PaymentMethod(nil), s.paymentMethods...)
}

func (s *WalletStore) EscrowTransactions() []entity.EscrowTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.EscrowTransaction(nil), s.escrows...)
}

func (s *WalletStore) UpsertEscrow(escrow entity.EscrowTransaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.escrows {
		if s.escrows[i].ID == escrow.ID {
			s.escrows[i] = escrow
			return
		}
	}
	s.escrows = append(s.escrows, escrow)
}

func (s *WalletStore) Analytics() *entity.FinancialAnalytics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analytics
}

// UpdateWalletBalance sets the absolute balance of a wallet. Both the list
// entry and the current-wallet view read from the same slice, so the two can
// never diverge.
func (s *WalletStore) UpdateWalletBalance(walletID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.wallets {
		if s.wallets[i].ID == walletID {
			s.wallets[i].Balance = balance
			s.wallets[i].UpdatedAt = time.Now()
			return
		}
	}
}
