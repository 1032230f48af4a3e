package entity

import "time"

const (
	WalletTypeBuyer       = "buyer"
	WalletTypeSupplier    = "supplier"
	WalletTypeAgent       = "agent"
	WalletTypeAdminShared = "admin_shared" // shared by all admins, UserID is empty
	WalletTypeEscrow      = "escrow"
)

// Wallet balances are int64 minor units (cents). A balance is mutated only
// through recorded Transactions so the ledger stays auditable.
type Wallet struct {
	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"user_id,omitempty" firestore:"userId,omitempty"`
	Type      string    `json:"type" firestore:"type"`
	Balance   int64     `json:"balance" firestore:"balance"`
	Currency  string    `json:"currency" firestore:"currency"`
	IsActive  bool      `json:"is_active" firestore:"isActive"`
	LastTxnAt time.Time `json:"last_txn_at" firestore:"lastTxnAt"`
	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

const (
	TransactionTypeDeposit       = "deposit"
	TransactionTypeWithdrawal    = "withdrawal"
	TransactionTypeTransfer      = "transfer"
	TransactionTypePayment       = "payment"
	TransactionTypeRefund        = "refund"
	TransactionTypeEscrowHold    = "escrow_hold"
	TransactionTypeEscrowRelease = "escrow_release"
	TransactionTypeBidFreeze     = "bid_freeze"
	TransactionTypeBidUnfreeze   = "bid_unfreeze"
	TransactionTypeFee           = "fee"
	TransactionTypeCommission    = "commission"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusFailed     = "failed"
	TransactionStatusCancelled  = "cancelled"
	TransactionStatusRefunded   = "refunded"
)

// Transaction amounts are always positive; the sign of the balance effect is
// derived from the type via TransactionDirection, never stored.
type Transaction struct {
	ID          string    `json:"id" firestore:"id"`
	WalletID    string    `json:"wallet_id" firestore:"walletId"`
	Type        string    `json:"type" firestore:"type"`
	Amount      int64     `json:"amount" firestore:"amount"`
	Currency    string    `json:"currency" firestore:"currency"`
	Status      string    `json:"status" firestore:"status"`
	Description string    `json:"description" firestore:"description"`
	Reference   string    `json:"reference,omitempty" firestore:"reference,omitempty"` // e.g. auction or escrow id
	CreatedAt   time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt   time.Time `json:"updated_at" firestore:"updatedAt"`
}

var transactionDirection = map[string]int64{
	TransactionTypeDeposit:       +1,
	TransactionTypeWithdrawal:    -1,
	TransactionTypeTransfer:      -1,
	TransactionTypePayment:       -1,
	TransactionTypeRefund:        +1,
	TransactionTypeEscrowHold:    -1,
	TransactionTypeEscrowRelease: +1,
	TransactionTypeBidFreeze:     -1,
	TransactionTypeBidUnfreeze:   +1,
	TransactionTypeFee:           -1,
	TransactionTypeCommission:    +1,
}

// TransactionDirection returns +1 or -1 for the balance effect of a
// transaction type, or 0 for unknown types.
func TransactionDirection(txnType string) int64 {
	return transactionDirection[txnType]
}

const (
	PaymentMethodTypeBankAccount   = "bank_account"
	PaymentMethodTypeCreditCard    = "credit_card"
	PaymentMethodTypeDebitCard     = "debit_card"
	PaymentMethodTypeDigitalWallet = "digital_wallet"
	PaymentMethodTypeMobilePayment = "mobile_payment"
)

type PaymentMethod struct {
	ID            string    `json:"id" firestore:"id"`
	UserID        string    `json:"user_id" firestore:"userId"`
	Type          string    `json:"type" firestore:"type"`
	Provider      string    `json:"provider" firestore:"provider"` // Commercial Bank, Sampath Bank, eZ Cash, ...
	AccountNumber string    `json:"account_number,omitempty" firestore:"accountNumber,omitempty"`
	AccountName   string    `json:"account_name,omitempty" firestore:"accountName,omitempty"`
	IsDefault     bool      `json:"is_default" firestore:"isDefault"`
	IsVerified    bool      `json:"is_verified" firestore:"isVerified"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt"`
}

type FinancialAnalytics struct {
	Period                  string           `json:"period"` // "day", "week", "month", "quarter", "year"
	TotalRevenue            int64            `json:"total_revenue"`
	TotalTransactions       int              `json:"total_transactions"`
	AverageTransactionValue int64            `json:"average_transaction_value"`
	TransactionsByType      map[string]int   `json:"transactions_by_type"`
	TransactionsByStatus    map[string]int   `json:"transactions_by_status"`
	EscrowMetrics           EscrowMetrics    `json:"escrow_metrics"`
	RevenueByPeriod         []RevenueBucket  `json:"revenue_by_period"`
}

type RevenueBucket struct {
	Period       string `json:"period"`
	Revenue      int64  `json:"revenue"`
	Transactions int    `json:"transactions"`
}

type EscrowMetrics struct {
	TotalHeld       int64   `json:"total_held"`
	TotalReleased   int64   `json:"total_released"`
	AverageHoldTime float64 `json:"average_hold_time"` // days
	DisputeRate     float64 `json:"dispute_rate"`
}
