package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"recyclex/internal/client/state"
	"recyclex/internal/domain/entity"
	"recyclex/pkg/config"
)

var testLimits = config.TransactionLimits{
	MinDeposit:         100_00,
	MaxDeposit:         999_999_00,
	MinWithdrawal:      500_00,
	MaxWithdrawal:      500_000_00,
	DailyLimit:         999_999_00,
	WithdrawFeePercent: 1,
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *state.WalletStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := state.NewWalletStore()
	return NewClient(srv.URL, "test-token", store, testLimits), store
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func writeFailure(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}

func seedWallet(store *state.WalletStore, balance int64) {
	tok := store.BeginFetch(state.ResourceWallets)
	store.ApplyWallets(tok, []entity.Wallet{{ID: "w1", Balance: balance, Currency: "LKR"}})
}

func TestDepositFlowValidatesAmount(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())
	flow := client.StartDeposit("w1")

	assert.Error(t, flow.EnterAmount("abc"))
	assert.Equal(t, StepAmount, flow.Step())
	assert.NotEmpty(t, flow.LastError())

	// Below the 100 LKR minimum.
	assert.Error(t, flow.EnterAmount("50"))
	assert.Equal(t, StepAmount, flow.Step())

	// Above the maximum.
	assert.Error(t, flow.EnterAmount("1000000"))
	assert.Equal(t, StepAmount, flow.Step())

	assert.NoError(t, flow.EnterAmount("5,000"))
	assert.Equal(t, StepConfirm, flow.Step())
	assert.Equal(t, int64(5000_00), flow.Amount())
	assert.Empty(t, flow.LastError())
}

func TestDepositFlowConfirm(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/wallets/deposit", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req struct {
			WalletID string `json:"wallet_id"`
			Amount   int64  `json:"amount"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, int64(5000_00), req.Amount)

		writeSuccess(w, map[string]interface{}{
			"transaction": entity.Transaction{ID: "t1", WalletID: req.WalletID, Type: entity.TransactionTypeDeposit, Amount: req.Amount, Status: entity.TransactionStatusCompleted},
			"wallet":      entity.Wallet{ID: req.WalletID, Balance: 30000_00},
		})
	}))
	seedWallet(store, 25000_00)

	flow := client.StartDeposit("w1")
	assert.NoError(t, flow.EnterAmount("5000"))

	txn, err := flow.Confirm(context.Background(), "pm1")
	assert.NoError(t, err)
	assert.Equal(t, StepDone, flow.Step())
	assert.Equal(t, "t1", txn.ID)

	wallet, _ := store.CurrentWallet()
	assert.Equal(t, int64(30000_00), wallet.Balance)

	txns := store.Transactions()
	if assert.Len(t, txns, 1) {
		assert.Equal(t, "t1", txns[0].ID)
	}
}

func TestDepositFlowFailureRetriesInPlace(t *testing.T) {
	var calls int
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			writeFailure(w, http.StatusBadGateway, "PAYMENT_FAILED", "payment provider unavailable")
			return
		}
		writeSuccess(w, map[string]interface{}{
			"transaction": entity.Transaction{ID: "t1"},
			"wallet":      entity.Wallet{ID: "w1", Balance: 30000_00},
		})
	}))
	seedWallet(store, 25000_00)

	flow := client.StartDeposit("w1")
	assert.NoError(t, flow.EnterAmount("5000"))

	_, err := flow.Confirm(context.Background(), "pm1")
	assert.Error(t, err)
	// Failure keeps the flow on confirm with the amount intact.
	assert.Equal(t, StepConfirm, flow.Step())
	assert.Equal(t, int64(5000_00), flow.Amount())
	assert.Equal(t, "payment provider unavailable", flow.LastError())

	_, err = flow.Confirm(context.Background(), "pm1")
	assert.NoError(t, err)
	assert.Equal(t, StepDone, flow.Step())
}

func TestWithdrawFlowFeePreview(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler())
	seedWallet(store, 25000_00)

	flow := client.StartWithdrawal("w1")
	assert.NoError(t, flow.EnterAmount("5000"))

	// 1% fee comes out of the payout, not on top of it.
	assert.Equal(t, int64(5000_00), flow.Amount())
	assert.Equal(t, int64(50_00), flow.Fee())
	assert.Equal(t, int64(4950_00), flow.NetAmount())
}

func TestWithdrawFlowDebitsFullAmount(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/wallets/withdraw", r.URL.Path)
		writeSuccess(w, map[string]interface{}{
			"transaction": entity.Transaction{
				ID:        "t1",
				WalletID:  "w1",
				Type:      entity.TransactionTypeWithdrawal,
				Amount:    5000_00,
				Status:    entity.TransactionStatusCompleted,
				CreatedAt: time.Now(),
			},
			"wallet": entity.Wallet{ID: "w1", Balance: 20000_00},
		})
	}))
	seedWallet(store, 25000_00)

	flow := client.StartWithdrawal("w1")
	assert.NoError(t, flow.EnterAmount("5000"))

	txn, err := flow.Confirm(context.Background(), "pm1")
	assert.NoError(t, err)
	assert.Equal(t, int64(5000_00), txn.Amount)

	// 25,000 minus the withdrawn 5,000; the 50 fee came out of the payout.
	wallet, _ := store.CurrentWallet()
	assert.Equal(t, int64(20000_00), wallet.Balance)
}

func TestWithdrawFlowRejectsOverBalance(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler())
	seedWallet(store, 1000_00)

	flow := client.StartWithdrawal("w1")
	err := flow.EnterAmount("2000")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient balance")
	assert.Equal(t, StepAmount, flow.Step())
}

func TestWithdrawFlowEnforcesDailyLimit(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler())
	seedWallet(store, 999_999_00*2)

	// Completed withdrawals from earlier today count against the limit.
	store.AddTransaction(entity.Transaction{
		ID:        "t-prior",
		WalletID:  "w1",
		Type:      entity.TransactionTypeWithdrawal,
		Amount:    999_500_00,
		Status:    entity.TransactionStatusCompleted,
		CreatedAt: time.Now(),
	})

	flow := client.StartWithdrawal("w1")
	err := flow.EnterAmount("1000")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "daily withdrawal limit")
}

func TestDailyWithdrawalUsedIgnoresOldAndFailed(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler())

	store.AddTransaction(entity.Transaction{
		ID: "t-yesterday", WalletID: "w1", Type: entity.TransactionTypeWithdrawal,
		Amount: 10000_00, Status: entity.TransactionStatusCompleted,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	})
	store.AddTransaction(entity.Transaction{
		ID: "t-failed", WalletID: "w1", Type: entity.TransactionTypeWithdrawal,
		Amount: 7000_00, Status: entity.TransactionStatusFailed,
		CreatedAt: time.Now(),
	})
	store.AddTransaction(entity.Transaction{
		ID: "t-pending", WalletID: "w1", Type: entity.TransactionTypeWithdrawal,
		Amount: 3000_00, Status: entity.TransactionStatusPending,
		CreatedAt: time.Now(),
	})

	assert.Equal(t, int64(3000_00), client.DailyWithdrawalUsed("w1"))
}

func TestFlowBackReturnsToAmount(t *testing.T) {
	client, store := newTestClient(t, http.NotFoundHandler())
	seedWallet(store, 25000_00)

	flow := client.StartDeposit("w1")
	assert.NoError(t, flow.EnterAmount("5000"))
	assert.Equal(t, StepConfirm, flow.Step())

	flow.Back()
	assert.Equal(t, StepAmount, flow.Step())
	assert.NoError(t, flow.EnterAmount("6000"))
	assert.Equal(t, int64(6000_00), flow.Amount())
}

func TestFetchFailureRecordsResourceError(t *testing.T) {
	client, store := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusInternalServerError, "INTERNAL_ERROR", "boom")
	}))

	err := client.FetchWallets(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "boom", store.ResourceError(state.ResourceWallets))
	assert.False(t, store.Loading(state.ResourceWallets))
}

func TestRegistrationHintForFreshAccounts(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeFailure(w, http.StatusNotFound, "NOT_FOUND", "user abc123 not present in table users")
	}))

	err := client.FetchWallets(context.Background())
	assert.Error(t, err)
	assert.Equal(t, "please register first", err.Error())
}
