package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"recyclex/internal/domain/entity"
)

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	store := NewWalletStore()

	first := store.BeginFetch(ResourceWallets)
	second := store.BeginFetch(ResourceWallets)

	// The older in-flight response arrives after a newer fetch was issued.
	applied := store.ApplyWallets(first, []entity.Wallet{{ID: "w-stale", Balance: 100}})
	assert.False(t, applied)
	assert.Empty(t, store.Wallets())

	applied = store.ApplyWallets(second, []entity.Wallet{{ID: "w-fresh", Balance: 200}})
	assert.True(t, applied)

	wallets := store.Wallets()
	if assert.Len(t, wallets, 1) {
		assert.Equal(t, "w-fresh", wallets[0].ID)
	}
	assert.False(t, store.Loading(ResourceWallets))
}

func TestStaleErrorIsDiscarded(t *testing.T) {
	store := NewWalletStore()

	old := store.BeginFetch(ResourceTransactions)
	current := store.BeginFetch(ResourceTransactions)

	assert.False(t, store.FailFetch(ResourceTransactions, old, "timeout"))
	assert.Empty(t, store.ResourceError(ResourceTransactions))

	assert.True(t, store.FailFetch(ResourceTransactions, current, "timeout"))
	assert.Equal(t, "timeout", store.ResourceError(ResourceTransactions))
	assert.False(t, store.Loading(ResourceTransactions))
}

func TestResourceStateIsIndependent(t *testing.T) {
	store := NewWalletStore()

	wTok := store.BeginFetch(ResourceWallets)
	tTok := store.BeginFetch(ResourceTransactions)

	assert.True(t, store.Loading(ResourceWallets))
	assert.True(t, store.Loading(ResourceTransactions))

	// Transactions fail; wallets still apply cleanly.
	assert.True(t, store.FailFetch(ResourceTransactions, tTok, "server error"))
	assert.True(t, store.ApplyWallets(wTok, []entity.Wallet{{ID: "w1"}}))

	assert.Empty(t, store.ResourceError(ResourceWallets))
	assert.Equal(t, "server error", store.ResourceError(ResourceTransactions))
	assert.Len(t, store.Wallets(), 1)
}

func TestFirstWalletBecomesCurrent(t *testing.T) {
	store := NewWalletStore()

	tok := store.BeginFetch(ResourceWallets)
	store.ApplyWallets(tok, []entity.Wallet{
		{ID: "w1", Balance: 5000},
		{ID: "w2", Balance: 100},
	})

	current, ok := store.CurrentWallet()
	assert.True(t, ok)
	assert.Equal(t, "w1", current.ID)

	// An explicit selection survives a refetch.
	store.SetCurrentWallet("w2")
	tok = store.BeginFetch(ResourceWallets)
	store.ApplyWallets(tok, []entity.Wallet{
		{ID: "w1", Balance: 5000},
		{ID: "w2", Balance: 150},
	})

	current, ok = store.CurrentWallet()
	assert.True(t, ok)
	assert.Equal(t, "w2", current.ID)
	assert.Equal(t, int64(150), current.Balance)
}

func TestBalanceViewsNeverDiverge(t *testing.T) {
	store := NewWalletStore()

	tok := store.BeginFetch(ResourceWallets)
	store.ApplyWallets(tok, []entity.Wallet{{ID: "w1", Balance: 25000_00}})

	store.UpdateWalletBalance("w1", 20000_00)

	current, _ := store.CurrentWallet()
	assert.Equal(t, int64(20000_00), current.Balance)
	assert.Equal(t, int64(20000_00), store.Wallets()[0].Balance)
}

func TestAddTransactionPrepends(t *testing.T) {
	store := NewWalletStore()

	tok := store.BeginFetch(ResourceTransactions)
	store.ApplyTransactions(tok, []entity.Transaction{{ID: "t-old"}})

	store.AddTransaction(entity.Transaction{ID: "t-new"})

	txns := store.Transactions()
	if assert.Len(t, txns, 2) {
		assert.Equal(t, "t-new", txns[0].ID)
	}
}

func TestUpdateTransaction(t *testing.T) {
	store := NewWalletStore()
	store.AddTransaction(entity.Transaction{ID: "t1", Status: entity.TransactionStatusPending})

	store.UpdateTransaction(entity.Transaction{ID: "t1", Status: entity.TransactionStatusCompleted})

	txns := store.Transactions()
	assert.Equal(t, entity.TransactionStatusCompleted, txns[0].Status)
}

func TestUpsertEscrowMergesById(t *testing.T) {
	store := NewWalletStore()

	store.UpsertEscrow(entity.EscrowTransaction{ID: "e1", Status: entity.EscrowStatusCreated})
	store.UpsertEscrow(entity.EscrowTransaction{ID: "e1", Status: entity.EscrowStatusFunded})
	store.UpsertEscrow(entity.EscrowTransaction{ID: "e2", Status: entity.EscrowStatusCreated})

	escrows := store.EscrowTransactions()
	assert.Len(t, escrows, 2)
	assert.Equal(t, entity.EscrowStatusFunded, escrows[0].Status)
}
