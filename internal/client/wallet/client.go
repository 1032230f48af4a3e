package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"recyclex/internal/client/state"
	"recyclex/internal/domain/entity"
	"recyclex/pkg/config"
)

// Client is the HTTP side of the wallet feature. Every fetch is tokenized
// through the store so a slow response that lost the race against a newer
// fetch of the same resource is discarded instead of applied.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
	store   *state.WalletStore
	limits  config.TransactionLimits
}

func NewClient(baseURL, authToken string, store *state.WalletStore, limits config.TransactionLimits) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   authToken,
		store:   store,
		limits:  limits,
	}
}

// Store exposes the backing store for read access.
func (c *Client) Store() *state.WalletStore { return c.store }

func (c *Client) Limits() config.TransactionLimits { return c.limits }

// envelope mirrors the server response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// apiMessage extracts the server's message, mapping the raw persistence error
// a fresh account sees into an actionable one.
func apiMessage(env envelope) string {
	msg := env.Message
	if env.Error != nil && env.Error.Message != "" {
		msg = env.Error.Message
	}
	if msg == "" {
		msg = "request failed"
	}
	if strings.Contains(strings.ToLower(msg), "not present in table") {
		return "please register first"
	}
	return msg
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("unexpected response from server")
	}

	if resp.StatusCode >= 400 || !env.Success {
		return fmt.Errorf("%s", apiMessage(env))
	}

	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unexpected response from server")
		}
	}
	return nil
}

// FetchWallets loads the user's wallets into the store.
func (c *Client) FetchWallets(ctx context.Context) error {
	token := c.store.BeginFetch(state.ResourceWallets)

	var wallets []entity.Wallet
	if err := c.do(ctx, http.MethodGet, "/api/v1/wallets", nil, &wallets); err != nil {
		c.store.FailFetch(state.ResourceWallets, token, err.Error())
		return err
	}

	c.store.ApplyWallets(token, wallets)
	return nil
}

func (c *Client) FetchTransactions(ctx context.Context, walletID string) error {
	token := c.store.BeginFetch(state.ResourceTransactions)

	path := "/api/v1/wallets/" + walletID + "/transactions"
	var txns []entity.Transaction
	if err := c.do(ctx, http.MethodGet, path, nil, &txns); err != nil {
		c.store.FailFetch(state.ResourceTransactions, token, err.Error())
		return err
	}

	c.store.ApplyTransactions(token, txns)
	return nil
}

func (c *Client) FetchPaymentMethods(ctx context.Context) error {
	token := c.store.BeginFetch(state.ResourcePaymentMethods)

	var methods []entity.PaymentMethod
	if err := c.do(ctx, http.MethodGet, "/api/v1/payment-methods", nil, &methods); err != nil {
		c.store.FailFetch(state.ResourcePaymentMethods, token, err.Error())
		return err
	}

	c.store.ApplyPaymentMethods(token, methods)
	return nil
}

// FetchAnalytics loads aggregates for one of "day", "week", "month",
// "quarter" or "year".
func (c *Client) FetchAnalytics(ctx context.Context, period string) error {
	token := c.store.BeginFetch(state.ResourceAnalytics)

	var analytics entity.FinancialAnalytics
	if err := c.do(ctx, http.MethodGet, "/api/v1/analytics?period="+period, nil, &analytics); err != nil {
		c.store.FailFetch(state.ResourceAnalytics, token, err.Error())
		return err
	}

	c.store.ApplyAnalytics(token, &analytics)
	return nil
}

func (c *Client) FetchEscrows(ctx context.Context) error {
	token := c.store.BeginFetch(state.ResourceEscrow)

	var escrows []entity.EscrowTransaction
	if err := c.do(ctx, http.MethodGet, "/api/v1/escrows", nil, &escrows); err != nil {
		c.store.FailFetch(state.ResourceEscrow, token, err.Error())
		return err
	}

	c.store.ApplyEscrows(token, escrows)
	return nil
}

type depositRequest struct {
	WalletID        string `json:"wallet_id"`
	Amount          int64  `json:"amount"`
	PaymentMethodID string `json:"payment_method_id"`
}

type withdrawRequest struct {
	WalletID        string `json:"wallet_id"`
	Amount          int64  `json:"amount"`
	PaymentMethodID string `json:"payment_method_id"`
}

// transferResult is what deposit and withdraw both return.
type transferResult struct {
	Transaction entity.Transaction `json:"transaction"`
	Wallet      entity.Wallet      `json:"wallet"`
}

func (c *Client) deposit(ctx context.Context, walletID string, amount int64, paymentMethodID string) (entity.Transaction, error) {
	var result transferResult
	err := c.do(ctx, http.MethodPost, "/api/v1/wallets/deposit", depositRequest{
		WalletID:        walletID,
		Amount:          amount,
		PaymentMethodID: paymentMethodID,
	}, &result)
	if err != nil {
		return entity.Transaction{}, err
	}

	c.store.AddTransaction(result.Transaction)
	c.store.UpdateWalletBalance(result.Wallet.ID, result.Wallet.Balance)
	return result.Transaction, nil
}

func (c *Client) withdraw(ctx context.Context, walletID string, amount int64, paymentMethodID string) (entity.Transaction, error) {
	var result transferResult
	err := c.do(ctx, http.MethodPost, "/api/v1/wallets/withdraw", withdrawRequest{
		WalletID:        walletID,
		Amount:          amount,
		PaymentMethodID: paymentMethodID,
	}, &result)
	if err != nil {
		return entity.Transaction{}, err
	}

	c.store.AddTransaction(result.Transaction)
	c.store.UpdateWalletBalance(result.Wallet.ID, result.Wallet.Balance)
	return result.Transaction, nil
}

// DailyWithdrawalUsed sums completed withdrawals recorded today (UTC) for the
// wallet, from the locally cached ledger.
func (c *Client) DailyWithdrawalUsed(walletID string) int64 {
	dayStart := time.Now().UTC().Truncate(24 * time.Hour)

	var used int64
	for _, txn := range c.store.Transactions() {
		if txn.WalletID != walletID || txn.Type != entity.TransactionTypeWithdrawal {
			continue
		}
		if txn.Status != entity.TransactionStatusCompleted && txn.Status != entity.TransactionStatusPending {
			continue
		}
		if txn.CreatedAt.UTC().Before(dayStart) {
			continue
		}
		used += txn.Amount
	}
	return used
}
