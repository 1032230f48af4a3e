package wallet

import (
	"context"
	"fmt"

	"recyclex/internal/domain/entity"
)

// Flow steps for the two-step deposit and withdrawal dialogs. A confirmation
// failure keeps the flow on the confirm step so the user retries in place
// instead of re-entering the amount.
const (
	StepAmount  = "amount"
	StepConfirm = "confirm"
	StepDone    = "done"
)

// DepositFlow walks a deposit through amount entry and payment confirmation.
type DepositFlow struct {
	client   *Client
	walletID string

	step      string
	amount    int64
	lastError string
}

func (c *Client) StartDeposit(walletID string) *DepositFlow {
	return &DepositFlow{client: c, walletID: walletID, step: StepAmount}
}

func (f *DepositFlow) Step() string      { return f.step }
func (f *DepositFlow) Amount() int64     { return f.amount }
func (f *DepositFlow) LastError() string { return f.lastError }

// EnterAmount validates the typed amount against the deposit limits and, if
// valid, advances to the confirmation step.
func (f *DepositFlow) EnterAmount(input string) error {
	if f.step != StepAmount {
		return fmt.Errorf("amount already confirmed")
	}

	amount, err := ParseAmount(input)
	if err != nil {
		f.lastError = err.Error()
		return err
	}

	limits := f.client.limits
	if amount < limits.MinDeposit {
		err := fmt.Errorf("minimum deposit is %s", FormatAmount(limits.MinDeposit))
		f.lastError = err.Error()
		return err
	}
	if amount > limits.MaxDeposit {
		err := fmt.Errorf("maximum deposit is %s", FormatAmount(limits.MaxDeposit))
		f.lastError = err.Error()
		return err
	}

	f.amount = amount
	f.lastError = ""
	f.step = StepConfirm
	return nil
}

// Confirm submits the deposit. On failure the flow stays on the confirm step
// with the amount intact.
func (f *DepositFlow) Confirm(ctx context.Context, paymentMethodID string) (entity.Transaction, error) {
	if f.step != StepConfirm {
		return entity.Transaction{}, fmt.Errorf("enter an amount first")
	}

	txn, err := f.client.deposit(ctx, f.walletID, f.amount, paymentMethodID)
	if err != nil {
		f.lastError = err.Error()
		return entity.Transaction{}, err
	}

	f.lastError = ""
	f.step = StepDone
	return txn, nil
}

// Back returns to amount entry, keeping the previously entered amount as the
// starting value.
func (f *DepositFlow) Back() {
	if f.step == StepConfirm {
		f.step = StepAmount
	}
}

// WithdrawFlow walks a withdrawal through amount entry and confirmation. The
// fee is charged out of the withdrawn amount: the wallet is debited the full
// amount and the payout is amount minus fee.
type WithdrawFlow struct {
	client   *Client
	walletID string

	step      string
	amount    int64
	lastError string
}

func (c *Client) StartWithdrawal(walletID string) *WithdrawFlow {
	return &WithdrawFlow{client: c, walletID: walletID, step: StepAmount}
}

func (f *WithdrawFlow) Step() string      { return f.step }
func (f *WithdrawFlow) Amount() int64     { return f.amount }
func (f *WithdrawFlow) LastError() string { return f.lastError }

// Fee is the withdrawal fee for the entered amount.
func (f *WithdrawFlow) Fee() int64 {
	return f.amount * f.client.limits.WithdrawFeePercent / 100
}

// NetAmount is what actually gets paid out.
func (f *WithdrawFlow) NetAmount() int64 {
	return f.amount - f.Fee()
}

func (f *WithdrawFlow) EnterAmount(input string) error {
	if f.step != StepAmount {
		return fmt.Errorf("amount already confirmed")
	}

	amount, err := ParseAmount(input)
	if err != nil {
		f.lastError = err.Error()
		return err
	}

	limits := f.client.limits
	if amount < limits.MinWithdrawal {
		err := fmt.Errorf("minimum withdrawal is %s", FormatAmount(limits.MinWithdrawal))
		f.lastError = err.Error()
		return err
	}
	if amount > limits.MaxWithdrawal {
		err := fmt.Errorf("maximum withdrawal is %s", FormatAmount(limits.MaxWithdrawal))
		f.lastError = err.Error()
		return err
	}

	wallet, ok := f.client.store.CurrentWallet()
	if ok && wallet.ID == f.walletID && amount > wallet.Balance {
		err := fmt.Errorf("insufficient balance: available %s", FormatAmount(wallet.Balance))
		f.lastError = err.Error()
		return err
	}

	used := f.client.DailyWithdrawalUsed(f.walletID)
	if used+amount > limits.DailyLimit {
		remaining := limits.DailyLimit - used
		if remaining < 0 {
			remaining = 0
		}
		err := fmt.Errorf("daily withdrawal limit reached: %s remaining today", FormatAmount(remaining))
		f.lastError = err.Error()
		return err
	}

	f.amount = amount
	f.lastError = ""
	f.step = StepConfirm
	return nil
}

func (f *WithdrawFlow) Confirm(ctx context.Context, paymentMethodID string) (entity.Transaction, error) {
	if f.step != StepConfirm {
		return entity.Transaction{}, fmt.Errorf("enter an amount first")
	}

	txn, err := f.client.withdraw(ctx, f.walletID, f.amount, paymentMethodID)
	if err != nil {
		f.lastError = err.Error()
		return entity.Transaction{}, err
	}

	f.lastError = ""
	f.step = StepDone
	return txn, nil
}

func (f *WithdrawFlow) Back() {
	if f.step == StepConfirm {
		f.step = StepAmount
	}
}
