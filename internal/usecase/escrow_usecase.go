package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/pkg/errors"
	"recyclex/pkg/logger"
	"recyclex/pkg/utils"
)

// DefaultReleaseConditions are attached when an escrow is created without an
// explicit condition list.
var DefaultReleaseConditions = []string{
	"Material delivery confirmed",
	"Quality inspection passed",
}

const defaultHoldDuration = 7 * 24 * time.Hour

type EscrowUseCase struct {
	escrowRepo repository.EscrowRepository
	walletRepo repository.WalletRepository
}

func NewEscrowUseCase(escrowRepo repository.EscrowRepository, walletRepo repository.WalletRepository) *EscrowUseCase {
	return &EscrowUseCase{
		escrowRepo: escrowRepo,
		walletRepo: walletRepo,
	}
}

type CreateEscrowInput struct {
	AuctionID         string
	BuyerID           string
	SupplierID        string
	Amount            int64
	Currency          string
	ReleaseConditions []string
	HoldDuration      time.Duration
}

func (uc *EscrowUseCase) CreateEscrow(ctx context.Context, input CreateEscrowInput) (*entity.EscrowTransaction, error) {
	if input.Amount <= 0 {
		return nil, errors.BadRequest("Escrow amount must be positive", nil)
	}

	conditions := input.ReleaseConditions
	if len(conditions) == 0 {
		conditions = append([]string(nil), DefaultReleaseConditions...)
	}

	currency := input.Currency
	if currency == "" {
		currency = "LKR"
	}

	escrow := &entity.EscrowTransaction{
		ID:                uuid.New().String(),
		AuctionID:         input.AuctionID,
		BuyerID:           input.BuyerID,
		SupplierID:        input.SupplierID,
		Amount:            input.Amount,
		Currency:          currency,
		Status:            entity.EscrowStatusCreated,
		ReleaseConditions: conditions,
	}

	if err := uc.escrowRepo.CreateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow created: %s (auction %s, amount %d)", escrow.ID, escrow.AuctionID, escrow.Amount)
	return escrow, nil
}

func (uc *EscrowUseCase) GetEscrow(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error) {
	return uc.escrowRepo.GetEscrowByID(ctx, escrowID)
}

func (uc *EscrowUseCase) GetEscrowsByUser(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.EscrowTransaction, error) {
	return uc.escrowRepo.GetEscrowsByUserID(ctx, userID, pagination)
}

// Fund moves a created escrow to funded: the buyer's wallet is debited and
// the amount sits in the escrow wallet.
func (uc *EscrowUseCase) Fund(ctx context.Context, escrowID, buyerID string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.BuyerID != buyerID {
		return nil, errors.Forbidden("Only the buyer can fund the escrow", nil)
	}
	if err := uc.transition(escrow, entity.EscrowStatusFunded); err != nil {
		return nil, err
	}

	buyerWallets, err := uc.walletRepo.GetWalletsByUserID(ctx, buyerID)
	if err != nil || len(buyerWallets) == 0 {
		return nil, errors.NotFound("Buyer wallet", err)
	}

	_, err = uc.walletRepo.ApplyTransaction(ctx, &entity.Transaction{
		WalletID:    buyerWallets[0].ID,
		Type:        entity.TransactionTypeEscrowHold,
		Amount:      escrow.Amount,
		Currency:    escrow.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: "Escrow funding",
		Reference:   escrow.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.creditEscrowWallet(ctx, escrow, entity.TransactionTypeEscrowRelease, "Escrow funds received"); err != nil {
		logger.Warn("escrow wallet credit failed for %s: %v", escrow.ID, err)
	}

	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow funded: %s", escrow.ID)
	return escrow, nil
}

// Hold moves a funded escrow to held and starts the hold clock. The deadline
// exists only while the escrow is held.
func (uc *EscrowUseCase) Hold(ctx context.Context, escrowID string, holdDuration time.Duration) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if err := uc.transition(escrow, entity.EscrowStatusHeld); err != nil {
		return nil, err
	}

	if holdDuration <= 0 {
		holdDuration = defaultHoldDuration
	}
	expires := time.Now().Add(holdDuration)
	escrow.HoldExpiresAt = &expires

	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow held: %s until %s", escrow.ID, expires.Format(time.RFC3339))
	return escrow, nil
}

// SatisfyCondition records that one release condition has been confirmed.
// Only a held escrow accumulates satisfactions.
func (uc *EscrowUseCase) SatisfyCondition(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.Status != entity.EscrowStatusHeld {
		return nil, errors.BadRequest("Conditions can only be satisfied while funds are held", nil)
	}
	if escrow.SatisfiedCount >= len(escrow.ReleaseConditions) {
		return escrow, nil
	}

	escrow.SatisfiedCount++
	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow %s: %d/%d conditions satisfied", escrow.ID, escrow.SatisfiedCount, len(escrow.ReleaseConditions))
	return escrow, nil
}

// Release pays the supplier. From held it requires every release condition
// satisfied; from disputed it is an arbitration outcome and skips the check.
func (uc *EscrowUseCase) Release(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.Status == entity.EscrowStatusHeld && !escrow.AllConditionsSatisfied() {
		return nil, errors.BadRequest("All release conditions must be satisfied", nil)
	}
	if err := uc.transition(escrow, entity.EscrowStatusReleased); err != nil {
		return nil, err
	}
	escrow.HoldExpiresAt = nil

	supplierWallets, err := uc.walletRepo.GetWalletsByUserID(ctx, escrow.SupplierID)
	if err != nil || len(supplierWallets) == 0 {
		return nil, errors.NotFound("Supplier wallet", err)
	}

	_, err = uc.walletRepo.ApplyTransaction(ctx, &entity.Transaction{
		WalletID:    supplierWallets[0].ID,
		Type:        entity.TransactionTypeEscrowRelease,
		Amount:      escrow.Amount,
		Currency:    escrow.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: "Escrow released",
		Reference:   escrow.ID,
	})
	if err != nil {
		return nil, err
	}

	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow released: %s -> supplier %s", escrow.ID, escrow.SupplierID)
	return escrow, nil
}

// Dispute freezes a held escrow. Only possible before the hold deadline.
func (uc *EscrowUseCase) Dispute(ctx context.Context, escrowID, userID, reason string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if userID != escrow.BuyerID && userID != escrow.SupplierID {
		return nil, errors.Forbidden("Only a party to the escrow can raise a dispute", nil)
	}
	if escrow.HoldExpiresAt != nil && time.Now().After(*escrow.HoldExpiresAt) {
		return nil, errors.BadRequest("Hold period has expired; dispute is no longer possible", nil)
	}
	if err := uc.transition(escrow, entity.EscrowStatusDisputed); err != nil {
		return nil, err
	}

	role := entity.RoleBuyer
	if userID == escrow.SupplierID {
		role = entity.RoleSupplier
	}
	dispute := &entity.Dispute{
		ID:         uuid.New().String(),
		EscrowID:   escrow.ID,
		RaisedBy:   userID,
		RaisedRole: role,
		Reason:     reason,
		Status:     entity.DisputeStatusOpen,
	}
	if err := uc.escrowRepo.CreateDispute(ctx, dispute); err != nil {
		return nil, err
	}

	escrow.DisputeID = dispute.ID
	escrow.HoldExpiresAt = nil

	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Warn("Escrow disputed: %s by %s (%s)", escrow.ID, userID, reason)
	return escrow, nil
}

func (uc *EscrowUseCase) GetDispute(ctx context.Context, disputeID string) (*entity.Dispute, error) {
	return uc.escrowRepo.GetDisputeByID(ctx, disputeID)
}

// ResolveDispute is the arbitration decision: "release" pays the supplier,
// "refund" returns the funds to the buyer.
func (uc *EscrowUseCase) ResolveDispute(ctx context.Context, escrowID, adminID, resolution string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if escrow.Status != entity.EscrowStatusDisputed {
		return nil, errors.BadRequest("Escrow is not disputed", nil)
	}

	var resolved *entity.EscrowTransaction
	switch resolution {
	case "release":
		resolved, err = uc.Release(ctx, escrowID)
	case "refund":
		resolved, err = uc.Refund(ctx, escrowID)
	default:
		return nil, errors.BadRequest("Resolution must be release or refund", nil)
	}
	if err != nil {
		return nil, err
	}

	if escrow.DisputeID != "" {
		if dispute, derr := uc.escrowRepo.GetDisputeByID(ctx, escrow.DisputeID); derr == nil {
			now := time.Now()
			dispute.Status = entity.DisputeStatusResolved
			dispute.Resolution = resolution
			dispute.ResolvedBy = adminID
			dispute.ResolvedAt = &now
			if uerr := uc.escrowRepo.UpdateDispute(ctx, dispute); uerr != nil {
				logger.Warn("Failed to close dispute %s: %v", dispute.ID, uerr)
			}
		}
	}

	return resolved, nil
}

// Refund returns held or disputed funds to the buyer.
func (uc *EscrowUseCase) Refund(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error) {
	escrow, err := uc.escrowRepo.GetEscrowByID(ctx, escrowID)
	if err != nil {
		return nil, err
	}
	if err := uc.transition(escrow, entity.EscrowStatusRefunded); err != nil {
		return nil, err
	}
	escrow.HoldExpiresAt = nil

	if err := uc.refundBuyer(ctx, escrow); err != nil {
		return nil, err
	}

	if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
		return nil, err
	}

	logger.Info("Escrow refunded: %s -> buyer %s", escrow.ID, escrow.BuyerID)
	return escrow, nil
}

// ExpireOverdue sweeps held escrows past their deadline: each one expires and
// the buyer gets the funds back.
func (uc *EscrowUseCase) ExpireOverdue(ctx context.Context) (int, error) {
	overdue, err := uc.escrowRepo.GetHeldEscrowsExpiringBefore(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for i := range overdue {
		escrow := &overdue[i]
		if err := uc.transition(escrow, entity.EscrowStatusExpired); err != nil {
			continue
		}
		escrow.HoldExpiresAt = nil

		if err := uc.refundBuyer(ctx, escrow); err != nil {
			logger.Error("Failed to refund expired escrow %s: %v", escrow.ID, err)
			continue
		}
		if err := uc.escrowRepo.UpdateEscrow(ctx, escrow); err != nil {
			logger.Error("Failed to persist expired escrow %s: %v", escrow.ID, err)
			continue
		}

		logger.Info("Escrow expired: %s", escrow.ID)
		expired++
	}

	return expired, nil
}

// StartExpirySweep runs ExpireOverdue on a ticker until the context ends.
func (uc *EscrowUseCase) StartExpirySweep(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n, err := uc.ExpireOverdue(ctx); err != nil {
					logger.Error("Escrow expiry sweep failed: %v", err)
				} else if n > 0 {
					logger.Info("Escrow expiry sweep: %d expired", n)
				}
			}
		}
	}()
}

func (uc *EscrowUseCase) transition(escrow *entity.EscrowTransaction, to string) error {
	if !entity.EscrowTransitionAllowed(escrow.Status, to) {
		return errors.InvalidTransition(escrow.Status, to)
	}
	escrow.Status = to
	return nil
}

func (uc *EscrowUseCase) refundBuyer(ctx context.Context, escrow *entity.EscrowTransaction) error {
	buyerWallets, err := uc.walletRepo.GetWalletsByUserID(ctx, escrow.BuyerID)
	if err != nil || len(buyerWallets) == 0 {
		return errors.NotFound("Buyer wallet", err)
	}

	_, err = uc.walletRepo.ApplyTransaction(ctx, &entity.Transaction{
		WalletID:    buyerWallets[0].ID,
		Type:        entity.TransactionTypeRefund,
		Amount:      escrow.Amount,
		Currency:    escrow.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: "Escrow refund",
		Reference:   escrow.ID,
	})
	return err
}

func (uc *EscrowUseCase) creditEscrowWallet(ctx context.Context, escrow *entity.EscrowTransaction, txnType, description string) error {
	escrowWallet, err := uc.walletRepo.GetWalletByType(ctx, entity.WalletTypeEscrow)
	if err != nil {
		return err
	}

	_, err = uc.walletRepo.ApplyTransaction(ctx, &entity.Transaction{
		WalletID:    escrowWallet.ID,
		Type:        txnType,
		Amount:      escrow.Amount,
		Currency:    escrow.Currency,
		Status:      entity.TransactionStatusCompleted,
		Description: description,
		Reference:   escrow.ID,
	})
	return err
}
