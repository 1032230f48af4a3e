package repository

import (
	"context"
	"time"

	"recyclex/internal/domain/entity"
	"recyclex/pkg/utils"
)

type EscrowRepository interface {
	CreateEscrow(ctx context.Context, escrow *entity.EscrowTransaction) error
	GetEscrowByID(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error)
	GetEscrowsByUserID(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.EscrowTransaction, error)
	UpdateEscrow(ctx context.Context, escrow *entity.EscrowTransaction) error

	// GetHeldEscrowsExpiringBefore returns held escrows whose hold deadline
	// is at or before the given instant. Used by the expiry sweep.
	GetHeldEscrowsExpiringBefore(ctx context.Context, deadline time.Time) ([]entity.EscrowTransaction, error)

	CreateDispute(ctx context.Context, dispute *entity.Dispute) error
	GetDisputeByID(ctx context.Context, disputeID string) (*entity.Dispute, error)
	UpdateDispute(ctx context.Context, dispute *entity.Dispute) error
}
