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

type firestoreEscrowRepository struct {
	client *firestore.Client
}

func NewFirestoreEscrowRepository(client *firestore.Client) repository.EscrowRepository {
	return &firestoreEscrowRepository{
		client: client,
	}
}

func (r *firestoreEscrowRepository) CreateEscrow(ctx context.Context, escrow *entity.EscrowTransaction) error {
	if escrow.ID == "" {
		escrow.ID = uuid.New().String()
	}

	now := time.Now()
	escrow.CreatedAt = now
	escrow.UpdatedAt = now

	_, err := r.client.Collection("escrow_transactions").Doc(escrow.ID).Set(ctx, escrow)
	if err != nil {
		return errors.Internal("Failed to create escrow transaction", err)
	}

	return nil
}

func (r *firestoreEscrowRepository) GetEscrowByID(ctx context.Context, escrowID string) (*entity.EscrowTransaction, error) {
	doc, err := r.client.Collection("escrow_transactions").Doc(escrowID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Escrow transaction", err)
		}
		return nil, errors.Internal("Failed to get escrow transaction", err)
	}

	var escrow entity.EscrowTransaction
	if err := doc.DataTo(&escrow); err != nil {
		return nil, errors.Internal("Failed to parse escrow data", err)
	}

	return &escrow, nil
}

func (r *firestoreEscrowRepository) GetEscrowsByUserID(ctx context.Context, userID string, pagination *utils.Pagination) ([]entity.EscrowTransaction, error) {
	// A user sees escrows where they are either side of the deal. Two simple
	// queries instead of one OR query keeps us off composite indexes.
	buyerSide, err := r.queryEscrows(ctx, "buyerId", userID)
	if err != nil {
		return nil, err
	}
	supplierSide, err := r.queryEscrows(ctx, "supplierId", userID)
	if err != nil {
		return nil, err
	}

	escrows := append(buyerSide, supplierSide...)

	start := pagination.Offset()
	if start > len(escrows) {
		return []entity.EscrowTransaction{}, nil
	}
	end := start + pagination.Limit
	if end > len(escrows) {
		end = len(escrows)
	}

	return escrows[start:end], nil
}

func (r *firestoreEscrowRepository) queryEscrows(ctx context.Context, field, value string) ([]entity.EscrowTransaction, error) {
	iter := r.client.Collection("escrow_transactions").Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	var escrows []entity.EscrowTransaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate escrow transactions", err)
		}

		var escrow entity.EscrowTransaction
		if err := doc.DataTo(&escrow); err != nil {
			log.Printf("Error converting escrow document: %v", err)
			continue
		}

		escrows = append(escrows, escrow)
	}

	return escrows, nil
}

func (r *firestoreEscrowRepository) UpdateEscrow(ctx context.Context, escrow *entity.EscrowTransaction) error {
	escrow.UpdatedAt = time.Now()
	_, err := r.client.Collection("escrow_transactions").Doc(escrow.ID).Set(ctx, escrow)
	if err != nil {
		return errors.Internal("Failed to update escrow transaction", err)
	}
	return nil
}

func (r *firestoreEscrowRepository) CreateDispute(ctx context.Context, dispute *entity.Dispute) error {
	if dispute.ID == "" {
		dispute.ID = uuid.New().String()
	}
	dispute.CreatedAt = time.Now()

	_, err := r.client.Collection("disputes").Doc(dispute.ID).Set(ctx, dispute)
	if err != nil {
		return errors.Internal("Failed to create dispute", err)
	}

	return nil
}

func (r *firestoreEscrowRepository) GetDisputeByID(ctx context.Context, disputeID string) (*entity.Dispute, error) {
	doc, err := r.client.Collection("disputes").Doc(disputeID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Dispute", err)
		}
		return nil, errors.Internal("Failed to get dispute", err)
	}

	var dispute entity.Dispute
	if err := doc.DataTo(&dispute); err != nil {
		return nil, errors.Internal("Failed to parse dispute data", err)
	}

	return &dispute, nil
}

func (r *firestoreEscrowRepository) UpdateDispute(ctx context.Context, dispute *entity.Dispute) error {
	_, err := r.client.Collection("disputes").Doc(dispute.ID).Set(ctx, dispute)
	if err != nil {
		return errors.Internal("Failed to update dispute", err)
	}
	return nil
}

func (r *firestoreEscrowRepository) GetHeldEscrowsExpiringBefore(ctx context.Context, deadline time.Time) ([]entity.EscrowTransaction, error) {
	iter := r.client.Collection("escrow_transactions").
		Where("status", "==", entity.EscrowStatusHeld).
		Where("holdExpiresAt", "<=", deadline).
		Documents(ctx)
	defer iter.Stop()

	var escrows []entity.EscrowTransaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate expiring escrows", err)
		}

		var escrow entity.EscrowTransaction
		if err := doc.DataTo(&escrow); err != nil {
			log.Printf("Error converting escrow document: %v", err)
			continue
		}

		escrows = append(escrows, escrow)
	}

	return escrows, nil
}
