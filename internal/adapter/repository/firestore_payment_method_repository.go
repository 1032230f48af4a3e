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
)

type firestorePaymentMethodRepository struct {
	client *firestore.Client
}

func NewFirestorePaymentMethodRepository(client *firestore.Client) repository.PaymentMethodRepository {
	return &firestorePaymentMethodRepository{
		client: client,
	}
}

func (r *firestorePaymentMethodRepository) CreatePaymentMethod(ctx context.Context, paymentMethod *entity.PaymentMethod) error {
	if paymentMethod.ID == "" {
		paymentMethod.ID = uuid.New().String()
	}

	now := time.Now()
	paymentMethod.CreatedAt = now
	paymentMethod.UpdatedAt = now

	_, err := r.client.Collection("payment_methods").Doc(paymentMethod.ID).Set(ctx, paymentMethod)
	if err != nil {
		return errors.Internal("Failed to create payment method", err)
	}

	return nil
}

func (r *firestorePaymentMethodRepository) GetPaymentMethodByID(ctx context.Context, paymentMethodID string) (*entity.PaymentMethod, error) {
	doc, err := r.client.Collection("payment_methods").Doc(paymentMethodID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Payment method", err)
		}
		return nil, errors.Internal("Failed to get payment method", err)
	}

	var paymentMethod entity.PaymentMethod
	if err := doc.DataTo(&paymentMethod); err != nil {
		return nil, errors.Internal("Failed to parse payment method data", err)
	}

	return &paymentMethod, nil
}

func (r *firestorePaymentMethodRepository) GetPaymentMethodsByUserID(ctx context.Context, userID string) ([]entity.PaymentMethod, error) {
	iter := r.client.Collection("payment_methods").Where("userId", "==", userID).Documents(ctx)
	defer iter.Stop()

	var methods []entity.PaymentMethod
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate payment methods", err)
		}

		var method entity.PaymentMethod
		if err := doc.DataTo(&method); err != nil {
			log.Printf("Error converting payment method document: %v", err)
			continue
		}

		methods = append(methods, method)
	}

	if methods == nil {
		methods = []entity.PaymentMethod{}
	}

	return methods, nil
}

func (r *firestorePaymentMethodRepository) UpdatePaymentMethod(ctx context.Context, paymentMethod *entity.PaymentMethod) error {
	paymentMethod.UpdatedAt = time.Now()
	_, err := r.client.Collection("payment_methods").Doc(paymentMethod.ID).Set(ctx, paymentMethod)
	if err != nil {
		return errors.Internal("Failed to update payment method", err)
	}
	return nil
}

func (r *firestorePaymentMethodRepository) DeletePaymentMethod(ctx context.Context, paymentMethodID string) error {
	_, err := r.client.Collection("payment_methods").Doc(paymentMethodID).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to delete payment method", err)
	}
	return nil
}

func (r *firestorePaymentMethodRepository) SetDefaultPaymentMethod(ctx context.Context, userID string, paymentMethodID string) error {
	methods, err := r.GetPaymentMethodsByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for i := range methods {
		isDefault := methods[i].ID == paymentMethodID
		if methods[i].IsDefault == isDefault {
			continue
		}
		methods[i].IsDefault = isDefault
		if err := r.UpdatePaymentMethod(ctx, &methods[i]); err != nil {
			return err
		}
	}

	return nil
}
