package repository

import (
	"context"

	"recyclex/internal/domain/entity"
	"recyclex/pkg/utils"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *entity.User) error
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateUser(ctx context.Context, user *entity.User) error
	GetUsersByRole(ctx context.Context, role string, pagination *utils.Pagination) ([]entity.User, error)
}
