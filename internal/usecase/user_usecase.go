package usecase

import (
	"context"

	"recyclex/internal/domain/entity"
	"recyclex/internal/domain/repository"
	"recyclex/internal/infrastructure/firebase"
	"recyclex/pkg/errors"
	"recyclex/pkg/logger"
	"recyclex/pkg/utils"
)

type UserUseCase struct {
	userRepo   repository.UserRepository
	authClient *firebase.AuthClient
}

func NewUserUseCase(userRepo repository.UserRepository, authClient *firebase.AuthClient) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type RegisterProfileInput struct {
	UserID   string
	Email    string
	Name     string
	Phone    string
	Role     string
	Language string
	Address  string
	District string
}

// RegisterProfile creates the marketplace profile for an authenticated
// identity and stamps the role claim on the auth record. Admin is never
// self-assignable.
func (uc *UserUseCase) RegisterProfile(ctx context.Context, input RegisterProfileInput) (*entity.User, error) {
	if !entity.ValidRole(input.Role) || input.Role == entity.RoleAdmin {
		return nil, errors.BadRequest("Role must be buyer, supplier or agent", nil)
	}

	if existing, err := uc.userRepo.GetUserByID(ctx, input.UserID); err == nil && existing != nil {
		return nil, errors.Conflict("Profile already exists")
	}

	user := &entity.User{
		ID:       input.UserID,
		Email:    input.Email,
		Name:     input.Name,
		Phone:    input.Phone,
		Role:     input.Role,
		Language: input.Language,
		Address:  input.Address,
		District: input.District,
	}

	if err := uc.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.authClient.SetRoleClaim(ctx, user.ID, user.Role); err != nil {
		logger.Error("Failed to set role claim for %s: %v", user.ID, err)
		return nil, errors.Internal("Failed to assign role", err)
	}

	logger.Info("Profile registered: %s as %s", user.ID, user.Role)
	return user, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	return uc.userRepo.GetUserByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name     string
	Phone    string
	Language string
	Address  string
	District string
	Avatar   string
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != user.Name {
		user.Name = input.Name
		if err := uc.authClient.UpdateDisplayName(ctx, userID, input.Name); err != nil {
			logger.Warn("Failed to sync display name for %s: %v", userID, err)
		}
	}
	if input.Phone != "" {
		user.Phone = input.Phone
	}
	if input.Language != "" {
		user.Language = input.Language
	}
	if input.Address != "" {
		user.Address = input.Address
	}
	if input.District != "" {
		user.District = input.District
	}
	if input.Avatar != "" {
		user.AvatarURL = input.Avatar
	}

	if err := uc.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// AssignRole is the operator path for promoting or demoting users. It keeps
// the profile and the auth claim in step.
func (uc *UserUseCase) AssignRole(ctx context.Context, userID, role string) (*entity.User, error) {
	if !entity.ValidRole(role) {
		return nil, errors.BadRequest("Unknown role", nil)
	}

	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Role = role
	if err := uc.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	if err := uc.authClient.SetRoleClaim(ctx, userID, role); err != nil {
		logger.Error("Failed to set role claim for %s: %v", userID, err)
		return nil, errors.Internal("Failed to assign role", err)
	}

	logger.Info("Role assigned: %s -> %s", userID, role)
	return user, nil
}

func (uc *UserUseCase) ListByRole(ctx context.Context, role string, pagination *utils.Pagination) ([]entity.User, error) {
	if !entity.ValidRole(role) {
		return nil, errors.BadRequest("Unknown role", nil)
	}
	return uc.userRepo.GetUsersByRole(ctx, role, pagination)
}
