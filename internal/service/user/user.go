package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pomokan/pomokan/internal/apperrors"
	"github.com/pomokan/pomokan/internal/models"
	"github.com/pomokan/pomokan/internal/repository"
	"github.com/pomokan/pomokan/internal/service/auth"
)

type Service struct {
	hasher   auth.PasswordHasher
	userRepo repository.UserRepo
}

func NewService(hasher auth.PasswordHasher, userRepo repository.UserRepo) *Service {
	if hasher == nil {
		hasher = auth.DefaultHasher
	}

	return &Service{
		hasher:   hasher,
		userRepo: userRepo,
	}
}

func (s *Service) GetByID(ctx context.Context, userID uuid.UUID) (models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// ChangePassword verifies the current password and replaces the hash
// Returns apperrors.ErrInvalidPassword when the current password is wrong
// and apperrors.ErrPasswordMismatch when confirmation doesn't match
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword, confirmPassword string) error {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, currentPassword); err != nil {
		return apperrors.ErrInvalidPassword
	}

	if newPassword != confirmPassword {
		return apperrors.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, hash)
}
