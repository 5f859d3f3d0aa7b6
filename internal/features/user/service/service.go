package service

import (
	"context"
	"errors"

	apperrors "coachmarket-backend/internal/common/errors"
	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/user/models"
	"coachmarket-backend/internal/features/user/repository"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidStatus = errors.New("invalid account status")
)

// Cache is the read-through cache in front of the user store. It is
// best-effort: cache failures never fail the request.
type Cache interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Set(ctx context.Context, u *models.User) error
	Invalidate(ctx context.Context, id int64) error
}

type UserService interface {
	GetUser(ctx context.Context, id int64) (*models.UserResponse, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.UserResponse, error)
	UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.UserResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	Unblock(ctx context.Context, id int64) error
}

type userService struct {
	repo  repository.UserRepository
	cache Cache
}

func NewUserService(repo repository.UserRepository, cache Cache) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.UserResponse, error) {
	if s.cache != nil {
		if user, err := s.cache.GetByID(ctx, id); err == nil {
			return toUserResponse(user), nil
		}
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(ErrUserNotFound, apperrors.ErrCodeNotFound, "user not found")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, user); err != nil {
			logger.Warn().Err(err).Int64("user_id", id).Msg("user cache set failed")
		}
	}

	return toUserResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]*models.UserResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]*models.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id int64, req *models.UpdateProfileRequest) (*models.UserResponse, error) {
	fullName, err := validation.SanitizeText("full_name", req.FullName)
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProfile(ctx, id, fullName); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(ErrUserNotFound, apperrors.ErrCodeNotFound, "user not found")
	}
	return toUserResponse(user), nil
}

func (s *userService) UpdateStatus(ctx context.Context, id int64, status string) error {
	switch status {
	case models.StatusActive, models.StatusSuspended, models.StatusBanned, models.StatusBlocked:
	default:
		return apperrors.Wrap(ErrInvalidStatus, apperrors.ErrCodeValidation, "invalid account status")
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *userService) Unblock(ctx context.Context, id int64) error {
	if err := s.repo.Unblock(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *userService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Warn().Err(err).Int64("user_id", id).Msg("user cache invalidate failed")
	}
}

func toUserResponse(u *models.User) *models.UserResponse {
	return &models.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		IsEmployee:    u.IsEmployee,
		AccountStatus: u.AccountStatus,
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt,
	}
}
