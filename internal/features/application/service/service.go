package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/application/models"
	"coachmarket-backend/internal/features/application/repository"
	listingmodels "coachmarket-backend/internal/features/listing/models"
)

var (
	ErrApplicationNotFound = repository.ErrApplicationNotFound
	ErrAlreadyDecided      = repository.ErrAlreadyDecided
	ErrDuplicatePending    = repository.ErrDuplicatePending
	ErrNotOwner            = errors.New("not the owner of this application")
	ErrInvalidPrice        = errors.New("price must be greater than zero")
)

// ListingInvalidator lets the approval flow drop stale cached listing pages.
type ListingInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// UserInvalidator drops the cached profile of the applicant, whose
// is_employee flag flips at approval.
type UserInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

type ApplicationService interface {
	Submit(ctx context.Context, userID int64, req *models.CreateApplicationRequest) (*models.ServiceApplication, error)
	ListMine(ctx context.Context, userID int64) ([]*models.ServiceApplication, error)
	// Update lets the owner revise the pitch; any edit to a decided
	// application resets it to pending for re-review.
	Update(ctx context.Context, userID, id int64, req *models.UpdateApplicationRequest) (*models.ServiceApplication, error)
	ListPending(ctx context.Context) ([]*models.ServiceApplication, error)
	Approve(ctx context.Context, id int64) (*listingmodels.PublishedService, error)
	Reject(ctx context.Context, id int64, notes string) error
}

type applicationService struct {
	repo     repository.ApplicationRepository
	listings ListingInvalidator
	users    UserInvalidator
}

func NewApplicationService(repo repository.ApplicationRepository, listings ListingInvalidator, users UserInvalidator) ApplicationService {
	return &applicationService{repo: repo, listings: listings, users: users}
}

func (s *applicationService) Submit(ctx context.Context, userID int64, req *models.CreateApplicationRequest) (*models.ServiceApplication, error) {
	title, err := validation.SanitizeText("title", req.Title)
	if err != nil {
		return nil, err
	}
	description, err := validation.SanitizeText("description", req.Description)
	if err != nil {
		return nil, err
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidPrice
	}

	// One pending pitch per user per game. The partial unique index is the
	// race guard; this check gives the common case a clean error.
	existing, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, e := range existing {
		if e.GameID == req.GameID && e.Status == models.StatusPending {
			return nil, ErrDuplicatePending
		}
	}

	app := &models.ServiceApplication{
		UserID:      userID,
		GameID:      req.GameID,
		Title:       title,
		Description: description,
		Price:       req.Price,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) ListMine(ctx context.Context, userID int64) ([]*models.ServiceApplication, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *applicationService) Update(ctx context.Context, userID, id int64, req *models.UpdateApplicationRequest) (*models.ServiceApplication, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Title != "" {
		title, err := validation.SanitizeText("title", req.Title)
		if err != nil {
			return nil, err
		}
		app.Title = title
	}
	if req.Description != "" {
		description, err := validation.SanitizeText("description", req.Description)
		if err != nil {
			return nil, err
		}
		app.Description = description
	}
	if req.Price != nil {
		if req.Price.LessThanOrEqual(decimal.Zero) {
			return nil, ErrInvalidPrice
		}
		app.Price = *req.Price
	}

	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *applicationService) ListPending(ctx context.Context) ([]*models.ServiceApplication, error) {
	return s.repo.ListPending(ctx)
}

func (s *applicationService) Approve(ctx context.Context, id int64) (*listingmodels.PublishedService, error) {
	service, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.listings != nil {
		s.listings.InvalidateCache(ctx)
	}
	// Approval flipped the applicant's is_employee flag.
	if s.users != nil {
		if err := s.users.Invalidate(ctx, service.UserID); err != nil {
			logger.Warn().Err(err).Int64("user_id", service.UserID).
				Msg("user cache invalidate failed")
		}
	}
	return service, nil
}

func (s *applicationService) Reject(ctx context.Context, id int64, notes string) error {
	return s.repo.Reject(ctx, id, validation.Sanitize(notes))
}
