package service

import (
	"context"
	"errors"

	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/listing/models"
	"coachmarket-backend/internal/features/listing/repository"
)

var (
	ErrServiceNotFound = repository.ErrServiceNotFound
	ErrCoachNotFound   = repository.ErrCoachNotFound
	ErrNotOwner        = errors.New("not the owner of this profile")
)

// Cache fronts the public service listing.
type Cache interface {
	Get(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error)
	Set(ctx context.Context, filter models.ServiceFilter, services []*models.PublishedService) error
	InvalidateAll(ctx context.Context) error
}

type ListingService interface {
	ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error)
	GetService(ctx context.Context, id int64) (*models.PublishedService, error)
	SetServiceActive(ctx context.Context, id int64, active bool) error
	ListCoaches(ctx context.Context) ([]*models.Coach, error)
	GetCoach(ctx context.Context, userID int64) (*models.Coach, error)
	AddSpecialization(ctx context.Context, actorID, coachID int64, req *models.AddSpecializationRequest) error
	// InvalidateCache is called by the application workflow after publishing
	// a new listing.
	InvalidateCache(ctx context.Context)
}

type listingService struct {
	repo  repository.ListingRepository
	cache Cache
}

func NewListingService(repo repository.ListingRepository, cache Cache) ListingService {
	return &listingService{repo: repo, cache: cache}
}

func (s *listingService) ListServices(ctx context.Context, filter models.ServiceFilter) ([]*models.PublishedService, error) {
	if s.cache != nil {
		if services, err := s.cache.Get(ctx, filter); err == nil {
			return services, nil
		}
	}

	services, err := s.repo.ListServices(ctx, filter)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, filter, services); err != nil {
			logger.Warn().Err(err).Msg("listing cache set failed")
		}
	}
	return services, nil
}

func (s *listingService) GetService(ctx context.Context, id int64) (*models.PublishedService, error) {
	return s.repo.GetServiceByID(ctx, id)
}

func (s *listingService) SetServiceActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetServiceActive(ctx, id, active); err != nil {
		return err
	}
	s.InvalidateCache(ctx)
	return nil
}

func (s *listingService) ListCoaches(ctx context.Context) ([]*models.Coach, error) {
	return s.repo.ListCoaches(ctx)
}

func (s *listingService) GetCoach(ctx context.Context, userID int64) (*models.Coach, error) {
	return s.repo.GetCoach(ctx, userID)
}

func (s *listingService) AddSpecialization(ctx context.Context, actorID, coachID int64, req *models.AddSpecializationRequest) error {
	if actorID != coachID {
		return ErrNotOwner
	}
	if _, err := s.repo.GetCoach(ctx, coachID); err != nil {
		return err
	}

	name, err := validation.SanitizeText("name", req.Name)
	if err != nil {
		return err
	}
	return s.repo.AddSpecialization(ctx, coachID, name)
}

func (s *listingService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("listing cache invalidate failed")
	}
}
