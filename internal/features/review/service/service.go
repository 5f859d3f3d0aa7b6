package service

import (
	"context"
	"errors"
	"strings"

	"coachmarket-backend/internal/common/validation"
	requestmodels "coachmarket-backend/internal/features/request/models"
	requestrepo "coachmarket-backend/internal/features/request/repository"
	"coachmarket-backend/internal/features/review/models"
	"coachmarket-backend/internal/features/review/repository"
)

var (
	ErrAlreadyExists = repository.ErrAlreadyExists

	ErrNotRequester     = errors.New("only the requester may review")
	ErrRequestNotClosed = errors.New("only closed requests can be reviewed")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

type ReviewService interface {
	// Create accepts a review from the requester of a closed request.
	Create(ctx context.Context, reviewerID int64, req *models.CreateReviewRequest) (*models.Review, error)
	ListByCoach(ctx context.Context, coachID int64) ([]*models.Review, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	requests requestrepo.RequestRepository
}

func NewReviewService(repo repository.ReviewRepository, requests requestrepo.RequestRepository) ReviewService {
	return &reviewService{repo: repo, requests: requests}
}

func (s *reviewService) Create(ctx context.Context, reviewerID int64, req *models.CreateReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	var comment string
	if strings.TrimSpace(req.Comment) != "" {
		var err error
		comment, err = validation.SanitizeText("comment", req.Comment)
		if err != nil {
			return nil, err
		}
	}

	request, err := s.requests.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != reviewerID {
		return nil, ErrNotRequester
	}
	if request.Status != requestmodels.StatusClosed {
		return nil, ErrRequestNotClosed
	}

	review := &models.Review{
		RequestID:  request.ID,
		CoachID:    request.EmployeeID,
		ReviewerID: reviewerID,
		Rating:     req.Rating,
		Comment:    comment,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByCoach(ctx context.Context, coachID int64) ([]*models.Review, error) {
	return s.repo.ListByCoach(ctx, coachID)
}
