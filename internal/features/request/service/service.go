package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coachmarket-backend/internal/common/logger"
	"coachmarket-backend/internal/common/validation"
	listingrepo "coachmarket-backend/internal/features/listing/repository"
	notifmodels "coachmarket-backend/internal/features/notification/models"
	notifservice "coachmarket-backend/internal/features/notification/service"
	"coachmarket-backend/internal/features/request/models"
	"coachmarket-backend/internal/features/request/repository"
)

var (
	ErrRequestNotFound    = repository.ErrRequestNotFound
	ErrCompletionNotFound = repository.ErrCompletionNotFound
	ErrIllegalTransition  = repository.ErrIllegalTransition
	ErrNotParticipant     = repository.ErrNotParticipant

	ErrServiceInactive = errors.New("service is not available for requests")
	ErrOwnService      = errors.New("cannot request your own service")
)

// UserInvalidator drops the cached profile of a user whose wallet changed
// outside the user feature.
type UserInvalidator interface {
	Invalidate(ctx context.Context, userID int64) error
}

type RequestService interface {
	Create(ctx context.Context, requesterID int64, req *models.CreateRequestRequest) (*models.ServiceRequest, error)
	Get(ctx context.Context, actorID, id int64) (*models.ServiceRequest, error)
	ListMine(ctx context.Context, userID int64) ([]*models.ServiceRequest, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.ServiceRequest, error)

	Accept(ctx context.Context, employeeID, id int64) (*models.ServiceRequest, error)
	Confirm(ctx context.Context, requesterID, id int64) (*models.ServiceRequest, error)
	Cancel(ctx context.Context, actorID, id int64) (*models.ServiceRequest, error)
	Reject(ctx context.Context, employeeID, id int64) (*models.ServiceRequest, error)
	Complete(ctx context.Context, employeeID, id int64, notes string) (*models.ServiceRequest, error)

	ApproveCompletion(ctx context.Context, id int64, notes string) (*models.CloseResult, error)
	ReopenCompletion(ctx context.Context, id int64, notes string) (*models.ServiceRequest, error)
	ListPendingCompletions(ctx context.Context) ([]*models.ServiceCompletion, error)
}

type requestService struct {
	repo          repository.RequestRepository
	listings      listingrepo.ListingRepository
	notifications notifservice.NotificationService
	users         UserInvalidator
}

func NewRequestService(
	repo repository.RequestRepository,
	listings listingrepo.ListingRepository,
	notifications notifservice.NotificationService,
	users UserInvalidator,
) RequestService {
	return &requestService{
		repo:          repo,
		listings:      listings,
		notifications: notifications,
		users:         users,
	}
}

func (s *requestService) Create(ctx context.Context, requesterID int64, req *models.CreateRequestRequest) (*models.ServiceRequest, error) {
	var details string
	if strings.TrimSpace(req.ServiceDetails) != "" {
		var err error
		details, err = validation.SanitizeText("service_details", req.ServiceDetails)
		if err != nil {
			return nil, err
		}
	}

	listing, err := s.listings.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if !listing.IsActive {
		return nil, ErrServiceInactive
	}
	if listing.UserID == requesterID {
		return nil, ErrOwnService
	}

	request := &models.ServiceRequest{
		ServiceID:      listing.ID,
		RequesterID:    requesterID,
		EmployeeID:     listing.UserID,
		Amount:         listing.Price, // frozen here; later price edits don't apply
		ServiceDetails: details,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.notifications.Notify(ctx, request.EmployeeID, notifmodels.TypeNewRequest,
		"New service request",
		fmt.Sprintf("You have a new request for %q.", listing.Title))
	return request, nil
}

func (s *requestService) Get(ctx context.Context, actorID, id int64) (*models.ServiceRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != actorID && request.EmployeeID != actorID {
		return nil, ErrNotParticipant
	}
	return request, nil
}

func (s *requestService) ListMine(ctx context.Context, userID int64) ([]*models.ServiceRequest, error) {
	return s.repo.ListByParticipant(ctx, userID)
}

func (s *requestService) ListAll(ctx context.Context, limit, offset int) ([]*models.ServiceRequest, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *requestService) Accept(ctx context.Context, employeeID, id int64) (*models.ServiceRequest, error) {
	request, err := s.repo.Accept(ctx, id, employeeID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, request.RequesterID, notifmodels.TypeRequestAccepted,
		"Request accepted",
		"The coach accepted your request. Confirm it to start the work.")
	return request, nil
}

func (s *requestService) Confirm(ctx context.Context, requesterID, id int64) (*models.ServiceRequest, error) {
	request, err := s.repo.Confirm(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, request.EmployeeID, notifmodels.TypeRequestConfirmed,
		"Request confirmed",
		"The requester confirmed. The chat is now open.")
	return request, nil
}

func (s *requestService) Cancel(ctx context.Context, actorID, id int64) (*models.ServiceRequest, error) {
	request, err := s.repo.Cancel(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	counterparty := request.RequesterID
	if actorID == request.RequesterID {
		counterparty = request.EmployeeID
	}
	s.notifications.Notify(ctx, counterparty, notifmodels.TypeRequestCancelled,
		"Request cancelled",
		fmt.Sprintf("Request #%d was cancelled.", request.ID))
	return request, nil
}

// Reject is the coach declining a request. There is no separate rejected
// state; it rides the cancel transition, but only the coach may use it.
func (s *requestService) Reject(ctx context.Context, employeeID, id int64) (*models.ServiceRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.EmployeeID != employeeID {
		return nil, ErrNotParticipant
	}

	request, err = s.repo.Cancel(ctx, id, employeeID)
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, request.RequesterID, notifmodels.TypeRequestRejected,
		"Request declined",
		fmt.Sprintf("The coach declined request #%d.", request.ID))
	return request, nil
}

func (s *requestService) Complete(ctx context.Context, employeeID, id int64, notes string) (*models.ServiceRequest, error) {
	request, err := s.repo.Complete(ctx, id, employeeID, validation.Sanitize(notes))
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, request.RequesterID, notifmodels.TypeCompletionRequest,
		"Work marked complete",
		"The coach marked the work as done. An administrator will review it.")
	return request, nil
}

func (s *requestService) ApproveCompletion(ctx context.Context, id int64, notes string) (*models.CloseResult, error) {
	result, err := s.repo.ApproveCompletion(ctx, id, validation.Sanitize(notes))
	if err != nil {
		return nil, err
	}

	// The payout credited the wallet behind the user feature's back.
	if s.users != nil {
		if err := s.users.Invalidate(ctx, result.Request.EmployeeID); err != nil {
			logger.Warn().Err(err).Int64("user_id", result.Request.EmployeeID).
				Msg("user cache invalidate failed")
		}
	}

	_, earnings := models.SplitAmount(result.Request.Amount)
	s.notifications.Notify(ctx, result.Request.EmployeeID, notifmodels.TypeRequestPaid,
		"Request closed and paid",
		fmt.Sprintf("Request #%d closed. %s credited to your wallet.", result.Request.ID, earnings.StringFixed(2)))
	return result, nil
}

func (s *requestService) ReopenCompletion(ctx context.Context, id int64, notes string) (*models.ServiceRequest, error) {
	request, err := s.repo.ReopenCompletion(ctx, id, validation.Sanitize(notes))
	if err != nil {
		return nil, err
	}
	s.notifications.Notify(ctx, request.EmployeeID, notifmodels.TypeCompletionReopened,
		"Completion sent back",
		"An administrator sent the work back for revision.")
	return request, nil
}

func (s *requestService) ListPendingCompletions(ctx context.Context) ([]*models.ServiceCompletion, error) {
	return s.repo.ListPendingCompletions(ctx)
}
