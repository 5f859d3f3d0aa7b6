package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	listingmodels "coachmarket-backend/internal/features/listing/models"
	listingrepo "coachmarket-backend/internal/features/listing/repository"
	notifmodels "coachmarket-backend/internal/features/notification/models"
	notifservice "coachmarket-backend/internal/features/notification/service"
	"coachmarket-backend/internal/features/request/models"
	"coachmarket-backend/internal/features/request/repository"
)

type fakeRequestRepo struct {
	requests map[int64]*models.ServiceRequest
	nextID   int64
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: map[int64]*models.ServiceRequest{}, nextID: 1}
}

func (r *fakeRequestRepo) Create(_ context.Context, req *models.ServiceRequest) error {
	req.ID = r.nextID
	r.nextID++
	req.Status = models.StatusPending
	r.requests[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id int64) (*models.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	return req, nil
}

func (r *fakeRequestRepo) ListByParticipant(_ context.Context, userID int64) ([]*models.ServiceRequest, error) {
	var out []*models.ServiceRequest
	for _, req := range r.requests {
		if req.RequesterID == userID || req.EmployeeID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListAll(_ context.Context, _, _ int) ([]*models.ServiceRequest, error) {
	return nil, nil
}

func (r *fakeRequestRepo) move(id, actorID int64, requester bool, target models.Status) (*models.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	party := req.EmployeeID
	if requester {
		party = req.RequesterID
	}
	if party != actorID {
		return nil, repository.ErrNotParticipant
	}
	if !req.Status.CanTransitionTo(target) {
		return nil, repository.ErrIllegalTransition
	}
	req.Status = target
	return req, nil
}

func (r *fakeRequestRepo) Accept(_ context.Context, id, employeeID int64) (*models.ServiceRequest, error) {
	return r.move(id, employeeID, false, models.StatusEmployeeAccepted)
}

func (r *fakeRequestRepo) Confirm(_ context.Context, id, requesterID int64) (*models.ServiceRequest, error) {
	return r.move(id, requesterID, true, models.StatusInProgress)
}

func (r *fakeRequestRepo) Cancel(_ context.Context, id, actorID int64) (*models.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	if req.RequesterID != actorID && req.EmployeeID != actorID {
		return nil, repository.ErrNotParticipant
	}
	if !req.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, repository.ErrIllegalTransition
	}
	req.Status = models.StatusCancelled
	return req, nil
}

func (r *fakeRequestRepo) Complete(_ context.Context, id, employeeID int64, _ string) (*models.ServiceRequest, error) {
	return r.move(id, employeeID, false, models.StatusPendingCompletion)
}

func (r *fakeRequestRepo) ApproveCompletion(_ context.Context, id int64, _ string) (*models.CloseResult, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	if !req.Status.CanTransitionTo(models.StatusClosed) {
		return nil, repository.ErrIllegalTransition
	}
	req.Status = models.StatusClosed
	commission, _ := models.SplitAmount(req.Amount)
	return &models.CloseResult{
		Request: req,
		Transaction: &models.Transaction{
			RequestID:   req.ID,
			PayerID:     req.RequesterID,
			PayeeID:     req.EmployeeID,
			GrossAmount: req.Amount,
			Commission:  commission,
		},
	}, nil
}

func (r *fakeRequestRepo) ReopenCompletion(_ context.Context, id int64, _ string) (*models.ServiceRequest, error) {
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrRequestNotFound
	}
	if req.Status != models.StatusPendingCompletion {
		return nil, repository.ErrIllegalTransition
	}
	req.Status = models.StatusInProgress
	return req, nil
}

func (r *fakeRequestRepo) LatestCompletion(_ context.Context, _ int64) (*models.ServiceCompletion, error) {
	return nil, repository.ErrCompletionNotFound
}

func (r *fakeRequestRepo) ListPendingCompletions(_ context.Context) ([]*models.ServiceCompletion, error) {
	return nil, nil
}

type fakeListingRepo struct {
	services map[int64]*listingmodels.PublishedService
}

func (r *fakeListingRepo) GetServiceByID(_ context.Context, id int64) (*listingmodels.PublishedService, error) {
	svc, ok := r.services[id]
	if !ok {
		return nil, listingrepo.ErrServiceNotFound
	}
	return svc, nil
}

func (r *fakeListingRepo) ListServices(_ context.Context, _ listingmodels.ServiceFilter) ([]*listingmodels.PublishedService, error) {
	return nil, nil
}
func (r *fakeListingRepo) SetServiceActive(_ context.Context, _ int64, _ bool) error { return nil }
func (r *fakeListingRepo) ListCoaches(_ context.Context) ([]*listingmodels.Coach, error) {
	return nil, nil
}
func (r *fakeListingRepo) GetCoach(_ context.Context, _ int64) (*listingmodels.Coach, error) {
	return nil, listingrepo.ErrCoachNotFound
}
func (r *fakeListingRepo) AddSpecialization(_ context.Context, _ int64, _ string) error { return nil }

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ int64, notifType, _, _ string) {
	n.sent = append(n.sent, notifType)
}

func (n *recordingNotifier) ListMine(_ context.Context, _ int64, _ int) ([]*notifmodels.Notification, error) {
	return nil, nil
}

func (n *recordingNotifier) MarkRead(_ context.Context, _, _ int64) error { return nil }

var _ notifservice.NotificationService = (*recordingNotifier)(nil)
var _ repository.RequestRepository = (*fakeRequestRepo)(nil)
var _ listingrepo.ListingRepository = (*fakeListingRepo)(nil)

type recordingUserInvalidator struct {
	invalidated []int64
}

func (i *recordingUserInvalidator) Invalidate(_ context.Context, userID int64) error {
	i.invalidated = append(i.invalidated, userID)
	return nil
}

const (
	requesterID = int64(10)
	coachID     = int64(20)
)

func newTestService() (RequestService, *fakeRequestRepo, *recordingNotifier, *recordingUserInvalidator) {
	requests := newFakeRequestRepo()
	listings := &fakeListingRepo{services: map[int64]*listingmodels.PublishedService{
		1: {
			ID:       1,
			UserID:   coachID,
			Title:    "Aim training",
			Price:    decimal.RequireFromString("25.00"),
			IsActive: true,
		},
		2: {
			ID:       2,
			UserID:   coachID,
			Title:    "Retired service",
			Price:    decimal.RequireFromString("10.00"),
			IsActive: false,
		},
	}}
	notifier := &recordingNotifier{}
	users := &recordingUserInvalidator{}
	return NewRequestService(requests, listings, notifier, users), requests, notifier, users
}

func TestCreateFreezesPriceAndNotifiesCoach(t *testing.T) {
	svc, _, notifier, _ := newTestService()

	req, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{
		ServiceID:      1,
		ServiceDetails: "evening sessions please",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, coachID, req.EmployeeID)
	assert.Equal(t, "25.00", req.Amount.StringFixed(2))
	assert.Equal(t, []string{notifmodels.TypeNewRequest}, notifier.sent)
}

func TestCreateRejectsInactiveAndOwnService(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 2})
	assert.ErrorIs(t, err, ErrServiceInactive)

	_, err = svc.Create(context.Background(), coachID, &models.CreateRequestRequest{ServiceID: 1})
	assert.ErrorIs(t, err, ErrOwnService)

	_, err = svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 99})
	assert.ErrorIs(t, err, listingrepo.ErrServiceNotFound)
}

func TestLifecycleHappyPath(t *testing.T) {
	svc, repo, notifier, _ := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	_, err = svc.Accept(context.Background(), coachID, id)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), requesterID, id)
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), coachID, id, "done")
	require.NoError(t, err)

	result, err := svc.ApproveCompletion(context.Background(), id, "verified")
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, repo.requests[id].Status)
	assert.Equal(t, "2.50", result.Transaction.Commission.StringFixed(2))
	assert.Equal(t, "25.00", result.Transaction.GrossAmount.StringFixed(2))
	assert.Equal(t, []string{
		notifmodels.TypeNewRequest,
		notifmodels.TypeRequestAccepted,
		notifmodels.TypeRequestConfirmed,
		notifmodels.TypeCompletionRequest,
		notifmodels.TypeRequestPaid,
	}, notifier.sent)
}

func TestTransitionAuthorization(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	// Only the coach may accept, only the requester may confirm.
	_, err = svc.Accept(context.Background(), requesterID, id)
	assert.ErrorIs(t, err, ErrNotParticipant)

	_, err = svc.Confirm(context.Background(), requesterID, id)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = svc.Accept(context.Background(), coachID, id)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), coachID, id)
	assert.ErrorIs(t, err, ErrNotParticipant)

	// Outsiders see a permission error, not state details.
	_, err = svc.Get(context.Background(), int64(999), id)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestCancelAfterCompletionRequestIsRejected(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	_, err = svc.Accept(context.Background(), coachID, id)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), requesterID, id)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), coachID, id, "done")
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), requesterID, id)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestReopenThenReapprove(t *testing.T) {
	svc, repo, _, _ := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	_, err = svc.Accept(context.Background(), coachID, id)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), requesterID, id)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), coachID, id, "done")
	require.NoError(t, err)

	reopened, err := svc.ReopenCompletion(context.Background(), id, "needs more detail")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, reopened.Status)

	// Approval is illegal until the coach re-submits.
	_, err = svc.ApproveCompletion(context.Background(), id, "")
	assert.ErrorIs(t, err, ErrIllegalTransition)

	_, err = svc.Complete(context.Background(), coachID, id, "redone")
	require.NoError(t, err)

	_, err = svc.ApproveCompletion(context.Background(), id, "good now")
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, repo.requests[id].Status)
}

func TestRejectIsCoachOnly(t *testing.T) {
	svc, repo, notifier, _ := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	_, err = svc.Reject(context.Background(), requesterID, id)
	assert.ErrorIs(t, err, ErrNotParticipant)

	rejected, err := svc.Reject(context.Background(), coachID, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, rejected.Status)
	assert.Equal(t, models.StatusCancelled, repo.requests[id].Status)
	assert.Equal(t, []string{
		notifmodels.TypeNewRequest,
		notifmodels.TypeRequestRejected,
	}, notifier.sent)

	// Absorbing: a rejected request cannot be revived.
	_, err = svc.Accept(context.Background(), coachID, id)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestApprovalDropsCachedCoachProfile(t *testing.T) {
	svc, _, _, users := newTestService()

	created, err := svc.Create(context.Background(), requesterID, &models.CreateRequestRequest{ServiceID: 1})
	require.NoError(t, err)
	id := created.ID

	_, err = svc.Accept(context.Background(), coachID, id)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), requesterID, id)
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), coachID, id, "done")
	require.NoError(t, err)
	assert.Empty(t, users.invalidated)

	// The payout changed the coach's wallet behind the user feature's back,
	// so their cached profile has to go.
	_, err = svc.ApproveCompletion(context.Background(), id, "verified")
	require.NoError(t, err)
	assert.Equal(t, []int64{coachID}, users.invalidated)
}
