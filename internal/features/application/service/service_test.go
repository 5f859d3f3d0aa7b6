package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmarket-backend/internal/features/application/models"
	"coachmarket-backend/internal/features/application/repository"
	listingmodels "coachmarket-backend/internal/features/listing/models"
)

type fakeApplicationRepo struct {
	apps   map[int64]*models.ServiceApplication
	nextID int64
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[int64]*models.ServiceApplication{}, nextID: 1}
}

func (r *fakeApplicationRepo) Create(_ context.Context, app *models.ServiceApplication) error {
	app.ID = r.nextID
	r.nextID++
	app.Status = models.StatusPending
	r.apps[app.ID] = app
	return nil
}

func (r *fakeApplicationRepo) GetByID(_ context.Context, id int64) (*models.ServiceApplication, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	return app, nil
}

func (r *fakeApplicationRepo) ListByUser(_ context.Context, userID int64) ([]*models.ServiceApplication, error) {
	var out []*models.ServiceApplication
	for _, app := range r.apps {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListPending(_ context.Context) ([]*models.ServiceApplication, error) {
	var out []*models.ServiceApplication
	for _, app := range r.apps {
		if app.Status == models.StatusPending {
			out = append(out, app)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) Update(_ context.Context, app *models.ServiceApplication) error {
	stored, ok := r.apps[app.ID]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	*stored = *app
	stored.Status = models.StatusPending
	return nil
}

func (r *fakeApplicationRepo) Approve(_ context.Context, id int64) (*listingmodels.PublishedService, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, repository.ErrApplicationNotFound
	}
	if app.Status != models.StatusPending {
		return nil, repository.ErrAlreadyDecided
	}
	app.Status = models.StatusApproved
	return &listingmodels.PublishedService{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		GameID:        app.GameID,
		Title:         app.Title,
		Price:         app.Price,
		IsActive:      true,
	}, nil
}

func (r *fakeApplicationRepo) Reject(_ context.Context, id int64, notes string) error {
	app, ok := r.apps[id]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if app.Status != models.StatusPending {
		return repository.ErrAlreadyDecided
	}
	app.Status = models.StatusRejected
	app.ReviewNotes = notes
	return nil
}

type countingInvalidator struct {
	calls int
}

func (i *countingInvalidator) InvalidateCache(_ context.Context) { i.calls++ }

type recordingUserInvalidator struct {
	invalidated []int64
}

func (i *recordingUserInvalidator) Invalidate(_ context.Context, userID int64) error {
	i.invalidated = append(i.invalidated, userID)
	return nil
}

func submitValid(t *testing.T, svc ApplicationService, userID int64) *models.ServiceApplication {
	t.Helper()
	app, err := svc.Submit(context.Background(), userID, &models.CreateApplicationRequest{
		GameID:      1,
		Title:       "Aim coaching",
		Description: "One on one sessions",
		Price:       decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	return app
}

func TestSubmitSanitizesAndValidates(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)

	app, err := svc.Submit(context.Background(), 10, &models.CreateApplicationRequest{
		GameID:      1,
		Title:       "  <b>Aim</b> coaching  ",
		Description: "desc",
		Price:       decimal.RequireFromString("25.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "&lt;b&gt;Aim&lt;/b&gt; coaching", app.Title)
	assert.Equal(t, models.StatusPending, app.Status)

	_, err = svc.Submit(context.Background(), 10, &models.CreateApplicationRequest{
		GameID:      1,
		Title:       "t",
		Description: "d",
		Price:       decimal.Zero,
	})
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestUpdateIsOwnerOnly(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)
	app := submitValid(t, svc, 10)

	_, err := svc.Update(context.Background(), 99, app.ID, &models.UpdateApplicationRequest{Title: "new"})
	assert.ErrorIs(t, err, ErrNotOwner)

	updated, err := svc.Update(context.Background(), 10, app.ID, &models.UpdateApplicationRequest{Title: "new title"})
	require.NoError(t, err)
	assert.Equal(t, "new title", updated.Title)
}

func TestRejectedApplicationCanBeRevised(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)
	app := submitValid(t, svc, 10)

	require.NoError(t, svc.Reject(context.Background(), app.ID, "too vague"))
	assert.Equal(t, models.StatusRejected, repo.apps[app.ID].Status)

	// An edit puts it back in the review queue.
	_, err := svc.Update(context.Background(), 10, app.ID, &models.UpdateApplicationRequest{
		Description: "much more detail",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, repo.apps[app.ID].Status)
}

func TestApprovePublishesAndInvalidatesCache(t *testing.T) {
	repo := newFakeApplicationRepo()
	invalidator := &countingInvalidator{}
	users := &recordingUserInvalidator{}
	svc := NewApplicationService(repo, invalidator, users)
	app := submitValid(t, svc, 10)

	published, err := svc.Approve(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.ID, published.ApplicationID)
	assert.True(t, published.IsActive)
	assert.Equal(t, 1, invalidator.calls)

	// The applicant's is_employee flag flipped; their cached profile goes.
	assert.Equal(t, []int64{10}, users.invalidated)

	// Second decision on the same application is a conflict.
	_, err = svc.Approve(context.Background(), app.ID)
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	assert.Equal(t, 1, invalidator.calls)
	assert.Len(t, users.invalidated, 1)
}

func TestSubmitRejectsSecondPendingForSameGame(t *testing.T) {
	repo := newFakeApplicationRepo()
	svc := NewApplicationService(repo, nil, nil)
	app := submitValid(t, svc, 10)

	// Same user, same game, first pitch still pending.
	_, err := svc.Submit(context.Background(), 10, &models.CreateApplicationRequest{
		GameID:      1,
		Title:       "Another pitch",
		Description: "More sessions",
		Price:       decimal.RequireFromString("30.00"),
	})
	assert.ErrorIs(t, err, ErrDuplicatePending)

	// A different game or a different user is fine.
	_, err = svc.Submit(context.Background(), 10, &models.CreateApplicationRequest{
		GameID:      2,
		Title:       "Strategy coaching",
		Description: "Macro review",
		Price:       decimal.RequireFromString("30.00"),
	})
	assert.NoError(t, err)
	submitValid(t, svc, 11)

	// Once the pending pitch is decided, the same game opens up again.
	require.NoError(t, svc.Reject(context.Background(), app.ID, "too vague"))
	_, err = svc.Submit(context.Background(), 10, &models.CreateApplicationRequest{
		GameID:      1,
		Title:       "Revised pitch",
		Description: "With a syllabus",
		Price:       decimal.RequireFromString("25.00"),
	})
	assert.NoError(t, err)
}
