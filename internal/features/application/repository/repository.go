package repository

import (
	"context"
	"errors"

	"coachmarket-backend/internal/features/application/models"
	listingmodels "coachmarket-backend/internal/features/listing/models"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrAlreadyDecided      = errors.New("application already decided")
	// ErrDuplicatePending is the partial unique index on
	// (user_id, game_id) WHERE status = 'pending' speaking.
	ErrDuplicatePending = errors.New("a pending application for this game already exists")
)

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.ServiceApplication) error
	GetByID(ctx context.Context, id int64) (*models.ServiceApplication, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.ServiceApplication, error)
	ListPending(ctx context.Context) ([]*models.ServiceApplication, error)
	// Update rewrites the owner-editable fields and resets status to
	// pending.
	Update(ctx context.Context, app *models.ServiceApplication) error
	// Approve runs the whole approval in one transaction: marks the
	// application approved, publishes the listing from its fields, flips the
	// owner's employee flag and ensures an employee profile exists. The
	// application row is locked so only one outcome can win.
	Approve(ctx context.Context, id int64) (*listingmodels.PublishedService, error)
	Reject(ctx context.Context, id int64, notes string) error
}
