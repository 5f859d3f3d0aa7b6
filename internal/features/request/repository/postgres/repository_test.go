package postgres

import (
	"context"
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coachmarket-backend/internal/features/request/models"
	"coachmarket-backend/internal/features/request/repository"
)

var requestCols = []string{
	"id", "service_id", "requester_id", "employee_id", "amount",
	"service_details", "status", "created_at", "updated_at",
}

func requestRow(id int64, status models.Status) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(requestCols).
		AddRow(id, 1, 10, 20, "25.00", "details", string(status), now, now)
}

func TestAcceptLocksAndTransitions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM service_requests WHERE id = \\$1 FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(requestRow(7, models.StatusPending))
	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE service_requests SET status = $2, updated_at = NOW() WHERE id = $1`)).
		WithArgs(int64(7), string(models.StatusEmployeeAccepted)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	req, err := repo.Accept(context.Background(), 7, 20)
	require.NoError(t, err)

	assert.Equal(t, models.StatusEmployeeAccepted, req.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptByWrongEmployeeRollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(requestRow(7, models.StatusPending))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	_, err = repo.Accept(context.Background(), 7, 999)
	assert.ErrorIs(t, err, repository.ErrNotParticipant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcceptFromTerminalStateIsIllegal(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(requestRow(7, models.StatusCancelled))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	_, err = repo.Accept(context.Background(), 7, 20)
	assert.ErrorIs(t, err, repository.ErrIllegalTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveCompletionPaysOutOnce(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(requestRow(7, models.StatusPendingCompletion))
	mock.ExpectQuery("FROM service_completions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "employee_notes", "admin_notes", "status", "created_at", "updated_at",
		}).AddRow(3, 7, "done", "", models.CompletionPendingReview, now, now))
	mock.ExpectExec("UPDATE service_completions").
		WithArgs(int64(3), models.CompletionClosed, "verified").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE service_requests SET status").
		WithArgs(int64(7), string(models.StatusClosed)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO transactions").
		WithArgs(int64(7), int64(10), int64(20), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(99, now))
	// 10% of 25.00 withheld, 22.50 credited.
	mock.ExpectExec("UPDATE users").
		WithArgs(int64(20), decimalArg("22.5")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE chats SET is_archived").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewPostgresRepository(db)
	result, err := repo.ApproveCompletion(context.Background(), 7, "verified")
	require.NoError(t, err)

	assert.Equal(t, models.StatusClosed, result.Request.Status)
	assert.Equal(t, "2.50", result.Transaction.Commission.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveCompletionRequiresPendingReview(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(int64(7)).
		WillReturnRows(requestRow(7, models.StatusPendingCompletion))
	mock.ExpectQuery("FROM service_completions").
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "employee_notes", "admin_notes", "status", "created_at", "updated_at",
		}).AddRow(3, 7, "done", "ok", models.CompletionClosed, now, now))
	mock.ExpectRollback()

	repo := NewPostgresRepository(db)
	_, err = repo.ApproveCompletion(context.Background(), 7, "again")
	assert.ErrorIs(t, err, repository.ErrIllegalTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// decimalArg matches a shopspring decimal passed as a driver value.
type decimalArg string

func (d decimalArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	return s == string(d)
}
