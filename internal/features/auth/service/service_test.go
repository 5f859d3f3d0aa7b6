package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"coachmarket-backend/internal/features/auth/models"
	"coachmarket-backend/internal/features/auth/token"
	usermodels "coachmarket-backend/internal/features/user/models"
	userrepo "coachmarket-backend/internal/features/user/repository"
)

type fakeUserRepo struct {
	users  map[int64]*usermodels.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*usermodels.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *usermodels.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return userrepo.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*usermodels.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, userrepo.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*usermodels.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userrepo.ErrUserNotFound
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*usermodels.User, error) {
	return nil, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, fullName string) error {
	u, ok := r.users[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	u.FullName = fullName
	return nil
}

func (r *fakeUserRepo) UpdateStatus(_ context.Context, id int64, status string) error {
	u, ok := r.users[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	u.AccountStatus = status
	return nil
}

func (r *fakeUserRepo) IncrementFailedLogins(_ context.Context, id int64) (int, error) {
	u, ok := r.users[id]
	if !ok {
		return 0, userrepo.ErrUserNotFound
	}
	u.FailedLoginAttempts++
	return u.FailedLoginAttempts, nil
}

func (r *fakeUserRepo) RecordLoginSuccess(_ context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	u.FailedLoginAttempts = 0
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (r *fakeUserRepo) Unblock(_ context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return userrepo.ErrUserNotFound
	}
	u.AccountStatus = usermodels.StatusActive
	u.FailedLoginAttempts = 0
	return nil
}

// fakeThrottle mirrors the redis unknown-email counter in memory.
type fakeThrottle struct {
	counts map[string]int
}

func newFakeThrottle() *fakeThrottle {
	return &fakeThrottle{counts: make(map[string]int)}
}

func (f *fakeThrottle) Fail(_ context.Context, email string) (int, error) {
	f.counts[email]++
	return f.counts[email], nil
}

func newTestService(t *testing.T, users userrepo.UserRepository) AuthService {
	t.Helper()
	tokens := token.NewManager("test-secret", time.Hour)
	return NewAuthService(users, nil, tokens, nil, newFakeThrottle(), bcrypt.MinCost)
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *usermodels.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	u := &usermodels.User{
		Email:         email,
		PasswordHash:  string(hash),
		FullName:      "Test User",
		AccountStatus: usermodels.StatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestRegisterIssuesToken(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	resp, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "new@example.com",
		Password: "secret123",
		FullName: "New User",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	user, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, usermodels.StatusActive, user.AccountStatus)
	assert.NotEqual(t, "secret123", user.PasswordHash)
}

func TestRegisterRejectsBadPasswords(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo())

	for _, password := range []string{"short", "waytoolongpassword"} {
		_, err := svc.Register(context.Background(), &models.RegisterRequest{
			Email:    "new@example.com",
			Password: password,
			FullName: "New User",
		})
		assert.Error(t, err, "password %q", password)
	}
}

func TestRegisterEscapesNameWithoutRejecting(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)

	// Near the length cap and full of metacharacters: still a valid name.
	name := "O'Brien & Sons <Coaching> " + strings.Repeat("x", 70)
	_, err := svc.Register(context.Background(), &models.RegisterRequest{
		Email:    "obrien@example.com",
		Password: "secret123",
		FullName: name,
	})
	require.NoError(t, err)

	user, err := repo.GetByEmail(context.Background(), "obrien@example.com")
	require.NoError(t, err)
	assert.Contains(t, user.FullName, "&amp;")
	assert.NotContains(t, user.FullName, "<")
}

func TestLoginSuccessResetsFailedAttempts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)
	user := seedUser(t, repo, "user@example.com", "secret123")

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "user@example.com", Password: "wrong-one",
	})
	require.Error(t, err)
	assert.Equal(t, 1, repo.users[user.ID].FailedLoginAttempts)

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "user@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 0, repo.users[user.ID].FailedLoginAttempts)
}

func TestLoginCountsDownAndBlocks(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)
	user := seedUser(t, repo, "user@example.com", "secret123")

	login := func() error {
		_, err := svc.Login(context.Background(), &models.LoginRequest{
			Email: "user@example.com", Password: "wrong-one",
		})
		return err
	}

	var loginErr *models.LoginError

	err := login()
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "invalid credentials", loginErr.Message)
	assert.Equal(t, 2, loginErr.AttemptsRemaining)

	err = login()
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, 1, loginErr.AttemptsRemaining)

	// Third failure crosses the threshold and blocks the account.
	err = login()
	require.ErrorIs(t, err, ErrAccountBlocked)
	assert.Equal(t, usermodels.StatusBlocked, repo.users[user.ID].AccountStatus)

	// Even the right password is refused while blocked.
	_, err = svc.Login(context.Background(), &models.LoginRequest{
		Email: "user@example.com", Password: "secret123",
	})
	require.ErrorIs(t, err, ErrAccountBlocked)
}

func TestLoginAfterUnblock(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)
	user := seedUser(t, repo, "user@example.com", "secret123")

	for i := 0; i < 3; i++ {
		_, _ = svc.Login(context.Background(), &models.LoginRequest{
			Email: "user@example.com", Password: "wrong-one",
		})
	}
	require.Equal(t, usermodels.StatusBlocked, repo.users[user.ID].AccountStatus)

	require.NoError(t, repo.Unblock(context.Background(), user.ID))

	resp, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "user@example.com", Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo())

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})

	var loginErr *models.LoginError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "invalid credentials", loginErr.Message)
	assert.Equal(t, 2, loginErr.AttemptsRemaining)
}

func TestLoginUnknownEmailCountsDownLikeKnown(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo())
	login := func() error {
		_, err := svc.Login(context.Background(), &models.LoginRequest{
			Email: "nobody@example.com", Password: "secret123",
		})
		return err
	}

	// Same countdown shape as a real account with a wrong password.
	var loginErr *models.LoginError
	require.ErrorAs(t, login(), &loginErr)
	assert.Equal(t, 2, loginErr.AttemptsRemaining)
	require.ErrorAs(t, login(), &loginErr)
	assert.Equal(t, 1, loginErr.AttemptsRemaining)

	// And the same terminal error.
	assert.ErrorIs(t, login(), ErrAccountBlocked)
}

func TestLoginNonActiveStatus(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestService(t, repo)
	user := seedUser(t, repo, "user@example.com", "secret123")
	require.NoError(t, repo.UpdateStatus(context.Background(), user.ID, usermodels.StatusSuspended))

	_, err := svc.Login(context.Background(), &models.LoginRequest{
		Email: "user@example.com", Password: "secret123",
	})

	var statusErr *models.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, usermodels.StatusSuspended, statusErr.Status)
}

func TestRefreshRejectsGarbage(t *testing.T) {
	svc := newTestService(t, newFakeUserRepo())

	_, err := svc.Refresh(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

var _ userrepo.UserRepository = (*fakeUserRepo)(nil)
