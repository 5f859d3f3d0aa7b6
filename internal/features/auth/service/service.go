package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"coachmarket-backend/internal/common/validation"
	adminmodels "coachmarket-backend/internal/features/admin/models"
	adminrepo "coachmarket-backend/internal/features/admin/repository"
	"coachmarket-backend/internal/features/auth/models"
	"coachmarket-backend/internal/features/auth/token"
	usermodels "coachmarket-backend/internal/features/user/models"
	userrepo "coachmarket-backend/internal/features/user/repository"
)

var (
	// ErrAccountBlocked is returned without checking the password once an
	// account has reached the failed-login threshold. Only an explicit admin
	// unblock clears it.
	ErrAccountBlocked = errors.New("account is blocked, contact an administrator")
	ErrEmailTaken     = errors.New("email already registered")
	ErrInvalidToken   = errors.New("invalid token")
)

// Auditor records admin login and logout events.
type Auditor interface {
	Write(ctx context.Context, entry *adminmodels.AdminLog)
}

// LoginThrottle counts failures for emails with no account, so an unknown
// email reports the same countdown a real account would.
type LoginThrottle interface {
	Fail(ctx context.Context, email string) (int, error)
}

type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	AdminLogin(ctx context.Context, req *models.LoginRequest, ip string) (*models.AuthResponse, error)
	AdminLogout(ctx context.Context, adminID int64, ip string)
	Refresh(ctx context.Context, tokenString string) (string, error)
	Me(ctx context.Context, claims *token.Claims) (interface{}, error)
}

type authService struct {
	users      userrepo.UserRepository
	admins     adminrepo.AdminRepository
	tokens     *token.Manager
	auditor    Auditor
	throttle   LoginThrottle
	bcryptCost int
}

func NewAuthService(users userrepo.UserRepository, admins adminrepo.AdminRepository, tokens *token.Manager, auditor Auditor, throttle LoginThrottle, bcryptCost int) AuthService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		admins:     admins,
		tokens:     tokens,
		auditor:    auditor,
		throttle:   throttle,
		bcryptCost: bcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := validation.ValidateEmail(req.Email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	fullName, err := validation.SanitizeText("full_name", req.FullName)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &usermodels.User{
		Email:         req.Email,
		PasswordHash:  string(hash),
		FullName:      fullName,
		AccountStatus: usermodels.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID, user.Email, userRole(user))
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: signed, Account: user}, nil
}

// invalidCredentials is the uniform failure for an unknown email or a wrong
// password, so the response never reveals whether the email exists.
func invalidCredentials(remaining int) *models.LoginError {
	return &models.LoginError{Message: "invalid credentials", AttemptsRemaining: remaining}
}

// unknownEmailFailure mirrors the real-account countdown for an email with
// no account: the same remaining counts, then the same blocked error.
func (s *authService) unknownEmailFailure(ctx context.Context, email string) error {
	attempts := 1
	if s.throttle != nil {
		if n, err := s.throttle.Fail(ctx, email); err == nil {
			attempts = n
		}
	}
	if attempts >= usermodels.MaxFailedLogins {
		return ErrAccountBlocked
	}
	return invalidCredentials(usermodels.MaxFailedLogins - attempts)
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.unknownEmailFailure(ctx, req.Email)
	}

	if user.AccountStatus == usermodels.StatusBlocked {
		// The password is deliberately not checked for blocked accounts.
		return nil, ErrAccountBlocked
	}
	if user.AccountStatus != usermodels.StatusActive {
		return nil, &models.StatusError{Status: user.AccountStatus}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		attempts, incErr := s.users.IncrementFailedLogins(ctx, user.ID)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= usermodels.MaxFailedLogins {
			if err := s.users.UpdateStatus(ctx, user.ID, usermodels.StatusBlocked); err != nil {
				return nil, err
			}
			return nil, ErrAccountBlocked
		}
		return nil, invalidCredentials(usermodels.MaxFailedLogins - attempts)
	}

	if err := s.users.RecordLoginSuccess(ctx, user.ID); err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(user.ID, user.Email, userRole(user))
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: signed, Account: user}, nil
}

func (s *authService) AdminLogin(ctx context.Context, req *models.LoginRequest, ip string) (*models.AuthResponse, error) {
	admin, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.unknownEmailFailure(ctx, req.Email)
	}

	if admin.AccountStatus == usermodels.StatusBlocked {
		return nil, ErrAccountBlocked
	}
	if admin.AccountStatus != usermodels.StatusActive {
		return nil, &models.StatusError{Status: admin.AccountStatus}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		attempts, incErr := s.admins.IncrementFailedLogins(ctx, admin.ID)
		if incErr != nil {
			return nil, incErr
		}
		if attempts >= usermodels.MaxFailedLogins {
			if err := s.admins.UpdateStatus(ctx, admin.ID, usermodels.StatusBlocked); err != nil {
				return nil, err
			}
			return nil, ErrAccountBlocked
		}
		return nil, invalidCredentials(usermodels.MaxFailedLogins - attempts)
	}

	if err := s.admins.RecordLoginSuccess(ctx, admin.ID); err != nil {
		return nil, err
	}

	signed, err := s.tokens.Issue(admin.ID, admin.Email, adminRole(admin))
	if err != nil {
		return nil, err
	}

	if s.auditor != nil {
		s.auditor.Write(ctx, &adminmodels.AdminLog{
			AdminID:   admin.ID,
			Action:    "admin_login",
			IPAddress: ip,
		})
	}

	return &models.AuthResponse{Token: signed, Account: admin}, nil
}

// AdminLogout only records the audit entry; there is no server-side token
// revocation list, the client discards its token.
func (s *authService) AdminLogout(ctx context.Context, adminID int64, ip string) {
	if s.auditor != nil {
		s.auditor.Write(ctx, &adminmodels.AdminLog{
			AdminID:   adminID,
			Action:    "admin_logout",
			IPAddress: ip,
		})
	}
}

func (s *authService) Refresh(ctx context.Context, tokenString string) (string, error) {
	signed, err := s.tokens.Refresh(tokenString)
	if err != nil {
		return "", ErrInvalidToken
	}
	return signed, nil
}

func (s *authService) Me(ctx context.Context, claims *token.Claims) (interface{}, error) {
	if claims.IsAdmin() {
		return s.admins.GetByID(ctx, claims.AccountID)
	}
	return s.users.GetByID(ctx, claims.AccountID)
}

func userRole(u *usermodels.User) string {
	if u.IsEmployee {
		return token.RoleEmployee
	}
	return token.RoleUser
}

func adminRole(a *adminmodels.Admin) string {
	if a.Role == adminmodels.RoleSuper {
		return token.RoleSuperAdmin
	}
	return token.RoleAdmin
}
