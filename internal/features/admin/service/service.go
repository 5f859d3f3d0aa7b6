package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"coachmarket-backend/internal/common/validation"
	"coachmarket-backend/internal/features/admin/models"
	"coachmarket-backend/internal/features/admin/repository"
	usermodels "coachmarket-backend/internal/features/user/models"
)

var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrNotSuperAdmin = errors.New("super admin access required")
	ErrInvalidRole   = errors.New("invalid admin role")
	ErrSelfDeletion  = errors.New("admins cannot delete their own account")
	ErrEmailTaken    = errors.New("email already registered")
	ErrActorInactive = errors.New("admin account is not active")
)

type AdminService interface {
	CreateAdmin(ctx context.Context, actorID int64, req *models.CreateAdminRequest) (*models.Admin, error)
	UpdateAdmin(ctx context.Context, actorID, id int64, req *models.UpdateAdminRequest) (*models.Admin, error)
	DeleteAdmin(ctx context.Context, actorID, id int64) error
	ListAdmins(ctx context.Context, actorID int64) ([]*models.Admin, error)
	UnblockAdmin(ctx context.Context, actorID, id int64) error
	Dashboard(ctx context.Context) (*models.DashboardStats, error)
	Analytics(ctx context.Context) (*models.Analytics, error)
	ListLogs(ctx context.Context, limit, offset int) ([]*models.AdminLog, error)
}

type adminService struct {
	repo       repository.AdminRepository
	bcryptCost int
}

func NewAdminService(repo repository.AdminRepository, bcryptCost int) AdminService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &adminService{repo: repo, bcryptCost: bcryptCost}
}

// requireSuper re-reads the acting admin from the store. Token role can be
// stale for days-scale expiries, so admin management always checks the live
// record.
func (s *adminService) requireSuper(ctx context.Context, actorID int64) error {
	actor, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return ErrAdminNotFound
	}
	if actor.AccountStatus != usermodels.StatusActive {
		return ErrActorInactive
	}
	if actor.Role != models.RoleSuper {
		return ErrNotSuperAdmin
	}
	return nil
}

func (s *adminService) CreateAdmin(ctx context.Context, actorID int64, req *models.CreateAdminRequest) (*models.Admin, error) {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return nil, err
	}

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

	role := req.Role
	if role == "" {
		role = models.RoleRegular
	}
	if role != models.RoleRegular && role != models.RoleSuper {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	admin := &models.Admin{
		Email:         req.Email,
		PasswordHash:  string(hash),
		FullName:      fullName,
		Role:          role,
		AccountStatus: usermodels.StatusActive,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

func (s *adminService) UpdateAdmin(ctx context.Context, actorID, id int64, req *models.UpdateAdminRequest) (*models.Admin, error) {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return nil, err
	}

	admin, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	fullName := admin.FullName
	if req.FullName != "" {
		fullName, err = validation.SanitizeText("full_name", req.FullName)
		if err != nil {
			return nil, err
		}
	}

	role := admin.Role
	if req.Role != "" {
		if req.Role != models.RoleRegular && req.Role != models.RoleSuper {
			return nil, ErrInvalidRole
		}
		role = req.Role
	}

	if err := s.repo.Update(ctx, id, fullName, role); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *adminService) DeleteAdmin(ctx context.Context, actorID, id int64) error {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return err
	}
	if actorID == id {
		return ErrSelfDeletion
	}
	return s.repo.Delete(ctx, id)
}

func (s *adminService) ListAdmins(ctx context.Context, actorID int64) ([]*models.Admin, error) {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

func (s *adminService) UnblockAdmin(ctx context.Context, actorID, id int64) error {
	if err := s.requireSuper(ctx, actorID); err != nil {
		return err
	}
	return s.repo.Unblock(ctx, id)
}

func (s *adminService) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	return s.repo.DashboardStats(ctx)
}

func (s *adminService) Analytics(ctx context.Context) (*models.Analytics, error) {
	return s.repo.Analytics(ctx)
}

func (s *adminService) ListLogs(ctx context.Context, limit, offset int) ([]*models.AdminLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListLogs(ctx, limit, offset)
}
