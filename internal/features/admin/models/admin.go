package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Admin roles. Super admins may manage other admin accounts.
const (
	RoleRegular = "regular"
	RoleSuper   = "super"
)

// Admin is a separate identity space from User, with the same blocking
// fields.
type Admin struct {
	ID                  int64      `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"`
	FullName            string     `json:"full_name"`
	Role                string     `json:"role"`
	AccountStatus       string     `json:"account_status"`
	FailedLoginAttempts int        `json:"-"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// AdminLog is one append-only audit record. Rows are never mutated or
// deleted through the API.
type AdminLog struct {
	ID         int64     `json:"id"`
	AdminID    int64     `json:"admin_id"`
	Action     string    `json:"action"`
	TargetType string    `json:"target_type,omitempty"`
	TargetID   *int64    `json:"target_id,omitempty"`
	Details    string    `json:"details,omitempty"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateAdminRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"`
}

type UpdateAdminRequest struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// DashboardStats are the headline counts for the admin console.
type DashboardStats struct {
	TotalUsers         int64 `json:"total_users"`
	TotalEmployees     int64 `json:"total_employees"`
	ActiveServices     int64 `json:"active_services"`
	PendingApplication int64 `json:"pending_applications"`
	PendingCompletions int64 `json:"pending_completions"`
	OpenRequests       int64 `json:"open_requests"`
}

// Analytics aggregates closed-request money flow. Revenue is the sum of
// commissions on closed requests.
type Analytics struct {
	ClosedRequests   int64            `json:"closed_requests"`
	GrossVolume      decimal.Decimal  `json:"gross_volume"`
	Revenue          decimal.Decimal  `json:"revenue"`
	RequestsByStatus map[string]int64 `json:"requests_by_status"`
}
