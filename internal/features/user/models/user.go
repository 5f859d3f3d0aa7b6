package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account status values. Blocked is permanent and cleared only by an
// explicit admin unblock.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusBanned    = "banned"
	StatusBlocked   = "blocked"
)

// MaxFailedLogins is the number of consecutive failed logins after which an
// account is blocked.
const MaxFailedLogins = 3

// User is an identity record. Users are never hard-deleted; inactive
// accounts carry a non-active status instead.
type User struct {
	ID                  int64           `json:"id"`
	Email               string          `json:"email"`
	PasswordHash        string          `json:"-"`
	FullName            string          `json:"full_name"`
	IsEmployee          bool            `json:"is_employee"`
	IsAdmin             bool            `json:"is_admin"`
	AccountStatus       string          `json:"account_status"`
	FailedLoginAttempts int             `json:"-"`
	WalletBalance       decimal.Decimal `json:"wallet_balance"`
	LastLoginAt         *time.Time      `json:"last_login_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID            int64           `json:"id"`
	Email         string          `json:"email"`
	FullName      string          `json:"full_name"`
	IsEmployee    bool            `json:"is_employee"`
	AccountStatus string          `json:"account_status"`
	WalletBalance decimal.Decimal `json:"wallet_balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
