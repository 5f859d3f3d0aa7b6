package models

import "fmt"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

// AuthResponse returns the signed session token together with the
// authenticated identity.
type AuthResponse struct {
	Token   string      `json:"token"`
	Account interface{} `json:"account"`
}

// LoginError reports an authentication failure. AttemptsRemaining lets a
// client warn the user before lockout; it is absent once the account is
// blocked.
type LoginError struct {
	Message           string
	AttemptsRemaining int
	Blocked           bool
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("%s (attempts remaining: %d)", e.Message, e.AttemptsRemaining)
}

// StatusError reports a login attempt against a non-active account,
// naming the status.
type StatusError struct {
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("account is %s", e.Status)
}
