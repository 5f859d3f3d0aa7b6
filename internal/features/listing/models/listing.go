package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PublishedService is an active, requestable listing. It is created exactly
// once, at application approval, and keeps an immutable link back to its
// originating application.
type PublishedService struct {
	ID            int64           `json:"id"`
	ApplicationID int64           `json:"application_id"`
	UserID        int64           `json:"user_id"`
	GameID        int64           `json:"game_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Coach is the public directory entry for an employee.
type Coach struct {
	UserID          int64     `json:"user_id"`
	FullName        string    `json:"full_name"`
	Bio             string    `json:"bio"`
	Specializations []string  `json:"specializations"`
	AverageRating   float64   `json:"average_rating"`
	ReviewCount     int64     `json:"review_count"`
	JoinedAt        time.Time `json:"joined_at"`
}

type AddSpecializationRequest struct {
	Name string `json:"name" binding:"required"`
}

// ServiceFilter narrows the public service listing.
type ServiceFilter struct {
	GameID int64
	Limit  int
	Offset int
}
