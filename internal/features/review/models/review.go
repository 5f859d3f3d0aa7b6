package models

import "time"

// Review is the requester's rating of a coach for one closed request. One
// review per request.
type Review struct {
	ID         int64     `json:"id"`
	RequestID  int64     `json:"request_id"`
	CoachID    int64     `json:"coach_id"`
	ReviewerID int64     `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type CreateReviewRequest struct {
	RequestID int64  `json:"request_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}
