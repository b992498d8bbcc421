package requests

import "time"

// CreateLoanRequest is the body of POST /api/borrow.
type CreateLoanRequest struct {
	UserID  string     `json:"userId" validate:"required"`
	MediaID string     `json:"mediaId" validate:"required"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}
