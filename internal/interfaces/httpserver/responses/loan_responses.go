package responses

import (
	"time"

	"github.com/janhq/library-api/internal/domain/loan"
)

// LoanMediaResponse is the media summary embedded in a loan.
type LoanMediaResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Type     string `json:"type"`
	CoverURL string `json:"coverUrl,omitempty"`
}

// LoanBorrowerResponse is the borrower summary embedded in a loan.
type LoanBorrowerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoanResponse is a loan as returned to clients.
type LoanResponse struct {
	ID              string               `json:"id"`
	UserID          string               `json:"userId"`
	MediaID         string               `json:"mediaId"`
	BorrowedAt      time.Time            `json:"borrowedAt"`
	DueAt           time.Time            `json:"dueAt"`
	ReturnedAt      *time.Time           `json:"returnedAt,omitempty"`
	Status          string               `json:"status"`
	EffectiveStatus string               `json:"effectiveStatus"`
	DaysLate        int                  `json:"daysLate"`
	LateFee         string               `json:"lateFee"`
	Media           LoanMediaResponse    `json:"media"`
	Borrower        LoanBorrowerResponse `json:"borrower"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

// MapLoanToResponse converts a loan view. coverURL resolves cover keys and may be nil.
func MapLoanToResponse(v *loan.View, coverURL func(key string) string) LoanResponse {
	resp := LoanResponse{
		ID:              v.ID,
		UserID:          v.UserID,
		MediaID:         v.MediaID,
		BorrowedAt:      v.BorrowedAt,
		DueAt:           v.DueAt,
		ReturnedAt:      v.ReturnedAt,
		Status:          string(v.Status),
		EffectiveStatus: string(v.EffectiveStatus),
		DaysLate:        v.DaysLate,
		LateFee:         v.LateFee.StringFixed(2),
		Media: LoanMediaResponse{
			ID:     v.Media.ID,
			Title:  v.Media.Title,
			Author: v.Media.Author,
			Type:   string(v.Media.Type),
		},
		Borrower: LoanBorrowerResponse{
			ID:    v.Borrower.ID,
			Name:  v.Borrower.Name,
			Email: v.Borrower.Email,
		},
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
	if coverURL != nil && v.Media.CoverKey != "" {
		resp.Media.CoverURL = coverURL(v.Media.CoverKey)
	}
	return resp
}
