package dbschema

import (
	"time"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
)

// Loan represents the database schema for loans
type Loan struct {
	ID                    string    `gorm:"primaryKey;size:40"`
	UserID                string    `gorm:"size:40;not null;index:idx_loans_user"`
	MediaID               string    `gorm:"size:40;not null;index:idx_loans_media"`
	BorrowedAt            time.Time `gorm:"not null"`
	DueAt                 time.Time `gorm:"not null"`
	ReturnedAt            *time.Time
	Status                string `gorm:"size:16;not null;default:borrowed"`
	LastDueSoonNotifiedAt *time.Time
	LastLateNotifiedAt    *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Loan) TableName() string {
	return "loans"
}

// EtoD converts database schema to domain loan (Entity to Domain)
func (l *Loan) EtoD() *loan.Loan {
	return &loan.Loan{
		ID:                    l.ID,
		UserID:                l.UserID,
		MediaID:               l.MediaID,
		BorrowedAt:            l.BorrowedAt,
		DueAt:                 l.DueAt,
		ReturnedAt:            l.ReturnedAt,
		Status:                loan.Status(l.Status),
		LastDueSoonNotifiedAt: l.LastDueSoonNotifiedAt,
		LastLateNotifiedAt:    l.LastLateNotifiedAt,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

// LoanDtoE converts domain loan to database schema (Domain to Entity)
func LoanDtoE(l *loan.Loan) *Loan {
	return &Loan{
		ID:                    l.ID,
		UserID:                l.UserID,
		MediaID:               l.MediaID,
		BorrowedAt:            l.BorrowedAt,
		DueAt:                 l.DueAt,
		ReturnedAt:            l.ReturnedAt,
		Status:                string(l.Status),
		LastDueSoonNotifiedAt: l.LastDueSoonNotifiedAt,
		LastLateNotifiedAt:    l.LastLateNotifiedAt,
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}
}

// LoanViewColumns selects a loan joined with media and users.
const LoanViewColumns = `loans.*,
	media.title AS media_title, media.author AS media_author, media.type AS media_type, media.cover_key AS media_cover_key,
	users.name AS user_name, users.email AS user_email, users.active AS user_active`

// LoanView is a loan row joined with its media and borrower.
type LoanView struct {
	Loan
	MediaTitle    string
	MediaAuthor   string
	MediaType     string
	MediaCoverKey string
	UserName      string
	UserEmail     string
	UserActive    bool
}

// EtoD converts the joined row to a domain view.
func (v *LoanView) EtoD() *loan.View {
	return &loan.View{
		Loan: *v.Loan.EtoD(),
		Media: loan.MediaSummary{
			ID:       v.MediaID,
			Title:    v.MediaTitle,
			Author:   v.MediaAuthor,
			Type:     media.Type(v.MediaType),
			CoverKey: v.MediaCoverKey,
		},
		Borrower: loan.BorrowerSummary{
			ID:     v.UserID,
			Name:   v.UserName,
			Email:  v.UserEmail,
			Active: v.UserActive,
		},
	}
}
