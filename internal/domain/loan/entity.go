package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/janhq/library-api/internal/domain/media"
)

// Status is the lifecycle state of a loan.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	// StatusOverdue is derived from the due date at read time and never stored.
	StatusOverdue Status = "overdue"
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid loan status transition")

// ParseStatus reports whether raw names a status usable as a list filter.
func ParseStatus(raw string) (Status, bool) {
	s := Status(raw)
	switch s {
	case StatusBorrowed, StatusReturned, StatusOverdue:
		return s, true
	}
	return s, false
}

// ValidTransitions defines allowed stored transitions.
var ValidTransitions = map[Status][]Status{
	StatusBorrowed: {StatusReturned},
	StatusReturned: {},
}

// CanTransitionTo checks if a transition from s to target is valid.
func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range ValidTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// Loan records a borrower holding a media item.
type Loan struct {
	ID                    string
	UserID                string
	MediaID               string
	BorrowedAt            time.Time
	DueAt                 time.Time
	ReturnedAt            *time.Time
	Status                Status
	LastDueSoonNotifiedAt *time.Time
	LastLateNotifiedAt    *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsReturned reports whether the loan has been finalized.
func (l *Loan) IsReturned() bool {
	return l.Status == StatusReturned
}

// IsOverdue reports whether the loan is not returned and past its due time.
func (l *Loan) IsOverdue(now time.Time) bool {
	return !l.IsReturned() && l.DueAt.Before(now)
}

// EffectiveStatus returns the stored status with overdue derived from now.
func (l *Loan) EffectiveStatus(now time.Time) Status {
	if l.IsReturned() {
		return StatusReturned
	}
	if l.IsOverdue(now) {
		return StatusOverdue
	}
	return StatusBorrowed
}

// MarkReturned finalizes the loan.
func (l *Loan) MarkReturned(at time.Time) error {
	if !l.Status.CanTransitionTo(StatusReturned) {
		return ErrInvalidTransition
	}
	l.Status = StatusReturned
	l.ReturnedAt = &at
	l.UpdatedAt = at
	return nil
}

// DaysLate counts whole days between the due time and the return, or now while still out.
func (l *Loan) DaysLate(now time.Time) int {
	end := now
	if l.ReturnedAt != nil {
		end = *l.ReturnedAt
	}
	if !end.After(l.DueAt) {
		return 0
	}
	return int(end.Sub(l.DueAt) / (24 * time.Hour))
}

// LateFee is DaysLate times the daily rate.
func (l *Loan) LateFee(now time.Time, perDay decimal.Decimal) decimal.Decimal {
	return perDay.Mul(decimal.NewFromInt(int64(l.DaysLate(now))))
}

// MediaSummary is the part of a media item shown alongside a loan.
type MediaSummary struct {
	ID       string
	Title    string
	Author   string
	Type     media.Type
	CoverKey string
}

// BorrowerSummary is the part of a user shown alongside a loan.
type BorrowerSummary struct {
	ID     string
	Name   string
	Email  string
	Active bool
}

// View is a loan joined with its media and borrower.
type View struct {
	Loan
	Media    MediaSummary
	Borrower BorrowerSummary

	// Filled by the service from its clock and fee policy.
	EffectiveStatus Status
	DaysLate        int
	LateFee         decimal.Decimal
}
