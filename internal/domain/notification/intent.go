package notification

import (
	"errors"
	"time"

	"github.com/janhq/library-api/internal/utils/idgen"
)

// Kind names the notification template.
type Kind string

const (
	KindBorrowConfirmation Kind = "borrow_confirmation"
	KindReturnConfirmation Kind = "return_confirmation"
	KindDueSoon            Kind = "due_soon"
	KindLate               Kind = "late"
)

// IsValid reports whether k is a known kind.
func (k Kind) IsValid() bool {
	switch k {
	case KindBorrowConfirmation, KindReturnConfirmation, KindDueSoon, KindLate:
		return true
	}
	return false
}

// Status is the delivery state of an intent.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// ErrInvalidTransition is returned when a status transition is not allowed.
var ErrInvalidTransition = errors.New("invalid notification status transition")

// IsTerminal reports whether no further delivery will be attempted.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed
}

// ValidTransitions defines allowed status transitions.
var ValidTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing},
	StatusProcessing: {StatusSent, StatusPending, StatusFailed},
	StatusSent:       {},
	StatusFailed:     {},
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

// Intent is a queued notification waiting for delivery.
type Intent struct {
	ID            string
	Kind          Kind
	LoanID        string
	Recipient     Recipient
	Media         MediaDescriptor
	Status        Status
	Attempts      int
	MaxAttempts   int
	NextAttemptAt time.Time
	LastError     string
	SentAt        *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewIntent builds a pending intent that is due immediately.
func NewIntent(kind Kind, loanID string, to Recipient, item MediaDescriptor, now time.Time) *Intent {
	now = now.UTC()
	return &Intent{
		ID:            idgen.New(idgen.PrefixNotification),
		Kind:          kind,
		LoanID:        loanID,
		Recipient:     to,
		Media:         item,
		Status:        StatusPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
