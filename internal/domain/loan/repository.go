package loan

import (
	"context"
	"time"
)

// Repository defines persistence operations for loans.
type Repository interface {
	// Create persists a new loan.
	Create(ctx context.Context, l *Loan) error

	// FindViewByID returns a loan joined with media and borrower, or NOT_FOUND.
	FindViewByID(ctx context.Context, id string) (*View, error)

	// MarkReturned sets status=returned and returned_at when the loan is not returned yet.
	// It reports false when the loan was already returned.
	MarkReturned(ctx context.Context, id string, at time.Time) (bool, error)

	// List returns loans matching the filter, ordered by borrowed_at desc then id desc,
	// with the total count before pagination.
	List(ctx context.Context, filter *Filter) ([]*View, int64, error)

	// ListActive returns every loan with status=borrowed.
	ListActive(ctx context.Context) ([]*View, error)

	// ClaimDueSoonReminder stamps last_due_soon_notified_at when it is unset and the
	// loan is still borrowed. It reports whether the stamp was written.
	ClaimDueSoonReminder(ctx context.Context, id string, at time.Time) (bool, error)

	// ClaimLateReminder stamps last_late_notified_at when it is unset or earlier than
	// since and the loan is still borrowed. It reports whether the stamp was written.
	ClaimLateReminder(ctx context.Context, id string, at, since time.Time) (bool, error)

	// CountActiveByMedia counts loans on the media item that are not returned.
	CountActiveByMedia(ctx context.Context, mediaID string) (int64, error)

	// DeleteByMedia removes every loan on the media item.
	DeleteByMedia(ctx context.Context, mediaID string) (int64, error)
}
