package loan

import (
	"time"

	"github.com/janhq/library-api/internal/domain/media"
)

// Filter narrows loan listings. Status may be the derived StatusOverdue.
type Filter struct {
	UserID    *string
	MediaID   *string
	Status    *Status
	MediaType *media.Type
	Search    string
	// Now is the instant the overdue predicate is evaluated at.
	Now    time.Time
	Limit  int
	Offset int
}

// NewFilter creates a filter with the default page size.
func NewFilter() *Filter {
	return &Filter{Limit: 10}
}

// WithUserID restricts results to one borrower.
func (f *Filter) WithUserID(userID string) *Filter {
	f.UserID = &userID
	return f
}

// WithMediaID restricts results to one media item.
func (f *Filter) WithMediaID(mediaID string) *Filter {
	f.MediaID = &mediaID
	return f
}

// WithStatus restricts results by stored or derived status.
func (f *Filter) WithStatus(status Status) *Filter {
	f.Status = &status
	return f
}

// WithMediaType restricts results to a media type.
func (f *Filter) WithMediaType(t media.Type) *Filter {
	f.MediaType = &t
	return f
}

// WithSearch matches media title or author, case-insensitively.
func (f *Filter) WithSearch(search string) *Filter {
	f.Search = search
	return f
}

// WithPagination sets limit and offset.
func (f *Filter) WithPagination(limit, offset int) *Filter {
	f.Limit = limit
	f.Offset = offset
	return f
}
