package media

import (
	"context"
	"io"
)

// Repository defines persistence operations for media items.
type Repository interface {
	// Create persists a new media item.
	Create(ctx context.Context, m *Media) error

	// FindByID returns a media item or a NOT_FOUND error.
	FindByID(ctx context.Context, id string) (*Media, error)

	// LockByID returns a media item and holds a row lock until the surrounding transaction ends.
	LockByID(ctx context.Context, id string) (*Media, error)

	// Update persists descriptive fields. Availability is not touched.
	Update(ctx context.Context, m *Media) error

	// Delete removes a media item.
	Delete(ctx context.Context, id string) error

	// List returns media items matching the filter with the total count.
	List(ctx context.Context, filter *Filter) ([]*Media, int64, error)

	// ClaimAvailability flips available from true to false.
	// It reports false when the item was already unavailable.
	ClaimAvailability(ctx context.Context, id string) (bool, error)

	// ReleaseAvailability marks the item available again.
	ReleaseAvailability(ctx context.Context, id string) error

	// DistinctCategories lists categories in use.
	DistinctCategories(ctx context.Context) ([]string, error)

	// DistinctTags lists tags in use.
	DistinctTags(ctx context.Context) ([]string, error)
}

// LoanStore is the slice of loan persistence the cascade delete needs.
type LoanStore interface {
	CountActiveByMedia(ctx context.Context, mediaID string) (int64, error)
	DeleteByMedia(ctx context.Context, mediaID string) (int64, error)
}

// ReviewStore is the slice of review persistence the cascade delete needs.
type ReviewStore interface {
	DeleteByMedia(ctx context.Context, mediaID string) (int64, error)
}

// CoverStorage stores cover images.
type CoverStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
