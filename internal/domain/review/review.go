// Package review manages member ratings of media items.
package review

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
)

// Review is one member's rating of a media item.
type Review struct {
	ID        string
	UserID    string
	UserName  string
	MediaID   string
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary aggregates the ratings of a media item.
type Summary struct {
	MediaID string
	Count   int64
	Average decimal.Decimal
}

// Repository defines persistence operations for reviews.
type Repository interface {
	// Create fails with CONFLICT when the user already reviewed the media item.
	Create(ctx context.Context, r *Review) error
	FindByID(ctx context.Context, id string) (*Review, error)
	// ListByMedia returns reviews newest first with the total count.
	ListByMedia(ctx context.Context, mediaID string, limit, offset int) ([]*Review, int64, error)
	// Totals returns the number of reviews and the sum of their ratings.
	Totals(ctx context.Context, mediaID string) (count int64, sum int64, err error)
	Delete(ctx context.Context, id string) error
	DeleteByMedia(ctx context.Context, mediaID string) (int64, error)
}
