package dbschema

import (
	"time"

	"github.com/janhq/library-api/internal/domain/review"
)

// Review represents the database schema for reviews
type Review struct {
	ID        string `gorm:"primaryKey;size:40"`
	UserID    string `gorm:"size:40;not null;uniqueIndex:idx_reviews_user_media"`
	MediaID   string `gorm:"size:40;not null;uniqueIndex:idx_reviews_user_media"`
	Rating    int    `gorm:"type:smallint;not null"`
	Comment   string `gorm:"type:text;not null;default:''"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Review) TableName() string {
	return "reviews"
}

// ReviewWithAuthor is a review joined with its author's name.
type ReviewWithAuthor struct {
	Review
	UserName string
}

// EtoD converts database schema to domain review (Entity to Domain)
func (r *ReviewWithAuthor) EtoD() *review.Review {
	return &review.Review{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		MediaID:   r.MediaID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// ReviewDtoE converts domain review to database schema (Domain to Entity)
func ReviewDtoE(r *review.Review) *Review {
	return &Review{
		ID:        r.ID,
		UserID:    r.UserID,
		MediaID:   r.MediaID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
