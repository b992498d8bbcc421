package responses

import (
	"time"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/review"
)

// MediaResponse is a catalog item as returned to clients.
type MediaResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Type        string    `json:"type"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	Tags        []string  `json:"tags"`
	ReleaseYear *int      `json:"releaseYear,omitempty"`
	ISBN        string    `json:"isbn,omitempty"`
	ExternalID  string    `json:"externalId,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	Available   bool      `json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MapMediaToResponse converts a media item; coverURL is the resolved cover link.
func MapMediaToResponse(m *media.Media, coverURL string) MediaResponse {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return MediaResponse{
		ID:          m.ID,
		Title:       m.Title,
		Author:      m.Author,
		Type:        string(m.Type),
		Description: m.Description,
		Category:    m.Category,
		Tags:        tags,
		ReleaseYear: m.ReleaseYear,
		ISBN:        m.ISBN,
		ExternalID:  m.ExternalID,
		CoverURL:    coverURL,
		Available:   m.Available,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// ReviewResponse is a review as returned to clients.
type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	MediaID   string    `json:"mediaId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapReviewToResponse converts a review.
func MapReviewToResponse(r *review.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		MediaID:   r.MediaID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

// ReviewListResponse is the paginated review list with the rating summary.
type ReviewListResponse struct {
	ListResponse[ReviewResponse]
	AverageRating string `json:"averageRating"`
	ReviewCount   int64  `json:"reviewCount"`
}

// NewReviewListResponse combines a review page with its summary.
func NewReviewListResponse(items []*review.Review, summary *review.Summary, page, limit int, total int64) ReviewListResponse {
	return ReviewListResponse{
		ListResponse:  NewListResponse(MapSlice(items, MapReviewToResponse), page, limit, total),
		AverageRating: summary.Average.StringFixed(2),
		ReviewCount:   summary.Count,
	}
}
