package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/utils/idgen"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// MediaReader checks that the reviewed item exists.
type MediaReader interface {
	FindByID(ctx context.Context, id string) (*media.Media, error)
}

// CreateParams carries the input of Create.
type CreateParams struct {
	UserID  string
	MediaID string
	Rating  int
	Comment string
}

// Service defines review operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Review, error)
	ListByMedia(ctx context.Context, mediaID string, limit, offset int) ([]*Review, int64, error)
	Summary(ctx context.Context, mediaID string) (*Summary, error)
	Delete(ctx context.Context, reviewID string, principal domain.Principal) error
}

// DefaultService implements Service.
type DefaultService struct {
	repo  Repository
	media MediaReader
	now   domain.Clock
	log   zerolog.Logger
}

// NewService creates the review service.
func NewService(repo Repository, mediaReader MediaReader, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		repo:  repo,
		media: mediaReader,
		now:   time.Now,
		log:   log.With().Str("component", "review-service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *DefaultService) WithClock(clock domain.Clock) *DefaultService {
	s.now = clock
	return s
}

// Create records a rating. A member can review an item once.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Review, error) {
	if params.Rating < MinRating || params.Rating > MaxRating {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("rating must be between %d and %d", MinRating, MaxRating), nil, "review-create-rating-001")
	}
	comment := strings.TrimSpace(params.Comment)
	if len(comment) > MaxCommentLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("comment exceeds %d characters", MaxCommentLength), nil, "review-create-comment-001")
	}
	if _, err := s.media.FindByID(ctx, params.MediaID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load media for review")
	}

	now := s.now().UTC()
	r := &Review{
		ID:        idgen.New(idgen.PrefixReview),
		UserID:    params.UserID,
		MediaID:   params.MediaID,
		Rating:    params.Rating,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create review")
	}

	s.log.Info().Str("review_id", r.ID).Str("media_id", r.MediaID).Int("rating", r.Rating).Msg("review created")
	return r, nil
}

// ListByMedia returns the reviews of a media item, newest first.
func (s *DefaultService) ListByMedia(ctx context.Context, mediaID string, limit, offset int) ([]*Review, int64, error) {
	if _, err := s.media.FindByID(ctx, mediaID); err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load media for reviews")
	}
	reviews, total, err := s.repo.ListByMedia(ctx, mediaID, limit, offset)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list reviews")
	}
	return reviews, total, nil
}

// Summary returns the review count and the average rating rounded to two places.
func (s *DefaultService) Summary(ctx context.Context, mediaID string) (*Summary, error) {
	count, sum, err := s.repo.Totals(ctx, mediaID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to summarize reviews")
	}
	summary := &Summary{MediaID: mediaID, Count: count, Average: decimal.Zero}
	if count > 0 {
		summary.Average = decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(count), 2)
	}
	return summary, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *DefaultService) Delete(ctx context.Context, reviewID string, principal domain.Principal) error {
	r, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load review")
	}
	if r.UserID != principal.ID && !principal.IsAdmin() {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeForbidden, "only the author or an admin can delete a review", nil, "review-delete-forbidden-001")
	}
	if err := s.repo.Delete(ctx, reviewID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete review")
	}
	s.log.Info().Str("review_id", reviewID).Str("deleted_by", principal.ID).Msg("review deleted")
	return nil
}
