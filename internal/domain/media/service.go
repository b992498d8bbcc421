package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/utils/idgen"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

var tracer = otel.Tracer("library-api/media")

// DefaultCoverMaxBytes caps cover uploads when no limit is configured.
const DefaultCoverMaxBytes = 5 << 20

var allowedCoverTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// CreateParams carries the fields for a new media item.
type CreateParams struct {
	Title       string
	Author      string
	Type        Type
	Description string
	Category    string
	Tags        []string
	ReleaseYear *int
	ISBN        string
	ExternalID  string
}

// UpdateParams carries optional descriptive changes.
type UpdateParams struct {
	Title       *string
	Author      *string
	Type        *Type
	Description *string
	Category    *string
	Tags        *[]string
	ReleaseYear *int
	ISBN        *string
	ExternalID  *string
}

// Service defines catalog operations.
type Service interface {
	Create(ctx context.Context, params CreateParams) (*Media, error)
	Get(ctx context.Context, id string) (*Media, error)
	Update(ctx context.Context, id string, params UpdateParams) (*Media, error)
	List(ctx context.Context, filter *Filter) ([]*Media, int64, error)
	Categories(ctx context.Context) ([]string, error)
	Tags(ctx context.Context) ([]string, error)
	DeleteMediaCascade(ctx context.Context, id string) error
	UploadCover(ctx context.Context, id string, body io.Reader) (*Media, error)
	CoverURL(m *Media) string
}

// Config tunes the catalog service.
type Config struct {
	CoverMaxBytes int64
}

// DefaultService implements Service.
type DefaultService struct {
	repo    Repository
	loans   LoanStore
	reviews ReviewStore
	covers  CoverStorage
	tx      domain.Transactor
	cfg     Config
	now     domain.Clock
	log     zerolog.Logger
}

// NewService creates the catalog service.
func NewService(repo Repository, loans LoanStore, reviews ReviewStore, covers CoverStorage, tx domain.Transactor, cfg Config, log zerolog.Logger) *DefaultService {
	if cfg.CoverMaxBytes <= 0 {
		cfg.CoverMaxBytes = DefaultCoverMaxBytes
	}
	return &DefaultService{
		repo:    repo,
		loans:   loans,
		reviews: reviews,
		covers:  covers,
		tx:      tx,
		cfg:     cfg,
		now:     time.Now,
		log:     log.With().Str("component", "media-service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *DefaultService) WithClock(clock domain.Clock) *DefaultService {
	s.now = clock
	return s
}

// Create adds a new, available media item.
func (s *DefaultService) Create(ctx context.Context, params CreateParams) (*Media, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title is required", nil, "media-create-title-001")
	}
	if !params.Type.IsValid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unsupported media type %q", params.Type), nil, "media-create-type-001")
	}

	now := s.now().UTC()
	m := &Media{
		ID:          idgen.New(idgen.PrefixMedia),
		Title:       title,
		Author:      strings.TrimSpace(params.Author),
		Type:        params.Type,
		Description: strings.TrimSpace(params.Description),
		Category:    strings.TrimSpace(params.Category),
		Tags:        NormalizeTags(params.Tags),
		ReleaseYear: params.ReleaseYear,
		ISBN:        strings.TrimSpace(params.ISBN),
		ExternalID:  strings.TrimSpace(params.ExternalID),
		Available:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to create media")
	}
	s.log.Info().Str("media_id", m.ID).Str("type", string(m.Type)).Msg("media created")
	return m, nil
}

// Get returns a media item.
func (s *DefaultService) Get(ctx context.Context, id string) (*Media, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to get media")
	}
	return m, nil
}

// Update applies descriptive changes.
func (s *DefaultService) Update(ctx context.Context, id string, params UpdateParams) (*Media, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load media for update")
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "title cannot be empty", nil, "media-update-title-001")
		}
		m.Title = title
	}
	if params.Type != nil {
		if !params.Type.IsValid() {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unsupported media type %q", *params.Type), nil, "media-update-type-001")
		}
		m.Type = *params.Type
	}
	if params.Author != nil {
		m.Author = strings.TrimSpace(*params.Author)
	}
	if params.Description != nil {
		m.Description = strings.TrimSpace(*params.Description)
	}
	if params.Category != nil {
		m.Category = strings.TrimSpace(*params.Category)
	}
	if params.Tags != nil {
		m.Tags = NormalizeTags(*params.Tags)
	}
	if params.ReleaseYear != nil {
		m.ReleaseYear = params.ReleaseYear
	}
	if params.ISBN != nil {
		m.ISBN = strings.TrimSpace(*params.ISBN)
	}
	if params.ExternalID != nil {
		m.ExternalID = strings.TrimSpace(*params.ExternalID)
	}
	m.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update media")
	}
	return m, nil
}

// List returns catalog items.
func (s *DefaultService) List(ctx context.Context, filter *Filter) ([]*Media, int64, error) {
	if filter == nil {
		filter = NewFilter()
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list media")
	}
	return items, total, nil
}

// Categories lists categories in use.
func (s *DefaultService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list categories")
	}
	return categories, nil
}

// Tags lists tags in use.
func (s *DefaultService) Tags(ctx context.Context) ([]string, error) {
	tags, err := s.repo.DistinctTags(ctx)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list tags")
	}
	return tags, nil
}

// DeleteMediaCascade removes a media item with its loan history and reviews.
// It refuses while any loan on the item is not returned.
func (s *DefaultService) DeleteMediaCascade(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "media.delete_cascade")
	span.SetAttributes(attribute.String("media.id", id))
	defer span.End()

	var coverKey string
	var removedLoans int64
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		m, err := s.repo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		coverKey = m.CoverKey

		active, err := s.loans.CountActiveByMedia(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
				"media has loans that are not returned", nil, "media-delete-active-loans-001",
				map[string]any{"media_id": id, "active_loans": active})
		}

		if removedLoans, err = s.loans.DeleteByMedia(ctx, id); err != nil {
			return err
		}
		if _, err := s.reviews.DeleteByMedia(ctx, id); err != nil {
			return err
		}
		return s.repo.Delete(ctx, id)
	})
	if err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to delete media")
	}

	if coverKey != "" && s.covers != nil {
		if err := s.covers.Delete(ctx, coverKey); err != nil {
			s.log.Warn().Err(err).Str("media_id", id).Str("cover_key", coverKey).Msg("failed to remove cover object")
		}
	}

	s.log.Info().Str("media_id", id).Int64("loans_removed", removedLoans).Msg("media deleted")
	return nil
}

// UploadCover sniffs, validates and stores a cover image for the media item.
func (s *DefaultService) UploadCover(ctx context.Context, id string, body io.Reader) (*Media, error) {
	if s.covers == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "cover storage is not configured", nil, "media-cover-storage-001")
	}

	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load media for cover upload")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.CoverMaxBytes+1))
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "failed to read cover upload", err, "media-cover-read-001")
	}
	if len(data) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "cover upload is empty", nil, "media-cover-empty-001")
	}
	if int64(len(data)) > s.cfg.CoverMaxBytes {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("cover exceeds %d bytes", s.cfg.CoverMaxBytes), nil, "media-cover-size-001")
	}

	mime := mimetype.Detect(data)
	if _, ok := allowedCoverTypes[mime.String()]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported cover type %s", mime.String()), nil, "media-cover-type-001")
	}

	key := "covers/" + m.ID + mime.Extension()
	if err := s.covers.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), mime.String()); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "failed to store cover", err, "media-cover-upload-001")
	}

	previous := m.CoverKey
	m.CoverKey = key
	m.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to record cover")
	}

	if previous != "" && previous != key {
		if err := s.covers.Delete(ctx, previous); err != nil {
			s.log.Warn().Err(err).Str("cover_key", previous).Msg("failed to remove replaced cover")
		}
	}
	return m, nil
}

// CoverURL returns the public URL of the cover, or "" when there is none.
func (s *DefaultService) CoverURL(m *Media) string {
	if m == nil || m.CoverKey == "" || s.covers == nil {
		return ""
	}
	return s.covers.PublicURL(m.CoverKey)
}
