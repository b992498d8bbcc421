// Package catalog searches external catalogs for media metadata.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 40
)

// Result is one external catalog hit, shaped to prefill a media item.
type Result struct {
	Source      string     `json:"source"`
	ExternalID  string     `json:"externalId"`
	Type        media.Type `json:"type"`
	Title       string     `json:"title"`
	Author      string     `json:"author,omitempty"`
	Description string     `json:"description,omitempty"`
	ReleaseYear *int       `json:"releaseYear,omitempty"`
	ISBN        string     `json:"isbn,omitempty"`
	CoverURL    string     `json:"coverUrl,omitempty"`
}

// Provider searches one external catalog.
type Provider interface {
	Name() string
	Search(ctx context.Context, t media.Type, query string, limit int) ([]Result, error)
}

// Service routes searches to the provider of each media type.
type Service interface {
	Search(ctx context.Context, t media.Type, query string, limit int) ([]Result, error)
}

type cacheEntry struct {
	results   []Result
	expiresAt time.Time
}

// DefaultService implements Service with a TTL bounded LRU in front of the providers.
type DefaultService struct {
	providers map[media.Type]Provider
	cache     *lru.Cache
	ttl       time.Duration
	now       domain.Clock
	log       zerolog.Logger
}

// NewService creates the search service. Types without a provider report
// "provider not configured".
func NewService(providers map[media.Type]Provider, cacheSize int, ttl time.Duration, log zerolog.Logger) (*DefaultService, error) {
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create catalog cache: %w", err)
	}
	if providers == nil {
		providers = map[media.Type]Provider{}
	}
	return &DefaultService{
		providers: providers,
		cache:     cache,
		ttl:       ttl,
		now:       time.Now,
		log:       log.With().Str("component", "catalog-service").Logger(),
	}, nil
}

// WithClock overrides the time source.
func (s *DefaultService) WithClock(clock domain.Clock) *DefaultService {
	s.now = clock
	return s
}

// Search queries the catalog for t.
func (s *DefaultService) Search(ctx context.Context, t media.Type, query string, limit int) ([]Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "query is required", nil, "catalog-search-query-001")
	}
	if !t.IsValid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, fmt.Sprintf("unsupported media type %q", t), nil, "catalog-search-type-001")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	limit = min(limit, MaxLimit)

	provider, ok := s.providers[t]
	if !ok || provider == nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "provider not configured", nil, "catalog-search-provider-001")
	}

	key := fmt.Sprintf("%s|%d|%s", t, limit, strings.ToLower(query))
	if cached, ok := s.cache.Get(key); ok {
		entry := cached.(cacheEntry)
		if s.now().Before(entry.expiresAt) {
			return entry.results, nil
		}
		s.cache.Remove(key)
	}

	results, err := provider.Search(ctx, t, query, limit)
	if err != nil {
		s.log.Warn().Err(err).Str("provider", provider.Name()).Str("type", string(t)).Msg("catalog search failed")
		var platformErr *platformerrors.PlatformError
		if errors.As(err, &platformErr) {
			return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "catalog search failed")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeExternal, "catalog search failed", err, "catalog-search-provider-002")
	}
	if results == nil {
		results = []Result{}
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.cache.Add(key, cacheEntry{results: results, expiresAt: s.now().Add(s.ttl)})
	return results, nil
}
