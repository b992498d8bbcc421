// Package stats builds the admin dashboard.
package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// TopBorrowedLimit is the size of the most borrowed list.
const TopBorrowedLimit = 5

// UserCounts splits accounts by activation.
type UserCounts struct {
	Total  int64
	Active int64
}

// MediaCounts describes the catalog.
type MediaCounts struct {
	Total     int64
	ByType    map[media.Type]int64
	Available int64
	OnLoan    int64
}

// LoanCounts describes loans at an instant.
type LoanCounts struct {
	Active   int64
	Overdue  int64
	Returned int64
}

// BorrowedMedia is one entry of the most borrowed list.
type BorrowedMedia struct {
	MediaID string
	Title   string
	Type    media.Type
	Loans   int64
}

// Dashboard is the admin overview.
type Dashboard struct {
	GeneratedAt        time.Time
	Users              UserCounts
	Media              MediaCounts
	Loans              LoanCounts
	TopBorrowed        []BorrowedMedia
	OutstandingLateFee decimal.Decimal
}

// Source runs the aggregate queries.
type Source interface {
	CountUsers(ctx context.Context) (UserCounts, error)
	CountMedia(ctx context.Context) (MediaCounts, error)
	CountLoans(ctx context.Context, now time.Time) (LoanCounts, error)
	TopBorrowed(ctx context.Context, limit int) ([]BorrowedMedia, error)
	// OutstandingLateDays sums whole days late over loans that are overdue at now.
	OutstandingLateDays(ctx context.Context, now time.Time) (int64, error)
}

// Service builds dashboards.
type Service interface {
	Dashboard(ctx context.Context, now time.Time) (*Dashboard, error)
}

// DefaultService implements Service.
type DefaultService struct {
	source        Source
	lateFeePerDay decimal.Decimal
	log           zerolog.Logger
}

// NewService creates the dashboard service.
func NewService(source Source, lateFeePerDay decimal.Decimal, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		source:        source,
		lateFeePerDay: lateFeePerDay,
		log:           log.With().Str("component", "stats-service").Logger(),
	}
}

// Dashboard runs every aggregate concurrently and fails if any of them fails.
func (s *DefaultService) Dashboard(ctx context.Context, now time.Time) (*Dashboard, error) {
	d := &Dashboard{GeneratedAt: now.UTC()}
	var lateDays int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Users, err = s.source.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Media, err = s.source.CountMedia(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Loans, err = s.source.CountLoans(gctx, now)
		return err
	})
	g.Go(func() (err error) {
		d.TopBorrowed, err = s.source.TopBorrowed(gctx, TopBorrowedLimit)
		return err
	})
	g.Go(func() (err error) {
		lateDays, err = s.source.OutstandingLateDays(gctx, now)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Error().Err(err).Msg("dashboard aggregation failed")
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to build dashboard")
	}

	if d.Media.ByType == nil {
		d.Media.ByType = map[media.Type]int64{}
	}
	for _, t := range media.Types {
		if _, ok := d.Media.ByType[t]; !ok {
			d.Media.ByType[t] = 0
		}
	}
	if d.TopBorrowed == nil {
		d.TopBorrowed = []BorrowedMedia{}
	}
	d.OutstandingLateFee = s.lateFeePerDay.Mul(decimal.NewFromInt(lateDays))
	return d, nil
}
