package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

type mockSource struct {
	CountUsersFunc          func(ctx context.Context) (stats.UserCounts, error)
	CountMediaFunc          func(ctx context.Context) (stats.MediaCounts, error)
	CountLoansFunc          func(ctx context.Context, now time.Time) (stats.LoanCounts, error)
	TopBorrowedFunc         func(ctx context.Context, limit int) ([]stats.BorrowedMedia, error)
	OutstandingLateDaysFunc func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockSource) CountUsers(ctx context.Context) (stats.UserCounts, error) {
	return m.CountUsersFunc(ctx)
}

func (m *mockSource) CountMedia(ctx context.Context) (stats.MediaCounts, error) {
	return m.CountMediaFunc(ctx)
}

func (m *mockSource) CountLoans(ctx context.Context, now time.Time) (stats.LoanCounts, error) {
	return m.CountLoansFunc(ctx, now)
}

func (m *mockSource) TopBorrowed(ctx context.Context, limit int) ([]stats.BorrowedMedia, error) {
	return m.TopBorrowedFunc(ctx, limit)
}

func (m *mockSource) OutstandingLateDays(ctx context.Context, now time.Time) (int64, error) {
	return m.OutstandingLateDaysFunc(ctx, now)
}

func healthySource() *mockSource {
	return &mockSource{
		CountUsersFunc: func(context.Context) (stats.UserCounts, error) {
			return stats.UserCounts{Total: 10, Active: 8}, nil
		},
		CountMediaFunc: func(context.Context) (stats.MediaCounts, error) {
			return stats.MediaCounts{Total: 4, ByType: map[media.Type]int64{media.TypeBook: 3, media.TypeMovie: 1}, Available: 2, OnLoan: 2}, nil
		},
		CountLoansFunc: func(context.Context, time.Time) (stats.LoanCounts, error) {
			return stats.LoanCounts{Active: 2, Overdue: 1, Returned: 7}, nil
		},
		TopBorrowedFunc: func(_ context.Context, limit int) ([]stats.BorrowedMedia, error) {
			return []stats.BorrowedMedia{{MediaID: "med_dune", Title: "Dune", Type: media.TypeBook, Loans: 6}}, nil
		},
		OutstandingLateDaysFunc: func(context.Context, time.Time) (int64, error) {
			return 3, nil
		},
	}
}

func TestDashboardAggregates(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	src := healthySource()
	var gotLimit int
	top := src.TopBorrowedFunc
	src.TopBorrowedFunc = func(ctx context.Context, limit int) ([]stats.BorrowedMedia, error) {
		gotLimit = limit
		return top(ctx, limit)
	}

	svc := stats.NewService(src, decimal.RequireFromString("0.50"), zerolog.Nop())
	d, err := svc.Dashboard(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, stats.TopBorrowedLimit, gotLimit)
	assert.Equal(t, int64(8), d.Users.Active)
	assert.Equal(t, int64(1), d.Loans.Overdue)
	assert.Equal(t, int64(0), d.Media.ByType[media.TypeMusic], "missing types are reported as zero")
	assert.Len(t, d.Media.ByType, len(media.Types))
	assert.Len(t, d.TopBorrowed, 1)
	assert.True(t, decimal.RequireFromString("1.50").Equal(d.OutstandingLateFee))
	assert.Equal(t, now, d.GeneratedAt)
}

func TestDashboardFailsWhenAnyQueryFails(t *testing.T) {
	src := healthySource()
	src.CountLoansFunc = func(context.Context, time.Time) (stats.LoanCounts, error) {
		return stats.LoanCounts{}, errors.New("statement timeout")
	}

	svc := stats.NewService(src, decimal.Zero, zerolog.Nop())
	_, err := svc.Dashboard(context.Background(), time.Now())
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
}
