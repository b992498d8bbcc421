package statsrepo

import (
	"context"
	"time"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/domain/stats"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

// StatsGormRepository runs the dashboard aggregates.
type StatsGormRepository struct {
	db *transaction.Database
}

var _ stats.Source = (*StatsGormRepository)(nil)

func NewStatsGormRepository(db *transaction.Database) *StatsGormRepository {
	return &StatsGormRepository{db: db}
}

// CountUsers implements stats.Source.
func (repo *StatsGormRepository) CountUsers(ctx context.Context) (stats.UserCounts, error) {
	var counts stats.UserCounts
	err := repo.db.GetTx(ctx).
		Raw("SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE active) AS active FROM users").
		Scan(&counts).Error
	if err != nil {
		return stats.UserCounts{}, database.TranslateError(ctx, err, "failed to count users", "stats-repo-users-001")
	}
	return counts, nil
}

// CountMedia implements stats.Source.
func (repo *StatsGormRepository) CountMedia(ctx context.Context) (stats.MediaCounts, error) {
	var rows []struct {
		Type      string
		Total     int64
		Available int64
	}
	err := repo.db.GetTx(ctx).
		Raw("SELECT type, COUNT(*) AS total, COUNT(*) FILTER (WHERE available) AS available FROM media GROUP BY type").
		Scan(&rows).Error
	if err != nil {
		return stats.MediaCounts{}, database.TranslateError(ctx, err, "failed to count media", "stats-repo-media-001")
	}

	counts := stats.MediaCounts{ByType: make(map[media.Type]int64, len(rows))}
	for _, row := range rows {
		counts.ByType[media.Type(row.Type)] = row.Total
		counts.Total += row.Total
		counts.Available += row.Available
	}
	counts.OnLoan = counts.Total - counts.Available
	return counts, nil
}

// CountLoans implements stats.Source.
func (repo *StatsGormRepository) CountLoans(ctx context.Context, now time.Time) (stats.LoanCounts, error) {
	var counts stats.LoanCounts
	err := repo.db.GetTx(ctx).
		Raw(`SELECT
			COUNT(*) FILTER (WHERE status <> ?) AS active,
			COUNT(*) FILTER (WHERE status <> ? AND due_at < ?) AS overdue,
			COUNT(*) FILTER (WHERE status = ?) AS returned
		FROM loans`,
			string(loan.StatusReturned), string(loan.StatusReturned), now, string(loan.StatusReturned)).
		Scan(&counts).Error
	if err != nil {
		return stats.LoanCounts{}, database.TranslateError(ctx, err, "failed to count loans", "stats-repo-loans-001")
	}
	return counts, nil
}

// TopBorrowed implements stats.Source.
func (repo *StatsGormRepository) TopBorrowed(ctx context.Context, limit int) ([]stats.BorrowedMedia, error) {
	var rows []struct {
		MediaID string
		Title   string
		Type    string
		Loans   int64
	}
	err := repo.db.GetTx(ctx).
		Raw(`SELECT media.id AS media_id, media.title, media.type, COUNT(loans.id) AS loans
		FROM loans JOIN media ON media.id = loans.media_id
		GROUP BY media.id, media.title, media.type
		ORDER BY loans DESC, media.title ASC
		LIMIT ?`, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to rank media", "stats-repo-top-001")
	}

	result := make([]stats.BorrowedMedia, len(rows))
	for i, row := range rows {
		result[i] = stats.BorrowedMedia{MediaID: row.MediaID, Title: row.Title, Type: media.Type(row.Type), Loans: row.Loans}
	}
	return result, nil
}

// OutstandingLateDays implements stats.Source.
func (repo *StatsGormRepository) OutstandingLateDays(ctx context.Context, now time.Time) (int64, error) {
	var days int64
	err := repo.db.GetTx(ctx).
		Raw(`SELECT COALESCE(SUM(FLOOR(EXTRACT(EPOCH FROM (?::timestamptz - due_at)) / 86400)), 0)::bigint
		FROM loans WHERE status <> ? AND due_at < ?`,
			now, string(loan.StatusReturned), now).
		Scan(&days).Error
	if err != nil {
		return 0, database.TranslateError(ctx, err, "failed to sum late days", "stats-repo-late-001")
	}
	return days, nil
}
