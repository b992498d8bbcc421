package loanrepo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/domain/loan"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/dbschema"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

type LoanGormRepository struct {
	db *transaction.Database
}

var _ loan.Repository = (*LoanGormRepository)(nil)

func NewLoanGormRepository(db *transaction.Database) *LoanGormRepository {
	return &LoanGormRepository{db: db}
}

func (repo *LoanGormRepository) views(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).
		Table("loans").
		Select(dbschema.LoanViewColumns).
		Joins("JOIN media ON media.id = loans.media_id").
		Joins("JOIN users ON users.id = loans.user_id")
}

// Create implements loan.Repository.
func (repo *LoanGormRepository) Create(ctx context.Context, l *loan.Loan) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.LoanDtoE(l)).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create loan", "loan-repo-create-001")
	}
	return nil
}

// FindViewByID implements loan.Repository.
func (repo *LoanGormRepository) FindViewByID(ctx context.Context, id string) (*loan.View, error) {
	var row dbschema.LoanView
	err := repo.views(ctx).Where("loans.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to find loan", "loan-repo-find-001")
	}
	return row.EtoD(), nil
}

// MarkReturned implements loan.Repository.
func (repo *LoanGormRepository) MarkReturned(ctx context.Context, id string, at time.Time) (bool, error) {
	result := repo.db.GetTx(ctx).Model(&dbschema.Loan{}).
		Where("id = ? AND status <> ?", id, string(loan.StatusReturned)).
		Updates(map[string]any{
			"status":      string(loan.StatusReturned),
			"returned_at": at,
			"updated_at":  at,
		})
	if result.Error != nil {
		return false, database.TranslateError(ctx, result.Error, "failed to return loan", "loan-repo-return-001")
	}
	return result.RowsAffected == 1, nil
}

func applyFilter(query *gorm.DB, f *loan.Filter) *gorm.DB {
	if f.UserID != nil {
		query = query.Where("loans.user_id = ?", *f.UserID)
	}
	if f.MediaID != nil {
		query = query.Where("loans.media_id = ?", *f.MediaID)
	}
	if f.Status != nil {
		switch *f.Status {
		case loan.StatusOverdue:
			query = query.Where("loans.status <> ? AND loans.due_at < ?", string(loan.StatusReturned), f.Now)
		default:
			query = query.Where("loans.status = ?", string(*f.Status))
		}
	}
	if f.MediaType != nil {
		query = query.Where("media.type = ?", string(*f.MediaType))
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		query = query.Where("(LOWER(media.title) LIKE ? OR LOWER(media.author) LIKE ?)", pattern, pattern)
	}
	return query
}

// List implements loan.Repository.
func (repo *LoanGormRepository) List(ctx context.Context, f *loan.Filter) ([]*loan.View, int64, error) {
	var total int64
	countQuery := applyFilter(repo.db.GetTx(ctx).Table("loans").
		Joins("JOIN media ON media.id = loans.media_id"), f)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to count loans", "loan-repo-count-001")
	}

	query := applyFilter(repo.views(ctx), f).Order("loans.borrowed_at DESC, loans.id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var rows []dbschema.LoanView
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to list loans", "loan-repo-list-001")
	}

	result := make([]*loan.View, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, total, nil
}

// ListActive implements loan.Repository.
func (repo *LoanGormRepository) ListActive(ctx context.Context) ([]*loan.View, error) {
	var rows []dbschema.LoanView
	err := repo.views(ctx).
		Where("loans.status = ?", string(loan.StatusBorrowed)).
		Order("loans.due_at ASC, loans.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list active loans", "loan-repo-active-001")
	}
	result := make([]*loan.View, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, nil
}

// ClaimDueSoonReminder implements loan.Repository.
func (repo *LoanGormRepository) ClaimDueSoonReminder(ctx context.Context, id string, at time.Time) (bool, error) {
	result := repo.db.GetTx(ctx).Model(&dbschema.Loan{}).
		Where("id = ? AND status = ? AND last_due_soon_notified_at IS NULL", id, string(loan.StatusBorrowed)).
		Update("last_due_soon_notified_at", at)
	if result.Error != nil {
		return false, database.TranslateError(ctx, result.Error, "failed to claim due soon reminder", "loan-repo-claim-001")
	}
	return result.RowsAffected == 1, nil
}

// ClaimLateReminder implements loan.Repository.
func (repo *LoanGormRepository) ClaimLateReminder(ctx context.Context, id string, at, since time.Time) (bool, error) {
	result := repo.db.GetTx(ctx).Model(&dbschema.Loan{}).
		Where("id = ? AND status = ? AND (last_late_notified_at IS NULL OR last_late_notified_at < ?)", id, string(loan.StatusBorrowed), since).
		Update("last_late_notified_at", at)
	if result.Error != nil {
		return false, database.TranslateError(ctx, result.Error, "failed to claim late reminder", "loan-repo-claim-002")
	}
	return result.RowsAffected == 1, nil
}

// CountActiveByMedia implements loan.Repository.
func (repo *LoanGormRepository) CountActiveByMedia(ctx context.Context, mediaID string) (int64, error) {
	var count int64
	err := repo.db.GetTx(ctx).Model(&dbschema.Loan{}).
		Where("media_id = ? AND status <> ?", mediaID, string(loan.StatusReturned)).
		Count(&count).Error
	if err != nil {
		return 0, database.TranslateError(ctx, err, "failed to count active loans", "loan-repo-count-002")
	}
	return count, nil
}

// DeleteByMedia implements loan.Repository.
func (repo *LoanGormRepository) DeleteByMedia(ctx context.Context, mediaID string) (int64, error) {
	result := repo.db.GetTx(ctx).Where("media_id = ?", mediaID).Delete(&dbschema.Loan{})
	if result.Error != nil {
		return 0, database.TranslateError(ctx, result.Error, "failed to delete loans", "loan-repo-delete-001")
	}
	return result.RowsAffected, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
