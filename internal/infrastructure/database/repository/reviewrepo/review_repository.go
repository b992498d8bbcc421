package reviewrepo

import (
	"context"

	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/domain/review"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/dbschema"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

type ReviewGormRepository struct {
	db *transaction.Database
}

var _ review.Repository = (*ReviewGormRepository)(nil)

func NewReviewGormRepository(db *transaction.Database) *ReviewGormRepository {
	return &ReviewGormRepository{db: db}
}

func (repo *ReviewGormRepository) withAuthor(ctx context.Context) *gorm.DB {
	return repo.db.GetTx(ctx).
		Table("reviews").
		Select("reviews.*, users.name AS user_name").
		Joins("LEFT JOIN users ON users.id = reviews.user_id")
}

// Create implements review.Repository.
func (repo *ReviewGormRepository) Create(ctx context.Context, r *review.Review) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.ReviewDtoE(r)).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create review", "review-repo-create-001")
	}
	return nil
}

// FindByID implements review.Repository.
func (repo *ReviewGormRepository) FindByID(ctx context.Context, id string) (*review.Review, error) {
	var row dbschema.ReviewWithAuthor
	if err := repo.withAuthor(ctx).Where("reviews.id = ?", id).Take(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to find review", "review-repo-find-001")
	}
	return row.EtoD(), nil
}

// ListByMedia implements review.Repository.
func (repo *ReviewGormRepository) ListByMedia(ctx context.Context, mediaID string, limit, offset int) ([]*review.Review, int64, error) {
	var total int64
	if err := repo.db.GetTx(ctx).Model(&dbschema.Review{}).Where("media_id = ?", mediaID).Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to count reviews", "review-repo-count-001")
	}

	query := repo.withAuthor(ctx).
		Where("reviews.media_id = ?", mediaID).
		Order("reviews.created_at DESC, reviews.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []dbschema.ReviewWithAuthor
	if err := query.Scan(&rows).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to list reviews", "review-repo-list-001")
	}
	result := make([]*review.Review, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, total, nil
}

// Totals implements review.Repository.
func (repo *ReviewGormRepository) Totals(ctx context.Context, mediaID string) (int64, int64, error) {
	var totals struct {
		Count int64
		Sum   int64
	}
	err := repo.db.GetTx(ctx).Model(&dbschema.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS sum").
		Where("media_id = ?", mediaID).
		Scan(&totals).Error
	if err != nil {
		return 0, 0, database.TranslateError(ctx, err, "failed to summarize reviews", "review-repo-totals-001")
	}
	return totals.Count, totals.Sum, nil
}

// Delete implements review.Repository.
func (repo *ReviewGormRepository) Delete(ctx context.Context, id string) error {
	result := repo.db.GetTx(ctx).Where("id = ?", id).Delete(&dbschema.Review{})
	if result.Error != nil {
		return database.TranslateError(ctx, result.Error, "failed to delete review", "review-repo-delete-001")
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(ctx, gorm.ErrRecordNotFound, "failed to delete review", "review-repo-delete-002")
	}
	return nil
}

// DeleteByMedia implements review.Repository.
func (repo *ReviewGormRepository) DeleteByMedia(ctx context.Context, mediaID string) (int64, error) {
	result := repo.db.GetTx(ctx).Where("media_id = ?", mediaID).Delete(&dbschema.Review{})
	if result.Error != nil {
		return 0, database.TranslateError(ctx, result.Error, "failed to delete reviews", "review-repo-delete-003")
	}
	return result.RowsAffected, nil
}
