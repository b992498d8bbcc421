package mediarepo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/janhq/library-api/internal/domain/media"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/dbschema"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

type MediaGormRepository struct {
	db *transaction.Database
}

var _ media.Repository = (*MediaGormRepository)(nil)

func NewMediaGormRepository(db *transaction.Database) *MediaGormRepository {
	return &MediaGormRepository{db: db}
}

// Create implements media.Repository.
func (repo *MediaGormRepository) Create(ctx context.Context, m *media.Media) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.MediaDtoE(m)).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create media", "media-repo-create-001")
	}
	return nil
}

// FindByID implements media.Repository.
func (repo *MediaGormRepository) FindByID(ctx context.Context, id string) (*media.Media, error) {
	var row dbschema.Media
	if err := repo.db.GetTx(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to find media", "media-repo-find-001")
	}
	return row.EtoD(), nil
}

// LockByID implements media.Repository.
func (repo *MediaGormRepository) LockByID(ctx context.Context, id string) (*media.Media, error) {
	var row dbschema.Media
	err := repo.db.GetTx(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to lock media", "media-repo-lock-001")
	}
	return row.EtoD(), nil
}

// Update implements media.Repository.
func (repo *MediaGormRepository) Update(ctx context.Context, m *media.Media) error {
	row := dbschema.MediaDtoE(m)
	result := repo.db.GetTx(ctx).Model(&dbschema.Media{}).
		Where("id = ?", m.ID).
		Updates(map[string]any{
			"title":        row.Title,
			"author":       row.Author,
			"type":         row.Type,
			"description":  row.Description,
			"category":     row.Category,
			"tags":         row.Tags,
			"release_year": row.ReleaseYear,
			"isbn":         row.ISBN,
			"external_id":  row.ExternalID,
			"cover_key":    row.CoverKey,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return database.TranslateError(ctx, result.Error, "failed to update media", "media-repo-update-001")
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(ctx, gorm.ErrRecordNotFound, "failed to update media", "media-repo-update-002")
	}
	return nil
}

// Delete implements media.Repository.
func (repo *MediaGormRepository) Delete(ctx context.Context, id string) error {
	result := repo.db.GetTx(ctx).Where("id = ?", id).Delete(&dbschema.Media{})
	if result.Error != nil {
		return database.TranslateError(ctx, result.Error, "failed to delete media", "media-repo-delete-001")
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(ctx, gorm.ErrRecordNotFound, "failed to delete media", "media-repo-delete-002")
	}
	return nil
}

// List implements media.Repository.
func (repo *MediaGormRepository) List(ctx context.Context, f *media.Filter) ([]*media.Media, int64, error) {
	query := repo.db.GetTx(ctx).Model(&dbschema.Media{})
	if f.Type != nil {
		query = query.Where("type = ?", string(*f.Type))
	}
	if f.Category != nil {
		query = query.Where("category = ?", *f.Category)
	}
	if f.Tag != nil {
		query = query.Where("? = ANY(tags)", strings.ToLower(*f.Tag))
	}
	if f.Available != nil {
		query = query.Where("available = ?", *f.Available)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(title) LIKE ? OR LOWER(author) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to count media", "media-repo-count-001")
	}

	query = query.Order("title ASC, id ASC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var rows []dbschema.Media
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to list media", "media-repo-list-001")
	}
	result := make([]*media.Media, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, total, nil
}

// ClaimAvailability implements media.Repository.
func (repo *MediaGormRepository) ClaimAvailability(ctx context.Context, id string) (bool, error) {
	result := repo.db.GetTx(ctx).Model(&dbschema.Media{}).
		Where("id = ? AND available = ?", id, true).
		Updates(map[string]any{"available": false, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return false, database.TranslateError(ctx, result.Error, "failed to claim media", "media-repo-claim-001")
	}
	return result.RowsAffected == 1, nil
}

// ReleaseAvailability implements media.Repository.
func (repo *MediaGormRepository) ReleaseAvailability(ctx context.Context, id string) error {
	err := repo.db.GetTx(ctx).Model(&dbschema.Media{}).
		Where("id = ?", id).
		Updates(map[string]any{"available": true, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		return database.TranslateError(ctx, err, "failed to release media", "media-repo-release-001")
	}
	return nil
}

// DistinctCategories implements media.Repository.
func (repo *MediaGormRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := repo.db.GetTx(ctx).Model(&dbschema.Media{}).
		Where("category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list categories", "media-repo-categories-001")
	}
	return categories, nil
}

// DistinctTags implements media.Repository.
func (repo *MediaGormRepository) DistinctTags(ctx context.Context) ([]string, error) {
	var tags []string
	err := repo.db.GetTx(ctx).
		Raw("SELECT DISTINCT tag FROM media, UNNEST(tags) AS tag ORDER BY tag").
		Scan(&tags).Error
	if err != nil {
		return nil, database.TranslateError(ctx, err, "failed to list tags", "media-repo-tags-001")
	}
	return tags, nil
}
