package userrepo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/infrastructure/database/dbschema"
	"github.com/janhq/library-api/internal/infrastructure/database/transaction"
)

type UserGormRepository struct {
	db *transaction.Database
}

var _ user.Repository = (*UserGormRepository)(nil)

func NewUserGormRepository(db *transaction.Database) *UserGormRepository {
	return &UserGormRepository{db: db}
}

// Create implements user.Repository.
func (repo *UserGormRepository) Create(ctx context.Context, u *user.User) error {
	if err := repo.db.GetTx(ctx).Create(dbschema.UserDtoE(u)).Error; err != nil {
		return database.TranslateError(ctx, err, "failed to create user", "user-repo-create-001")
	}
	return nil
}

// FindByID implements user.Repository.
func (repo *UserGormRepository) FindByID(ctx context.Context, id string) (*user.User, error) {
	var row dbschema.User
	if err := repo.db.GetTx(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to find user", "user-repo-find-001")
	}
	return row.EtoD(), nil
}

// FindByEmail implements user.Repository.
func (repo *UserGormRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var row dbschema.User
	if err := repo.db.GetTx(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&row).Error; err != nil {
		return nil, database.TranslateError(ctx, err, "failed to find user by email", "user-repo-find-002")
	}
	return row.EtoD(), nil
}

// List implements user.Repository.
func (repo *UserGormRepository) List(ctx context.Context, f *user.Filter) ([]*user.User, int64, error) {
	query := repo.db.GetTx(ctx).Model(&dbschema.User{})
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("(LOWER(name) LIKE ? OR email LIKE ?)", pattern, pattern)
	}
	if f.Role != nil {
		query = query.Where("role = ?", string(*f.Role))
	}
	if f.Active != nil {
		query = query.Where("active = ?", *f.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to count users", "user-repo-count-001")
	}

	query = query.Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var rows []dbschema.User
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, database.TranslateError(ctx, err, "failed to list users", "user-repo-list-001")
	}
	result := make([]*user.User, len(rows))
	for i := range rows {
		result[i] = rows[i].EtoD()
	}
	return result, total, nil
}

func (repo *UserGormRepository) update(ctx context.Context, id string, column string, value any, code string) error {
	result := repo.db.GetTx(ctx).Model(&dbschema.User{}).
		Where("id = ?", id).
		Updates(map[string]any{column: value, "updated_at": time.Now().UTC()})
	if result.Error != nil {
		return database.TranslateError(ctx, result.Error, "failed to update user", code)
	}
	if result.RowsAffected == 0 {
		return database.TranslateError(ctx, gorm.ErrRecordNotFound, "failed to update user", code)
	}
	return nil
}

// UpdateActive implements user.Repository.
func (repo *UserGormRepository) UpdateActive(ctx context.Context, id string, active bool) error {
	return repo.update(ctx, id, "active", active, "user-repo-active-001")
}

// UpdateRole implements user.Repository.
func (repo *UserGormRepository) UpdateRole(ctx context.Context, id string, role user.Role) error {
	return repo.update(ctx, id, "role", string(role), "user-repo-role-001")
}
