package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/janhq/library-api/internal/infrastructure/database"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

func TestTranslateError(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, database.TranslateError(ctx, nil, "noop", "x"))

	err := database.TranslateError(ctx, fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "failed to find loan", "loan-find-notfound-001")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))

	dup := &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"}
	err = database.TranslateError(ctx, fmt.Errorf("insert: %w", dup), "failed to create user", "user-create-duplicate-001")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
	assert.True(t, database.IsUniqueViolation(dup))

	err = database.TranslateError(ctx, errors.New("connection reset"), "failed to list", "x")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeDatabaseError))
}
