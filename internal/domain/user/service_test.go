package user_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

type memoryRepo struct {
	byID map[string]*user.User
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{byID: map[string]*user.User{}}
}

func (r *memoryRepo) Create(ctx context.Context, u *user.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "email already registered", nil, "user-create-duplicate-001")
		}
	}
	copied := *u
	r.byID[u.ID] = &copied
	return nil
}

func (r *memoryRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "user-find-notfound-001")
	}
	copied := *u
	return &copied, nil
}

func (r *memoryRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range r.byID {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "user-find-notfound-002")
}

func (r *memoryRepo) List(context.Context, *user.Filter) ([]*user.User, int64, error) {
	out := make([]*user.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, int64(len(out)), nil
}

func (r *memoryRepo) UpdateActive(ctx context.Context, id string, active bool) error {
	u, ok := r.byID[id]
	if !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "user-update-notfound-001")
	}
	u.Active = active
	return nil
}

func (r *memoryRepo) UpdateRole(ctx context.Context, id string, role user.Role) error {
	u, ok := r.byID[id]
	if !ok {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "user not found", nil, "user-update-notfound-002")
	}
	u.Role = role
	return nil
}

func newService() (*user.DefaultService, *memoryRepo) {
	repo := newMemoryRepo()
	return user.NewService(repo, zerolog.Nop()).WithBcryptCost(bcrypt.MinCost), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, user.RegisterParams{Name: "Ada", Email: " Ada@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "correct horse", u.PasswordHash)

	got, err := svc.Authenticate(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	cases := []user.RegisterParams{
		{Name: "", Email: "a@b.co", Password: "longenough"},
		{Name: "Ada", Email: "not-an-email", Password: "longenough"},
		{Name: "Ada", Email: "a@b.co", Password: "short"},
		{Name: "Ada", Email: "a@b.co", Password: "longenough", Role: user.Role("root")},
	}
	for _, params := range cases {
		_, err := svc.Register(ctx, params)
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation), "%+v", params)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, user.RegisterParams{Name: "Ada", Email: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, user.RegisterParams{Name: "Ada 2", Email: "ADA@example.com", Password: "longenough"})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))
}

func TestAuthenticateRejections(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, user.RegisterParams{Name: "Ada", Email: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ada@example.com", "wrong-password")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	_, err = svc.Authenticate(ctx, "nobody@example.com", "longenough")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))

	_, err = svc.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, "ada@example.com", "longenough")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestSetRole(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	u, err := svc.Register(ctx, user.RegisterParams{Name: "Ada", Email: "ada@example.com", Password: "longenough"})
	require.NoError(t, err)

	updated, err := svc.SetRole(ctx, u.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, updated.IsAdmin())

	_, err = svc.SetRole(ctx, u.ID, user.Role("owner"))
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	_, err = svc.SetRole(ctx, "usr_missing", user.RoleAdmin)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}
