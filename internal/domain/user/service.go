package user

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/utils/idgen"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// RegisterParams carries the fields of a new account.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Service defines account operations.
type Service interface {
	Register(ctx context.Context, params RegisterParams) (*User, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter *Filter) ([]*User, int64, error)
	SetActive(ctx context.Context, id string, active bool) (*User, error)
	SetRole(ctx context.Context, id string, role Role) (*User, error)
}

// DefaultService implements Service.
type DefaultService struct {
	repo       Repository
	bcryptCost int
	now        domain.Clock
	log        zerolog.Logger
}

// NewService creates the account service.
func NewService(repo Repository, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		repo:       repo,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
		log:        log.With().Str("component", "user-service").Logger(),
	}
}

// WithBcryptCost overrides the hashing cost; tests use bcrypt.MinCost.
func (s *DefaultService) WithBcryptCost(cost int) *DefaultService {
	s.bcryptCost = cost
	return s
}

// Register creates an account. Email addresses are unique.
func (s *DefaultService) Register(ctx context.Context, params RegisterParams) (*User, error) {
	name := strings.TrimSpace(params.Name)
	email := NormalizeEmail(params.Email)
	if name == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "name is required", nil, "user-register-name-001")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "email is invalid", err, "user-register-email-001")
	}
	if len(params.Password) < MinPasswordLength {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "password must be at least 8 characters", nil, "user-register-password-001")
	}
	role := params.Role
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown role", nil, "user-register-role-001")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.bcryptCost)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to hash password", err, "user-register-hash-001")
	}

	now := s.now().UTC()
	u := &User{
		ID:           idgen.New(idgen.PrefixUser),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to register user")
	}
	s.log.Info().Str("user_id", u.ID).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

// Authenticate checks credentials. Unknown emails, bad passwords and
// inactive accounts all yield the same UNAUTHORIZED error.
func (s *DefaultService) Authenticate(ctx context.Context, email, password string) (*User, error) {
	invalid := platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "invalid email or password", nil, "user-auth-invalid-001")

	u, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
			return nil, invalid
		}
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, invalid
	}
	if !u.Active {
		return nil, invalid
	}
	return u, nil
}

// Get returns an account.
func (s *DefaultService) Get(ctx context.Context, id string) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to get user")
	}
	return u, nil
}

// List returns accounts.
func (s *DefaultService) List(ctx context.Context, filter *Filter) ([]*User, int64, error) {
	if filter == nil {
		filter = &Filter{Limit: 10}
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to list users")
	}
	return users, total, nil
}

// SetActive enables or disables an account.
func (s *DefaultService) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	if err := s.repo.UpdateActive(ctx, id, active); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update user status")
	}
	return s.Get(ctx, id)
}

// SetRole changes the role of an account.
func (s *DefaultService) SetRole(ctx context.Context, id string, role Role) (*User, error) {
	if !role.IsValid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown role", nil, "user-role-invalid-001")
	}
	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "failed to update user role")
	}
	return s.Get(ctx, id)
}
