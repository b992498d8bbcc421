// Package auth covers login, logout and token revocation.
package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

// Token is a signed access token.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// TokenIssuer signs access tokens for accounts.
type TokenIssuer interface {
	Issue(ctx context.Context, u *user.User) (*Token, error)
}

// RevocationStore remembers revoked token ids until they would expire anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// Session is the result of a successful login.
type Session struct {
	Token *Token
	User  *user.User
}

// Service exposes the auth operations.
type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	Logout(ctx context.Context, principal domain.Principal) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// DefaultService implements Service.
type DefaultService struct {
	users   Authenticator
	issuer  TokenIssuer
	revoked RevocationStore
	now     domain.Clock
	log     zerolog.Logger
}

// NewService creates the auth service.
func NewService(users Authenticator, issuer TokenIssuer, revoked RevocationStore, log zerolog.Logger) *DefaultService {
	return &DefaultService{
		users:   users,
		issuer:  issuer,
		revoked: revoked,
		now:     time.Now,
		log:     log.With().Str("component", "auth-service").Logger(),
	}
}

// WithClock overrides the time source.
func (s *DefaultService) WithClock(clock domain.Clock) *DefaultService {
	s.now = clock
	return s
}

// Login checks credentials and issues a token.
func (s *DefaultService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err, "login failed")
	}

	token, err := s.issuer.Issue(ctx, u)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to issue token", err, "auth-login-issue-001")
	}

	s.log.Info().Str("user_id", u.ID).Str("token_id", token.ID).Msg("user logged in")
	return &Session{Token: token, User: u}, nil
}

// Logout revokes the caller's token for the rest of its lifetime.
func (s *DefaultService) Logout(ctx context.Context, principal domain.Principal) error {
	if principal.TokenID == "" {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "token has no id", nil, "auth-logout-jti-001")
	}

	ttl := principal.ExpiresAt.Sub(s.now())
	if principal.ExpiresAt.IsZero() || ttl <= 0 {
		// Expired tokens are already rejected.
		return nil
	}

	if err := s.revoked.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to revoke token", err, "auth-logout-revoke-001")
	}

	s.log.Info().Str("user_id", principal.ID).Str("token_id", principal.TokenID).Dur("ttl", ttl).Msg("token revoked")
	return nil
}

// IsRevoked reports whether the token id was logged out.
func (s *DefaultService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	revoked, err := s.revoked.IsRevoked(ctx, tokenID)
	if err != nil {
		return false, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeInternal, "failed to check token revocation", err, "auth-revoked-check-001")
	}
	return revoked, nil
}
