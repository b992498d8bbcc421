package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

type mockAuthenticator struct {
	AuthenticateFunc func(ctx context.Context, email, password string) (*user.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	return m.AuthenticateFunc(ctx, email, password)
}

type mockIssuer struct {
	IssueFunc func(ctx context.Context, u *user.User) (*auth.Token, error)
}

func (m *mockIssuer) Issue(ctx context.Context, u *user.User) (*auth.Token, error) {
	return m.IssueFunc(ctx, u)
}

type memoryRevocations struct {
	ttls map[string]time.Duration
	err  error
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.ttls[tokenID] = ttl
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.ttls[tokenID]
	return ok, nil
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newService(authn *mockAuthenticator, issuer *mockIssuer, revocations *memoryRevocations) *auth.DefaultService {
	return auth.NewService(authn, issuer, revocations, zerolog.Nop()).WithClock(func() time.Time { return now })
}

func TestLoginIssuesToken(t *testing.T) {
	ada := &user.User{ID: "usr_ada", Email: "ada@example.com", Role: user.RoleUser, Active: true}
	svc := newService(
		&mockAuthenticator{AuthenticateFunc: func(_ context.Context, email, password string) (*user.User, error) {
			assert.Equal(t, "ada@example.com", email)
			assert.Equal(t, "longenough", password)
			return ada, nil
		}},
		&mockIssuer{IssueFunc: func(_ context.Context, u *user.User) (*auth.Token, error) {
			return &auth.Token{Value: "signed", ID: "tok_1", ExpiresAt: now.Add(time.Hour)}, nil
		}},
		&memoryRevocations{ttls: map[string]time.Duration{}},
	)

	session, err := svc.Login(context.Background(), "ada@example.com", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "signed", session.Token.Value)
	assert.Equal(t, "usr_ada", session.User.ID)
}

func TestLoginPropagatesUnauthorized(t *testing.T) {
	svc := newService(
		&mockAuthenticator{AuthenticateFunc: func(ctx context.Context, _, _ string) (*user.User, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "invalid credentials", nil, "user-auth-invalid-001")
		}},
		&mockIssuer{IssueFunc: func(context.Context, *user.User) (*auth.Token, error) {
			t.Fatal("issuer must not be called")
			return nil, nil
		}},
		&memoryRevocations{ttls: map[string]time.Duration{}},
	)

	_, err := svc.Login(context.Background(), "ada@example.com", "nope")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeUnauthorized))
}

func TestLogoutRevokesForRemainingLifetime(t *testing.T) {
	revocations := &memoryRevocations{ttls: map[string]time.Duration{}}
	svc := newService(&mockAuthenticator{}, &mockIssuer{}, revocations)

	err := svc.Logout(context.Background(), domain.Principal{ID: "usr_ada", TokenID: "tok_1", ExpiresAt: now.Add(90 * time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, revocations.ttls["tok_1"])

	revoked, err := svc.IsRevoked(context.Background(), "tok_1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = svc.IsRevoked(context.Background(), "tok_2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLogoutExpiredTokenIsNoop(t *testing.T) {
	revocations := &memoryRevocations{ttls: map[string]time.Duration{}}
	svc := newService(&mockAuthenticator{}, &mockIssuer{}, revocations)

	err := svc.Logout(context.Background(), domain.Principal{ID: "usr_ada", TokenID: "tok_1", ExpiresAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	assert.Empty(t, revocations.ttls)
}

func TestLogoutRequiresTokenID(t *testing.T) {
	svc := newService(&mockAuthenticator{}, &mockIssuer{}, &memoryRevocations{ttls: map[string]time.Duration{}})

	err := svc.Logout(context.Background(), domain.Principal{ID: "usr_ada", ExpiresAt: now.Add(time.Hour)})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
}

func TestRevocationStoreFailure(t *testing.T) {
	revocations := &memoryRevocations{ttls: map[string]time.Duration{}, err: errors.New("redis down")}
	svc := newService(&mockAuthenticator{}, &mockIssuer{}, revocations)

	err := svc.Logout(context.Background(), domain.Principal{ID: "usr_ada", TokenID: "tok_1", ExpiresAt: now.Add(time.Hour)})
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))

	_, err = svc.IsRevoked(context.Background(), "tok_1")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeInternal))
}
