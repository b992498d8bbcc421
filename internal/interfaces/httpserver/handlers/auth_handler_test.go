package handlers_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/library-api/internal/domain"
	"github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/user"
	"github.com/janhq/library-api/internal/interfaces/httpserver/handlers"
	"github.com/janhq/library-api/internal/utils/platformerrors"
)

func setupAuthTestRouter(authService *MockAuthService, users *MockUserService, principal *domain.Principal) *gin.Engine {
	handler := handlers.NewAuthHandler(authService, users, zerolog.Nop())
	r := newRouter(principal)
	api := r.Group("/api/auth")
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.Logout)
		api.GET("/me", handler.Me)
	}
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	var got user.RegisterParams
	users := &MockUserService{
		RegisterFunc: func(ctx context.Context, params user.RegisterParams) (*user.User, error) {
			got = params
			return &user.User{ID: "usr_new", Name: params.Name, Email: params.Email, Role: params.Role, Active: true, PasswordHash: "secret-hash"}, nil
		},
	}
	r := setupAuthTestRouter(&MockAuthService{}, users, nil)

	w := doJSON(r, http.MethodPost, "/api/auth/register", map[string]any{"name": "Ada", "email": "ada@example.com", "password": "longenough"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, user.RoleUser, got.Role)

	body := decode(t, w)
	assert.Equal(t, "usr_new", body["id"])
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	r := setupAuthTestRouter(&MockAuthService{}, &MockUserService{}, nil)

	cases := []map[string]any{
		{"name": "Ada", "email": "not-an-email", "password": "longenough"},
		{"name": "Ada", "email": "ada@example.com", "password": "short"},
		{"email": "ada@example.com", "password": "longenough"},
	}
	for _, body := range cases {
		w := doJSON(r, http.MethodPost, "/api/auth/register", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
}

func TestAuthHandler_Login(t *testing.T) {
	expires := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	authService := &MockAuthService{
		LoginFunc: func(ctx context.Context, email, password string) (*auth.Session, error) {
			if password != "longenough" {
				return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeUnauthorized, "invalid email or password", nil, "user-auth-invalid-001")
			}
			return &auth.Session{
				Token: &auth.Token{Value: "signed.jwt", ID: "tok_1", ExpiresAt: expires},
				User:  &user.User{ID: "usr_ada", Email: email, Role: user.RoleUser, Active: true},
			}, nil
		},
	}
	r := setupAuthTestRouter(authService, &MockUserService{}, nil)

	w := doJSON(r, http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@example.com", "password": "longenough"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "signed.jwt", body["token"])
	assert.Equal(t, "Bearer", body["tokenType"])

	w = doJSON(r, http.MethodPost, "/api/auth/login", map[string]any{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_LogoutRevokesCallerToken(t *testing.T) {
	caller := memberPrincipal
	caller.TokenID = "tok_1"
	var revoked domain.Principal
	authService := &MockAuthService{
		LogoutFunc: func(ctx context.Context, principal domain.Principal) error {
			revoked = principal
			return nil
		},
	}
	r := setupAuthTestRouter(authService, &MockUserService{}, &caller)

	w := doJSON(r, http.MethodPost, "/api/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "tok_1", revoked.TokenID)
}

func TestAuthHandler_MeRequiresPrincipal(t *testing.T) {
	r := setupAuthTestRouter(&MockAuthService{}, &MockUserService{}, nil)

	w := doJSON(r, http.MethodGet, "/api/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	users := &MockUserService{
		GetFunc: func(ctx context.Context, id string) (*user.User, error) {
			return &user.User{ID: id, Name: "Ada", Email: "ada@example.com", Role: user.RoleUser, Active: true}, nil
		},
	}
	r := setupAuthTestRouter(&MockAuthService{}, users, &memberPrincipal)

	w := doJSON(r, http.MethodGet, "/api/auth/me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "usr_ada", decode(t, w)["id"])
}

func TestUserHandler_SetStatusAndRole(t *testing.T) {
	users := &MockUserService{
		SetActiveFunc: func(ctx context.Context, id string, active bool) (*user.User, error) {
			return &user.User{ID: id, Role: user.RoleUser, Active: active}, nil
		},
		SetRoleFunc: func(ctx context.Context, id string, role user.Role) (*user.User, error) {
			return &user.User{ID: id, Role: role, Active: true}, nil
		},
	}
	handler := handlers.NewUserHandler(users, zerolog.Nop())
	r := newRouter(&adminPrincipal)
	r.PATCH("/api/users/:id/status", handler.SetStatus)
	r.PATCH("/api/users/:id/role", handler.SetRole)

	w := doJSON(r, http.MethodPatch, "/api/users/usr_ada/status", map[string]any{"active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, false, decode(t, w)["active"])

	w = doJSON(r, http.MethodPatch, "/api/users/usr_ada/status", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPatch, "/api/users/usr_ada/role", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", decode(t, w)["role"])

	w = doJSON(r, http.MethodPatch, "/api/users/usr_ada/role", map[string]any{"role": "librarian"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
