package responses

import (
	"time"

	"github.com/janhq/library-api/internal/domain/auth"
	"github.com/janhq/library-api/internal/domain/user"
)

// UserResponse is an account without its credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MapUserToResponse converts an account.
func MapUserToResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// SessionResponse is returned by login.
type SessionResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// MapSessionToResponse converts a login session.
func MapSessionToResponse(s *auth.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token.Value,
		TokenType: "Bearer",
		ExpiresAt: s.Token.ExpiresAt,
		User:      MapUserToResponse(s.User),
	}
}
