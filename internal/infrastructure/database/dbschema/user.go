package dbschema

import (
	"time"

	"github.com/janhq/library-api/internal/domain/user"
)

// User represents the database schema for accounts
type User struct {
	ID           string `gorm:"primaryKey;size:40"`
	Name         string `gorm:"size:255;not null"`
	Email        string `gorm:"size:320;not null;uniqueIndex:idx_users_email"`
	PasswordHash string `gorm:"size:255;not null"`
	Role         string `gorm:"size:16;not null;default:user"`
	Active       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string {
	return "users"
}

// EtoD converts database schema to domain user (Entity to Domain)
func (u *User) EtoD() *user.User {
	return &user.User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         user.Role(u.Role),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserDtoE converts domain user to database schema (Domain to Entity)
func UserDtoE(u *user.User) *User {
	return &User{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
