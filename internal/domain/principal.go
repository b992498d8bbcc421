package domain

import (
	"context"
	"strings"
	"time"
)

// RoleAdmin is the role required by administrative routes.
const RoleAdmin = "admin"

// Principal is the authenticated caller attached to a request.
type Principal struct {
	ID        string
	Email     string
	Name      string
	Roles     []string
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool {
	for _, role := range p.Roles {
		if strings.EqualFold(role, RoleAdmin) {
			return true
		}
	}
	return false
}

// Transactor runs fn inside a database transaction carried by ctx.
// Nested calls run inside a savepoint of the outer transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Clock returns the current time; services take one so tests can pin it.
type Clock func() time.Time
