package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/domain"
)

// UserRepository defines the persistence operations for accounts.
type UserRepository interface {
	// Create inserts a user. Returns domain.ErrEmailTaken or
	// domain.ErrUsernameTaken on unique key violations.
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// CountByRole counts users with the given role, or all users when role is empty.
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	// UpdateLogin changes the username and, when passwordHash is non-empty,
	// the credential of the user.
	UpdateLogin(ctx context.Context, id, username, passwordHash string) error
	Delete(ctx context.Context, id string) error
	// DeleteByClientIDs removes the client-role accounts linked to any of clientIDs.
	DeleteByClientIDs(ctx context.Context, clientIDs []string) error
}
