package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/domain"
)

// UserService exposes account reads and admin operations.
type UserService interface {
	Me(ctx context.Context, caller domain.Caller) (*domain.User, error)
	// List returns every account. Admin only.
	List(ctx context.Context, caller domain.Caller) ([]*domain.User, error)
	// Counts returns the per-role totals. Admin only.
	Counts(ctx context.Context, caller domain.Caller) (*domain.UserCounts, error)
	// Delete removes an account together with everything it created. Admin only.
	Delete(ctx context.Context, caller domain.Caller, id string) error
}
