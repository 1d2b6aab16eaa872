package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/access"
	"github.com/biportal/portal-api/internal/core/domain"
)

// ClientRepository defines persistence operations for Clients. Every read
// takes the caller's scope; records outside it are reported as not found.
type ClientRepository interface {
	// Create inserts a client. Returns domain.ErrClientUsernameTaken on a
	// duplicate username.
	Create(ctx context.Context, c *domain.Client) error
	FindByID(ctx context.Context, id string, scope access.ClientScope) (*domain.Client, error)
	// LockByID is FindByID that also writes to the record, so a concurrent
	// transaction deleting the client conflicts with the caller's. Call it
	// inside a transaction.
	LockByID(ctx context.Context, id string, scope access.ClientScope) (*domain.Client, error)
	FindByProfileID(ctx context.Context, userID string) (*domain.Client, error)
	List(ctx context.Context, scope access.ClientScope) ([]*domain.Client, error)
	// Update persists company name and username; other fields are immutable.
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
	// IDsCreatedBy lists the ids of clients created by userID.
	IDsCreatedBy(ctx context.Context, userID string) ([]string, error)
	DeleteMany(ctx context.Context, ids []string) error
}
