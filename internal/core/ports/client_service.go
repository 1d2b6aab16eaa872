package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/domain"
)

// CreateClientInput carries the fields needed to provision a Client and its
// client-role login.
type CreateClientInput struct {
	CompanyName string
	Username    string
	Password    string
}

// UpdateClientInput is a partial update; nil fields are left untouched.
type UpdateClientInput struct {
	CompanyName *string
	Username    *string
	Password    *string
}

// ClientService defines the use cases on Clients. All operations are scoped
// to what caller may see.
type ClientService interface {
	List(ctx context.Context, caller domain.Caller) ([]*domain.Client, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Client, error)
	Create(ctx context.Context, caller domain.Caller, in CreateClientInput) (*domain.Client, error)
	Update(ctx context.Context, caller domain.Caller, id string, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, caller domain.Caller, id string) error
	ReportCount(ctx context.Context, caller domain.Caller, id string) (int64, error)
}
