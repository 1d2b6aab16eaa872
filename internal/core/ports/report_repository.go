package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/access"
	"github.com/biportal/portal-api/internal/core/domain"
)

// ReportRepository defines persistence operations for Reports.
type ReportRepository interface {
	Create(ctx context.Context, r *domain.Report) error
	FindByID(ctx context.Context, id string, scope access.ReportScope) (*domain.Report, error)
	// List returns the reports inside scope, newest first.
	List(ctx context.Context, scope access.ReportScope) ([]*domain.Report, error)
	CountByClient(ctx context.Context, clientID string) (int64, error)
	// Update persists name, client, embed URL, type and updated_at.
	Update(ctx context.Context, r *domain.Report) error
	Delete(ctx context.Context, id string) error
	DeleteByClientIDs(ctx context.Context, clientIDs []string) error
	DeleteByCreator(ctx context.Context, userID string) error
}
