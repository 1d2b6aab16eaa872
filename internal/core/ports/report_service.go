package ports

import (
	"context"

	"github.com/biportal/portal-api/internal/core/domain"
)

// CreateReportInput carries the writable Report fields. The creator is never
// part of the input; it is always the caller.
type CreateReportInput struct {
	Name     string
	ClientID string
	EmbedURL string
	Type     domain.ReportType
}

// UpdateReportInput is a partial update; nil fields are left untouched.
type UpdateReportInput struct {
	Name     *string
	ClientID *string
	EmbedURL *string
	Type     *domain.ReportType
}

// ReportService defines the use cases on Reports.
type ReportService interface {
	// List returns the reports caller may see, optionally narrowed to one Client.
	List(ctx context.Context, caller domain.Caller, clientID string) ([]*domain.Report, error)
	Get(ctx context.Context, caller domain.Caller, id string) (*domain.Report, error)
	Create(ctx context.Context, caller domain.Caller, in CreateReportInput) (*domain.Report, error)
	Update(ctx context.Context, caller domain.Caller, id string, in UpdateReportInput) (*domain.Report, error)
	Delete(ctx context.Context, caller domain.Caller, id string) error
}
