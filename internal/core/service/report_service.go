package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/core/access"
	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

const (
	maxReportNameLen = 255
	maxEmbedURLLen   = 1000
)

type ReportService struct {
	reports ports.ReportRepository
	clients ports.ClientRepository
	tx      ports.Transactor
	log     zerolog.Logger
	now     func() time.Time
}

func NewReportService(
	reports ports.ReportRepository,
	clients ports.ClientRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *ReportService {
	return &ReportService{reports: reports, clients: clients, tx: tx, log: log, now: time.Now}
}

// List returns the caller's visible Reports. clientID, when set, only narrows
// that set.
func (s *ReportService) List(ctx context.Context, caller domain.Caller, clientID string) ([]*domain.Report, error) {
	scope := access.ResolveReports(ctx, s.clients, caller, clientID)
	if scope.Deny {
		return []*domain.Report{}, nil
	}
	return s.reports.List(ctx, scope)
}

func (s *ReportService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Report, error) {
	scope := access.ResolveReports(ctx, s.clients, caller, "")
	if scope.Deny {
		return nil, domain.ErrReportNotFound
	}
	return s.reports.FindByID(ctx, id, scope)
}

// Create stores a Report owned by caller under a Client the caller can see.
func (s *ReportService) Create(ctx context.Context, caller domain.Caller, in ports.CreateReportInput) (*domain.Report, error) {
	if !canAuthor(caller) {
		return nil, domain.ErrForbidden
	}

	if in.Type == "" {
		in.Type = domain.ReportTypeReport
	}
	report := &domain.Report{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		ClientID: strings.TrimSpace(in.ClientID),
		EmbedURL: strings.TrimSpace(in.EmbedURL),
		Type:     in.Type,
	}

	if verr := validateReport(report); !verr.Empty() {
		return nil, verr
	}

	now := s.now().UTC()
	report.CreatedBy = caller.ID
	report.CreatedAt = now
	report.UpdatedAt = now

	// The client check and the insert commit together so a concurrent client
	// delete cannot leave the report orphaned.
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if verr := s.checkClient(ctx, caller, report.ClientID); !verr.Empty() {
			return verr
		}
		if err := s.reports.Create(ctx, report); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("report_id", report.ID).
		Str("client_id", report.ClientID).
		Str("created_by", caller.ID).
		Msg("report created")
	return report, nil
}

func (s *ReportService) Update(ctx context.Context, caller domain.Caller, id string, in ports.UpdateReportInput) (*domain.Report, error) {
	report, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(caller, report.CreatedBy) {
		return nil, domain.ErrForbidden
	}

	clientChanged := false
	if in.Name != nil {
		report.Name = strings.TrimSpace(*in.Name)
	}
	if in.ClientID != nil {
		next := strings.TrimSpace(*in.ClientID)
		clientChanged = next != report.ClientID
		report.ClientID = next
	}
	if in.EmbedURL != nil {
		report.EmbedURL = strings.TrimSpace(*in.EmbedURL)
	}
	if in.Type != nil {
		report.Type = *in.Type
	}

	if verr := validateReport(report); !verr.Empty() {
		return nil, verr
	}

	report.UpdatedAt = s.now().UTC()
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if clientChanged {
			if verr := s.checkClient(ctx, caller, report.ClientID); !verr.Empty() {
				return verr
			}
		}
		if err := s.reports.Update(ctx, report); err != nil {
			return fmt.Errorf("update report: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("report_id", report.ID).Str("updated_by", caller.ID).Msg("report updated")
	return report, nil
}

func (s *ReportService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	report, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(caller, report.CreatedBy) {
		return domain.ErrForbidden
	}

	if err := s.reports.Delete(ctx, report.ID); err != nil {
		return fmt.Errorf("delete report: %w", err)
	}

	s.log.Info().Str("report_id", report.ID).Str("deleted_by", caller.ID).Msg("report deleted")
	return nil
}

// checkClient requires clientID to name a Client inside the caller's Client
// scope and locks it for the rest of the transaction. Out-of-scope Clients are
// reported exactly like missing ones.
func (s *ReportService) checkClient(ctx context.Context, caller domain.Caller, clientID string) *domain.ValidationError {
	_, err := s.clients.LockByID(ctx, clientID, access.Clients(caller))
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrClientNotFound) {
		s.log.Error().Err(err).Str("client_id", clientID).Msg("client lookup failed")
	}
	return domain.NewValidationError("client", "does not exist")
}

func validateReport(r *domain.Report) *domain.ValidationError {
	verr := &domain.ValidationError{}

	switch {
	case r.Name == "":
		verr.Add("name", "this field is required")
	case utf8.RuneCountInString(r.Name) > maxReportNameLen:
		verr.Add("name", "must be at most 255 characters")
	}

	if r.ClientID == "" {
		verr.Add("client", "this field is required")
	}

	switch {
	case r.EmbedURL == "":
		verr.Add("power_bi_embed_url", "this field is required")
	case utf8.RuneCountInString(r.EmbedURL) > maxEmbedURLLen:
		verr.Add("power_bi_embed_url", "must be at most 1000 characters")
	case !validURL(r.EmbedURL):
		verr.Add("power_bi_embed_url", "must be a valid URL")
	}

	if !r.Type.Valid() {
		verr.Add("type", "must be one of: Dashboard Report")
	}

	if verr.Empty() {
		return nil
	}
	return verr
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
