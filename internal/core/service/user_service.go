package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

type UserService struct {
	users   ports.UserRepository
	clients ports.ClientRepository
	reports ports.ReportRepository
	tx      ports.Transactor
	log     zerolog.Logger
}

func NewUserService(
	users ports.UserRepository,
	clients ports.ClientRepository,
	reports ports.ReportRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *UserService {
	return &UserService{users: users, clients: clients, reports: reports, tx: tx, log: log}
}

func (s *UserService) Me(ctx context.Context, caller domain.Caller) (*domain.User, error) {
	if caller.IsZero() {
		return nil, domain.ErrInvalidToken
	}
	return s.users.FindByID(ctx, caller.ID)
}

func (s *UserService) List(ctx context.Context, caller domain.Caller) ([]*domain.User, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.users.List(ctx)
}

func (s *UserService) Counts(ctx context.Context, caller domain.Caller) (*domain.UserCounts, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	total, err := s.users.CountByRole(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	core, err := s.users.CountByRole(ctx, domain.RoleCoreUser)
	if err != nil {
		return nil, fmt.Errorf("count core users: %w", err)
	}
	clients, err := s.users.CountByRole(ctx, domain.RoleClient)
	if err != nil {
		return nil, fmt.Errorf("count client users: %w", err)
	}

	return &domain.UserCounts{Total: total, CoreUsers: core, ClientUsers: clients}, nil
}

// Delete removes the account and, atomically, every Client and Report it
// created, including the Reports and client-role logins of those Clients.
func (s *UserService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	if caller.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, id); err != nil {
		return err
	}

	var clientIDs []string
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		clientIDs, err = s.clients.IDsCreatedBy(ctx, id)
		if err != nil {
			return err
		}
		if err := s.reports.DeleteByCreator(ctx, id); err != nil {
			return err
		}
		if len(clientIDs) > 0 {
			if err := s.reports.DeleteByClientIDs(ctx, clientIDs); err != nil {
				return err
			}
			if err := s.users.DeleteByClientIDs(ctx, clientIDs); err != nil {
				return err
			}
			if err := s.clients.DeleteMany(ctx, clientIDs); err != nil {
				return err
			}
		}
		return s.users.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info().
		Str("user_id", id).
		Str("deleted_by", caller.ID).
		Int("clients_removed", len(clientIDs)).
		Msg("user deleted")
	return nil
}
