package service

import (
	"context"
	"fmt"
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
	maxCompanyNameLen = 255
	maxUsernameLen    = 100
)

type ClientService struct {
	clients ports.ClientRepository
	users   ports.UserRepository
	reports ports.ReportRepository
	tx      ports.Transactor
	log     zerolog.Logger
	now     func() time.Time
}

func NewClientService(
	clients ports.ClientRepository,
	users ports.UserRepository,
	reports ports.ReportRepository,
	tx ports.Transactor,
	log zerolog.Logger,
) *ClientService {
	return &ClientService{
		clients: clients,
		users:   users,
		reports: reports,
		tx:      tx,
		log:     log,
		now:     time.Now,
	}
}

func (s *ClientService) List(ctx context.Context, caller domain.Caller) ([]*domain.Client, error) {
	return s.clients.List(ctx, access.Clients(caller))
}

func (s *ClientService) Get(ctx context.Context, caller domain.Caller, id string) (*domain.Client, error) {
	return s.clients.FindByID(ctx, id, access.Clients(caller))
}

// Create stores the Client and provisions its client-role login in one
// transaction. Either both records exist afterwards or neither does.
func (s *ClientService) Create(ctx context.Context, caller domain.Caller, in ports.CreateClientInput) (*domain.Client, error) {
	if !canAuthor(caller) {
		return nil, domain.ErrForbidden
	}

	in.CompanyName = strings.TrimSpace(in.CompanyName)
	in.Username = strings.TrimSpace(in.Username)

	verr := &domain.ValidationError{}
	checkCompanyName(verr, in.CompanyName)
	checkUsername(verr, in.Username)
	if in.Password == "" {
		verr.Add("password", "this field is required")
	} else if reason := domain.CheckPassword(in.Password); reason != "" {
		verr.Add("password", reason)
	}
	if !verr.Empty() {
		return nil, verr
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	client := &domain.Client{
		ID:              uuid.NewString(),
		CompanyName:     in.CompanyName,
		Username:        in.Username,
		CreatedBy:       caller.ID,
		CreatedAt:       now,
		ClientProfileID: uuid.NewString(),
	}
	login := &domain.User{
		ID:           client.ClientProfileID,
		Username:     in.Username,
		PasswordHash: hash,
		Role:         domain.RoleClient,
		ClientID:     client.ID,
		CompanyName:  in.CompanyName,
		Subscription: domain.SubscriptionFree,
		Status:       domain.StatusActive,
		CreatedAt:    now,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.clients.Create(ctx, client); err != nil {
			return err
		}
		return s.users.Create(ctx, login)
	})
	if err != nil {
		if field := domain.UniquenessField(err); field == "username" {
			return nil, domain.NewValidationError("username", "a client with this username already exists")
		}
		return nil, fmt.Errorf("create client: %w", err)
	}

	s.log.Info().
		Str("client_id", client.ID).
		Str("created_by", caller.ID).
		Str("profile_id", login.ID).
		Msg("client provisioned")
	return client, nil
}

// Update edits a Client the caller owns. Username and password changes are
// mirrored onto the linked client-role login in the same transaction.
func (s *ClientService) Update(ctx context.Context, caller domain.Caller, id string, in ports.UpdateClientInput) (*domain.Client, error) {
	client, err := s.Get(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if !access.CanMutate(caller, client.CreatedBy) {
		return nil, domain.ErrForbidden
	}

	verr := &domain.ValidationError{}
	if in.CompanyName != nil {
		client.CompanyName = strings.TrimSpace(*in.CompanyName)
		checkCompanyName(verr, client.CompanyName)
	}
	usernameChanged := false
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		checkUsername(verr, name)
		usernameChanged = name != client.Username
		client.Username = name
	}
	var hash string
	if in.Password != nil {
		if reason := domain.CheckPassword(*in.Password); reason != "" {
			verr.Add("password", reason)
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	if in.Password != nil {
		if hash, err = hashPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.clients.Update(ctx, client); err != nil {
			return err
		}
		if client.ClientProfileID == "" || (!usernameChanged && hash == "") {
			return nil
		}
		return s.users.UpdateLogin(ctx, client.ClientProfileID, client.Username, hash)
	})
	if err != nil {
		if field := domain.UniquenessField(err); field == "username" {
			return nil, domain.NewValidationError("username", "a client with this username already exists")
		}
		return nil, fmt.Errorf("update client: %w", err)
	}

	s.log.Info().Str("client_id", client.ID).Str("updated_by", caller.ID).Msg("client updated")
	return client, nil
}

// Delete removes a Client the caller owns together with its Reports and its
// client-role login.
func (s *ClientService) Delete(ctx context.Context, caller domain.Caller, id string) error {
	client, err := s.Get(ctx, caller, id)
	if err != nil {
		return err
	}
	if !access.CanMutate(caller, client.CreatedBy) {
		return domain.ErrForbidden
	}

	ids := []string{client.ID}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.reports.DeleteByClientIDs(ctx, ids); err != nil {
			return err
		}
		if err := s.users.DeleteByClientIDs(ctx, ids); err != nil {
			return err
		}
		return s.clients.Delete(ctx, client.ID)
	})
	if err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.log.Info().Str("client_id", client.ID).Str("deleted_by", caller.ID).Msg("client deleted")
	return nil
}

// ReportCount counts all Reports of a Client visible to caller.
func (s *ClientService) ReportCount(ctx context.Context, caller domain.Caller, id string) (int64, error) {
	client, err := s.Get(ctx, caller, id)
	if err != nil {
		return 0, err
	}
	return s.reports.CountByClient(ctx, client.ID)
}

// canAuthor reports whether caller may create Clients and Reports.
func canAuthor(caller domain.Caller) bool {
	if caller.IsZero() {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin, domain.RoleCoreUser:
		return true
	case domain.RoleClient:
		return false
	default:
		return false
	}
}

func checkCompanyName(verr *domain.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("company_name", "this field is required")
	case utf8.RuneCountInString(name) > maxCompanyNameLen:
		verr.Add("company_name", "must be at most 255 characters")
	}
}

func checkUsername(verr *domain.ValidationError, name string) {
	switch {
	case name == "":
		verr.Add("username", "this field is required")
	case utf8.RuneCountInString(name) > maxUsernameLen:
		verr.Add("username", "must be at most 100 characters")
	case strings.Contains(name, "@"):
		verr.Add("username", "must not contain @")
	}
}
