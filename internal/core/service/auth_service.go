package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

// AuthService implements registration, login and the refresh token lifecycle.
type AuthService struct {
	users  ports.UserRepository
	tokens *TokenIssuer
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(users ports.UserRepository, tokens *TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, log: log, now: time.Now}
}

// Register creates a core_user account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)

	verr := &domain.ValidationError{}
	if email == "" {
		verr.Add("email", "this field is required")
	}
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

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleCoreUser,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		PhoneNumber:  in.PhoneNumber,
		CompanyName:  in.CompanyName,
		BusinessType: in.BusinessType,
		Subscription: domain.SubscriptionFree,
		Status:       domain.StatusActive,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("core user registered")
	return user, nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.ErrInvalidCredentials
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role != domain.RoleAdmin {
			s.log.Warn().Str("user_id", existing.ID).Msg("bootstrap admin email belongs to a non-admin account")
		}
		return nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return fmt.Errorf("ensure admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Subscription: domain.SubscriptionEnterprise,
		Status:       domain.StatusActive,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}

	s.log.Info().Str("user_id", admin.ID).Msg("bootstrap admin created")
	return nil
}

// Authenticate resolves identifier and password to an account.
func (s *AuthService) Authenticate(ctx context.Context, identifier, password string) (*domain.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(identifier))
	if errors.Is(err, domain.ErrUserNotFound) {
		user, err = s.users.FindByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if user.Status != "" && user.Status != domain.StatusActive {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, identifier, password string) (*ports.TokenPair, *domain.User, error) {
	user, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		return nil, nil, err
	}

	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("login")
	return pair, user, nil
}

// Refresh returns a new access token. The account must still exist; its
// current role and client link are used, not the ones at login time.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	userID, err := s.tokens.VerifyRefresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidToken
		}
		return "", err
	}

	access, _, err := s.tokens.IssueAccess(user)
	return access, err
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, refreshToken); err != nil {
		return err
	}
	s.log.Info().Msg("refresh token revoked")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
