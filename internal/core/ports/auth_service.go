package ports

import (
	"context"
	"time"

	"github.com/biportal/portal-api/internal/core/domain"
)

// RegisterInput carries the self-service sign-up fields. Role is not part of
// it: registered accounts are always core users.
type RegisterInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	PhoneNumber  string
	CompanyName  string
	BusinessType string
}

// TokenPair is the result of a successful login.
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// AuthService covers registration and the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login authenticates by email (or username for client-role accounts)
	// and issues a token pair.
	Login(ctx context.Context, identifier, password string) (*TokenPair, *domain.User, error)
	// Refresh exchanges a refresh token for a new access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Logout revokes a refresh token. Revoking an already revoked token succeeds.
	Logout(ctx context.Context, refreshToken string) error
}

// TokenVerifier validates bearer access tokens.
type TokenVerifier interface {
	VerifyAccess(token string) (domain.Caller, error)
}
