package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 5 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

type tokenClaims struct {
	Type     string `json:"typ"`
	Role     string `json:"role,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access/refresh tokens. Refresh tokens
// move from issued to revoked (through the revocation store) or expired;
// neither state is left again.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    ports.RevocationStore
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration, revoked ports.RevocationStore) *TokenIssuer {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		now:        time.Now,
	}
}

// IssuePair returns a fresh access and refresh token for user.
func (t *TokenIssuer) IssuePair(user *domain.User) (*ports.TokenPair, error) {
	access, accessExp, err := t.IssueAccess(user)
	if err != nil {
		return nil, err
	}

	now := t.now()
	refreshExp := now.Add(t.refreshTTL)
	refresh, err := t.sign(tokenClaims{
		Type:             tokenTypeRefresh,
		RegisteredClaims: t.registered(user.ID, now, refreshExp),
	})
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &ports.TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// IssueAccess returns a short-lived access token carrying the user's role and
// linked client.
func (t *TokenIssuer) IssueAccess(user *domain.User) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.accessTTL)
	signed, err := t.sign(tokenClaims{
		Type:             tokenTypeAccess,
		Role:             string(user.Role),
		ClientID:         user.ClientID,
		RegisteredClaims: t.registered(user.ID, now, exp),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, exp, nil
}

// VerifyAccess validates an access token and returns the identity it carries.
func (t *TokenIssuer) VerifyAccess(token string) (domain.Caller, error) {
	claims, err := t.parse(token, tokenTypeAccess)
	if err != nil {
		return domain.Caller{}, err
	}
	return domain.Caller{ID: claims.Subject, Role: domain.Role(claims.Role)}, nil
}

// VerifyRefresh validates a refresh token, including its revocation state,
// and returns the user id it was issued for.
func (t *TokenIssuer) VerifyRefresh(ctx context.Context, token string) (string, error) {
	claims, err := t.parse(token, tokenTypeRefresh)
	if err != nil {
		return "", err
	}

	revoked, err := t.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// Revoke marks a refresh token unusable. The revocation entry lives as long
// as the token would have.
func (t *TokenIssuer) Revoke(ctx context.Context, token string) error {
	claims, err := t.parse(token, tokenTypeRefresh)
	if err != nil {
		return err
	}

	ttl := claims.ExpiresAt.Sub(t.now())
	if ttl <= 0 {
		return nil
	}
	if err := t.revoked.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (t *TokenIssuer) registered(subject string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (t *TokenIssuer) sign(claims tokenClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

func (t *TokenIssuer) parse(token, wantType string) (*tokenClaims, error) {
	if token == "" {
		return nil, domain.ErrInvalidToken
	}

	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, errors.Join(domain.ErrInvalidToken, err)
	}
	if claims.Type != wantType || claims.Subject == "" || claims.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
