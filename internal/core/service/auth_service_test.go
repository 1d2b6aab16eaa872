package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

func registerInput(email string) ports.RegisterInput {
	return ports.RegisterInput{
		Email:     email,
		Password:  "Strong!Pass1",
		FirstName: "Alice",
		LastName:  "Doe",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newFixture()

	user, err := f.auth.Register(context.Background(), registerInput(" Alice@Example.com "))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalised email, got %q", user.Email)
	}
	if user.Role != domain.RoleCoreUser {
		t.Fatalf("expected core_user role, got %s", user.Role)
	}
	if user.PasswordHash == "Strong!Pass1" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("Strong!Pass1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Subscription != domain.SubscriptionFree || user.Status != domain.StatusActive {
		t.Fatalf("unexpected defaults: %+v", user)
	}
	if user.FullName() != "Alice Doe" {
		t.Fatalf("unexpected full name %q", user.FullName())
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newFixture()

	_, err := f.auth.Register(context.Background(), ports.RegisterInput{Password: "123"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["email"] == "" || verr.Fields["password"] == "" {
		t.Fatalf("expected email and password messages, got %+v", verr.Fields)
	}

	in := registerInput("bob@example.com")
	in.Password = "12345678901"
	if _, err := f.auth.Register(context.Background(), in); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for numeric password, got %v", err)
	}
}

func TestAuthService_Register_PasswordTooLongForBcrypt(t *testing.T) {
	f := newFixture()

	in := registerInput("long@example.com")
	in.Password = strings.Repeat("Ab1!", 20) + "xy"
	_, err := f.auth.Register(context.Background(), in)

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["password"] != "must be at most 72 bytes" {
		t.Fatalf("unexpected password message: %+v", verr.Fields)
	}
	if len(f.store.users) != 0 {
		t.Fatalf("expected no user stored, got %d", len(f.store.users))
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	f := newFixture()

	if _, err := f.auth.Register(context.Background(), registerInput("bob@example.com")); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := f.auth.Register(context.Background(), registerInput("BOB@example.com")); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newFixture()

	registered, err := f.auth.Register(context.Background(), registerInput("carol@example.com"))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	pair, user, err := f.auth.Login(context.Background(), "carol@example.com", "Strong!Pass1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}
	if user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !pair.RefreshExpiresAt.After(pair.AccessExpiresAt) {
		t.Fatalf("refresh token must outlive access token")
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(pair.Access, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["role"] != string(domain.RoleCoreUser) || claims["sub"] != registered.ID || claims["typ"] != "access" {
		t.Fatalf("unexpected claims: %v", claims)
	}
}

func TestAuthService_Login_ByUsernameForClientAccounts(t *testing.T) {
	f := newFixture()
	admin := f.seedUser("admin-1", domain.RoleAdmin)

	client, err := f.clients.Create(context.Background(), admin, ports.CreateClientInput{
		CompanyName: "Acme", Username: "acme1", Password: "Strong!Pass1",
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	pair, user, err := f.auth.Login(context.Background(), "acme1", "Strong!Pass1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user.Role != domain.RoleClient || user.ClientID != client.ID {
		t.Fatalf("unexpected user: %+v", user)
	}
	caller, err := f.tokens.VerifyAccess(pair.Access)
	if err != nil || caller.ID != client.ClientProfileID {
		t.Fatalf("unexpected caller %+v err %v", caller, err)
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	f := newFixture()

	_, _ = f.auth.Register(context.Background(), registerInput("dave@example.com"))
	if _, _, err := f.auth.Login(context.Background(), "dave@example.com", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownAccount(t *testing.T) {
	f := newFixture()

	if _, _, err := f.auth.Login(context.Background(), "ghost@example.com", "pass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.auth.Login(context.Background(), "", ""); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty input, got %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	f := newFixture()

	user, _ := f.auth.Register(context.Background(), registerInput("erin@example.com"))
	u := f.store.users[user.ID]
	u.Status = "suspended"
	f.store.users[user.ID] = u

	if _, _, err := f.auth.Login(context.Background(), "erin@example.com", "Strong!Pass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _ = f.auth.Register(ctx, registerInput("frank@example.com"))
	pair, _, err := f.auth.Login(ctx, "frank@example.com", "Strong!Pass1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	access, err := f.auth.Refresh(ctx, pair.Refresh)
	if err != nil || access == "" {
		t.Fatalf("refresh failed: %v", err)
	}
	if _, err := f.tokens.VerifyAccess(access); err != nil {
		t.Fatalf("refreshed access token invalid: %v", err)
	}

	if err := f.auth.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := f.auth.Refresh(ctx, pair.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after revoke, got %v", err)
	}
	if err := f.auth.Logout(ctx, pair.Refresh); err != nil {
		t.Fatalf("second logout must succeed, got %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessTokenAndGarbage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _ = f.auth.Register(ctx, registerInput("gina@example.com"))
	pair, _, _ := f.auth.Login(ctx, "gina@example.com", "Strong!Pass1")

	if _, err := f.auth.Refresh(ctx, pair.Access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token must not refresh, got %v", err)
	}
	if _, err := f.tokens.VerifyAccess(pair.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("refresh token must not authenticate requests, got %v", err)
	}
	if _, err := f.auth.Refresh(ctx, "not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := f.auth.Logout(ctx, "not-a-token"); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on malformed logout, got %v", err)
	}
}

func TestAuthService_Refresh_DeletedUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	user, _ := f.auth.Register(ctx, registerInput("hank@example.com"))
	pair, _, _ := f.auth.Login(ctx, "hank@example.com", "Strong!Pass1")
	delete(f.store.users, user.ID)

	if _, err := f.auth.Refresh(ctx, pair.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenIssuer_ExpiredRefresh(t *testing.T) {
	revoked := newStubRevocations()
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour, revoked)
	base := time.Now()
	issuer.now = func() time.Time { return base }

	pair, err := issuer.IssuePair(&domain.User{ID: "u1", Role: domain.RoleCoreUser})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(2 * time.Hour) }
	if _, err := issuer.VerifyRefresh(context.Background(), pair.Refresh); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired refresh to fail, got %v", err)
	}
	if _, err := issuer.VerifyAccess(pair.Access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected expired access to fail, got %v", err)
	}
}

func TestTokenIssuer_RevokeStoresRemainingLifetime(t *testing.T) {
	revoked := newStubRevocations()
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour, revoked)

	pair, _ := issuer.IssuePair(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	if err := issuer.Revoke(context.Background(), pair.Refresh); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if len(revoked.revoked) != 1 {
		t.Fatalf("expected one revocation entry, got %d", len(revoked.revoked))
	}
	for _, ttl := range revoked.revoked {
		if ttl <= 0 || ttl > time.Hour {
			t.Fatalf("unexpected ttl %s", ttl)
		}
	}
}

func TestTokenIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute, time.Hour, newStubRevocations())
	other := NewTokenIssuer("other", time.Minute, time.Hour, newStubRevocations())

	pair, _ := other.IssuePair(&domain.User{ID: "u1", Role: domain.RoleAdmin})
	if _, err := issuer.VerifyAccess(pair.Access); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.auth.EnsureAdmin(ctx, "root@example.com", "Strong!Pass1"); err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	if err := f.auth.EnsureAdmin(ctx, "root@example.com", "Strong!Pass1"); err != nil {
		t.Fatalf("second ensure admin must be a no-op: %v", err)
	}

	n, _ := stubUsers{f.store}.CountByRole(ctx, domain.RoleAdmin)
	if n != 1 {
		t.Fatalf("expected exactly one admin, got %d", n)
	}
	if _, _, err := f.auth.Login(ctx, "root@example.com", "Strong!Pass1"); err != nil {
		t.Fatalf("admin login: %v", err)
	}
}
