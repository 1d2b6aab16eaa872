package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
	"github.com/biportal/portal-api/internal/infrastructure/http/handlers"
)

// Only the methods a test calls are implemented; the embedded interface
// panics on anything else.
type routerUsers struct{ ports.UserService }

func (routerUsers) Counts(_ context.Context, caller domain.Caller) (*domain.UserCounts, error) {
	if caller.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return &domain.UserCounts{Total: 3, CoreUsers: 1, ClientUsers: 1}, nil
}

type routerClients struct{ ports.ClientService }

func (routerClients) List(context.Context, domain.Caller) ([]*domain.Client, error) {
	return nil, nil
}

func (routerClients) Get(context.Context, domain.Caller, string) (*domain.Client, error) {
	return nil, domain.ErrClientNotFound
}

type routerAuth struct {
	ports.AuthService
	revoked []string
}

func (a *routerAuth) Logout(_ context.Context, refreshToken string) error {
	a.revoked = append(a.revoked, refreshToken)
	return nil
}

type routerVerifier struct{}

func (routerVerifier) VerifyAccess(token string) (domain.Caller, error) {
	switch token {
	case "admin":
		return domain.Caller{ID: "a1", Role: domain.RoleAdmin}, nil
	case "core":
		return domain.Caller{ID: "c1", Role: domain.RoleCoreUser}, nil
	}
	return domain.Caller{}, domain.ErrInvalidToken
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	return newTestRouterWithAuth(t, &routerAuth{})
}

func newTestRouterWithAuth(t *testing.T, auth ports.AuthService) http.Handler {
	t.Helper()
	return NewRouter(Deps{
		Auth:     auth,
		Verifier: routerVerifier{},
		Users:    routerUsers{},
		Clients:  routerClients{},
		Checks:   map[string]handlers.Check{"mongodb": func(context.Context) error { return nil }},
		Registry: prometheus.NewRegistry(),
		Log:      zerolog.Nop(),
	})
}

func do(t *testing.T, h http.Handler, method, target, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name     string
		method   string
		target   string
		token    string
		wantCode int
		wantBody string
	}{
		{"liveness", http.MethodGet, "/health", "", http.StatusOK, `{"status":"ok"}`},
		{"readiness", http.MethodGet, "/health/ready", "", http.StatusOK, `{"status":"ok","dependencies":{"mongodb":{"status":"ok"}}}`},
		{"clients need a token", http.MethodGet, "/clients", "", http.StatusUnauthorized, `{"error":"missing authorization header"}`},
		{"bad token", http.MethodGet, "/clients", "nope", http.StatusUnauthorized, `{"error":"invalid token"}`},
		{"trailing slash is accepted", http.MethodGet, "/clients/", "core", http.StatusOK, `[]`},
		{"client not found", http.MethodGet, "/clients/x", "core", http.StatusNotFound, `{"error":"client not found"}`},
		{"counts are admin only", http.MethodGet, "/user-counts/", "core", http.StatusForbidden, `{"error":"you do not have permission to perform this action"}`},
		{"counts for admin", http.MethodGet, "/user-counts", "admin", http.StatusOK, `{"total":3,"core_users":1,"client_users":1}`},
		{"unknown route", http.MethodGet, "/nowhere", "", http.StatusNotFound, `{"error":"Not Found"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, h, tc.method, tc.target, tc.token)
			assert.Equal(t, tc.wantCode, rec.Code)
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_LogoutWithoutBearerToken(t *testing.T) {
	auth := &routerAuth{}
	h := newTestRouterWithAuth(t, auth)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", strings.NewReader(`{"refresh":"r1"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, []string{"r1"}, auth.revoked)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	_ = do(t, h, http.MethodGet, "/clients", "core")
	rec := do(t, h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "portal_http_requests_total"))
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/clients", nil)
	req.Header.Set("Origin", "https://portal.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"*"}, allowedOrigins(nil))
	assert.Equal(t, []string{"*"}, allowedOrigins([]string{" "}))
	assert.Equal(t, []string{"https://a.example"}, allowedOrigins([]string{" https://a.example "}))
}
