package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

func acmeInput() ports.CreateClientInput {
	return ports.CreateClientInput{CompanyName: "Acme", Username: "acme1", Password: "Strong!Pass1"}
}

func strPtr(s string) *string { return &s }

func TestClientService_Create_ProvisionsLinkedLogin(t *testing.T) {
	f := newFixture()
	admin := f.seedUser("admin-1", domain.RoleAdmin)

	client, err := f.clients.Create(context.Background(), admin, acmeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if client.CreatedBy != admin.ID {
		t.Fatalf("expected created_by %s, got %s", admin.ID, client.CreatedBy)
	}

	var logins []domain.User
	for _, u := range f.store.users {
		if u.Role == domain.RoleClient {
			logins = append(logins, u)
		}
	}
	if len(logins) != 1 {
		t.Fatalf("expected exactly one client-role user, got %d", len(logins))
	}
	login := logins[0]
	if login.ClientID != client.ID || login.ID != client.ClientProfileID {
		t.Fatalf("login not linked: %+v client %+v", login, client)
	}
	if login.Username != "acme1" {
		t.Fatalf("unexpected username %q", login.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte("Strong!Pass1")); err != nil {
		t.Fatalf("password not hashed from input: %v", err)
	}

	count, err := f.clients.ReportCount(context.Background(), admin, client.ID)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 reports, got %d (%v)", count, err)
	}
	if f.store.commits != 1 {
		t.Fatalf("expected one committed unit of work, got %d", f.store.commits)
	}
}

func TestClientService_Create_RollsBackWhenLoginFails(t *testing.T) {
	f := newFixture()
	admin := f.seedUser("admin-1", domain.RoleAdmin)
	f.store.failUserCreate = errBoom

	if _, err := f.clients.Create(context.Background(), admin, acmeInput()); !errors.Is(err, errBoom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(f.store.clients) != 0 {
		t.Fatalf("client must not survive a failed provisioning, found %d", len(f.store.clients))
	}
	if f.store.rollbacks != 1 {
		t.Fatalf("expected a rollback, got %d", f.store.rollbacks)
	}
}

func TestClientService_Create_DuplicateUsername(t *testing.T) {
	f := newFixture()
	admin := f.seedUser("admin-1", domain.RoleAdmin)

	if _, err := f.clients.Create(context.Background(), admin, acmeInput()); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.clients.Create(context.Background(), admin, acmeInput())
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["username"] == "" {
		t.Fatalf("expected username validation error, got %v", err)
	}
	if len(f.store.clients) != 1 {
		t.Fatalf("expected a single client, got %d", len(f.store.clients))
	}
}

func TestClientService_Create_Validation(t *testing.T) {
	f := newFixture()
	core := f.seedUser("core-a", domain.RoleCoreUser)

	_, err := f.clients.Create(context.Background(), core, ports.CreateClientInput{Username: "x@y", Password: "short"})
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"company_name", "username", "password"} {
		if verr.Fields[field] == "" {
			t.Errorf("expected message for %s, got %+v", field, verr.Fields)
		}
	}
}

func TestClientService_PasswordTooLongForBcrypt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	core := f.seedUser("core-a", domain.RoleCoreUser)
	long := strings.Repeat("Ab1!", 20) + "xy"

	in := acmeInput()
	in.Password = long
	_, err := f.clients.Create(ctx, core, in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected password ValidationError on create, got %v", err)
	}
	if len(f.store.clients) != 0 {
		t.Fatalf("expected no client stored, got %d", len(f.store.clients))
	}

	client, err := f.clients.Create(ctx, core, acmeInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = f.clients.Update(ctx, core, client.ID, ports.UpdateClientInput{Password: strPtr(long)})
	if !errors.As(err, &verr) || verr.Fields["password"] == "" {
		t.Fatalf("expected password ValidationError on update, got %v", err)
	}
}

func TestClientService_LengthsCountCharacters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	core := f.seedUser("core-a", domain.RoleCoreUser)

	in := acmeInput()
	in.CompanyName = strings.Repeat("ü", 255)
	in.Username = strings.Repeat("ß", 100)
	if _, err := f.clients.Create(ctx, core, in); err != nil {
		t.Fatalf("multibyte names within limits must be accepted, got %v", err)
	}

	in = acmeInput()
	in.CompanyName = strings.Repeat("ü", 256)
	in.Username = strings.Repeat("ß", 101)
	_, err := f.clients.Create(ctx, core, in)
	var verr *domain.ValidationError
	if !errors.As(err, &verr) || verr.Fields["company_name"] == "" || verr.Fields["username"] == "" {
		t.Fatalf("expected company_name and username errors, got %v", err)
	}
}

func TestClientService_Create_ForbiddenForClientRole(t *testing.T) {
	f := newFixture()
	login := f.seedUser("acme-user", domain.RoleClient)

	if _, err := f.clients.Create(context.Background(), login, acmeInput()); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestClientService_List_ScopedByRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := f.seedUser("admin-1", domain.RoleAdmin)
	coreA := f.seedUser("core-a", domain.RoleCoreUser)
	coreB := f.seedUser("core-b", domain.RoleCoreUser)

	acme, err := f.clients.Create(ctx, admin, acmeInput())
	if err != nil {
		t.Fatalf("create acme: %v", err)
	}
	globex, err := f.clients.Create(ctx, coreA, ports.CreateClientInput{CompanyName: "Globex", Username: "globex", Password: "Strong!Pass1"})
	if err != nil {
		t.Fatalf("create globex: %v", err)
	}

	all, _ := f.clients.List(ctx, admin)
	if len(all) != 2 {
		t.Fatalf("admin should see 2 clients, got %d", len(all))
	}

	own, _ := f.clients.List(ctx, coreA)
	if len(own) != 1 || own[0].ID != globex.ID {
		t.Fatalf("core-a should see only globex, got %+v", own)
	}

	none, _ := f.clients.List(ctx, coreB)
	if len(none) != 0 {
		t.Fatalf("core-b should see nothing, got %+v", none)
	}

	acmeLogin := domain.Caller{ID: acme.ClientProfileID, Role: domain.RoleClient}
	linked, _ := f.clients.List(ctx, acmeLogin)
	if len(linked) != 1 || linked[0].ID != acme.ID {
		t.Fatalf("acme login should see only acme, got %+v", linked)
	}

	if _, err := f.clients.Get(ctx, coreB, acme.ID); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("out-of-scope get must be not found, got %v", err)
	}
	if _, err := f.clients.ReportCount(ctx, coreB, acme.ID); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("out-of-scope report_count must be not found, got %v", err)
	}
}

func TestClientService_Update_MirrorsLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	core := f.seedUser("core-a", domain.RoleCoreUser)

	client, _ := f.clients.Create(ctx, core, acmeInput())

	updated, err := f.clients.Update(ctx, core, client.ID, ports.UpdateClientInput{
		CompanyName: strPtr("Acme Corp"),
		Username:    strPtr("acme2"),
		Password:    strPtr("Another!Pass2"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.CompanyName != "Acme Corp" || updated.Username != "acme2" {
		t.Fatalf("unexpected client: %+v", updated)
	}
	if updated.CreatedBy != core.ID || updated.ClientProfileID != client.ClientProfileID {
		t.Fatalf("immutable fields changed: %+v", updated)
	}

	login := f.store.users[client.ClientProfileID]
	if login.Username != "acme2" {
		t.Fatalf("login username not mirrored: %q", login.Username)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(login.PasswordHash), []byte("Another!Pass2")); err != nil {
		t.Fatalf("login password not updated: %v", err)
	}
}

func TestClientService_Update_OwnershipAndScope(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	coreA := f.seedUser("core-a", domain.RoleCoreUser)
	coreB := f.seedUser("core-b", domain.RoleCoreUser)
	admin := f.seedUser("admin-1", domain.RoleAdmin)

	client, _ := f.clients.Create(ctx, coreA, acmeInput())

	if _, err := f.clients.Update(ctx, coreB, client.ID, ports.UpdateClientInput{CompanyName: strPtr("x")}); !errors.Is(err, domain.ErrClientNotFound) {
		t.Fatalf("expected not found for other core user, got %v", err)
	}

	login := domain.Caller{ID: client.ClientProfileID, Role: domain.RoleClient}
	if _, err := f.clients.Update(ctx, login, client.ID, ports.UpdateClientInput{CompanyName: strPtr("x")}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("client-role login can see but not mutate, got %v", err)
	}

	if _, err := f.clients.Update(ctx, admin, client.ID, ports.UpdateClientInput{CompanyName: strPtr("By Admin")}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestClientService_Delete_Cascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	core := f.seedUser("core-a", domain.RoleCoreUser)

	client, _ := f.clients.Create(ctx, core, acmeInput())
	if _, err := f.reports.Create(ctx, core, reportInput(client.ID)); err != nil {
		t.Fatalf("create report: %v", err)
	}

	if err := f.clients.Delete(ctx, core, client.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.store.clients) != 0 || len(f.store.reports) != 0 {
		t.Fatalf("expected client and reports gone, got %d/%d", len(f.store.clients), len(f.store.reports))
	}
	if _, ok := f.store.users[client.ClientProfileID]; ok {
		t.Fatalf("linked login must be removed with its client")
	}
	if _, ok := f.store.users[core.ID]; !ok {
		t.Fatalf("creator must survive")
	}
}
