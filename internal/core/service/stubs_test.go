package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/biportal/portal-api/internal/core/access"
	"github.com/biportal/portal-api/internal/core/domain"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories
// ---------------------------------------------------------------------------

type stubStore struct {
	mu      sync.Mutex
	users   map[string]domain.User
	clients map[string]domain.Client
	reports map[string]domain.Report

	// failUserCreate, when set, makes the next users.Create fail.
	failUserCreate error
	// failReportWrite, when set, makes reports.Create and reports.Update fail.
	failReportWrite error
	// locked records the client ids passed to clients.LockByID.
	locked []string
	commits        int
	rollbacks      int
}

func newStubStore() *stubStore {
	return &stubStore{
		users:   make(map[string]domain.User),
		clients: make(map[string]domain.Client),
		reports: make(map[string]domain.Report),
	}
}

func (s *stubStore) snapshot() (map[string]domain.User, map[string]domain.Client, map[string]domain.Report) {
	u := make(map[string]domain.User, len(s.users))
	for k, v := range s.users {
		u[k] = v
	}
	c := make(map[string]domain.Client, len(s.clients))
	for k, v := range s.clients {
		c[k] = v
	}
	r := make(map[string]domain.Report, len(s.reports))
	for k, v := range s.reports {
		r[k] = v
	}
	return u, c, r
}

// stubTx restores the store when the unit of work fails.
type stubTx struct{ s *stubStore }

func (t stubTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.s.mu.Lock()
	u, c, r := t.s.snapshot()
	t.s.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.s.mu.Lock()
		t.s.users, t.s.clients, t.s.reports = u, c, r
		t.s.rollbacks++
		t.s.mu.Unlock()
		return err
	}
	t.s.mu.Lock()
	t.s.commits++
	t.s.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUsers struct{ s *stubStore }

func (r stubUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.failUserCreate; err != nil {
		r.s.failUserCreate = nil
		return err
	}
	for _, u := range r.s.users {
		if user.Email != "" && u.Email == user.Email {
			return domain.ErrEmailTaken
		}
		if user.Username != "" && u.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r stubUsers) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r stubUsers) find(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email != "" && u.Email == email })
}

func (r stubUsers) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username != "" && u.Username == username })
}

func (r stubUsers) List(_ context.Context) ([]*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r stubUsers) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, u := range r.s.users {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r stubUsers) UpdateLogin(_ context.Context, id, username, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	for otherID, other := range r.s.users {
		if otherID != id && other.Username == username {
			return domain.ErrUsernameTaken
		}
	}
	u.Username = username
	if passwordHash != "" {
		u.PasswordHash = passwordHash
	}
	r.s.users[id] = u
	return nil
}

func (r stubUsers) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r stubUsers) DeleteByClientIDs(_ context.Context, clientIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := toSet(clientIDs)
	for id, u := range r.s.users {
		if _, ok := set[u.ClientID]; ok && u.ClientID != "" {
			delete(r.s.users, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Clients
// ---------------------------------------------------------------------------

type stubClients struct{ s *stubStore }

func (r stubClients) Create(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.clients {
		if existing.Username == c.Username {
			return domain.ErrClientUsernameTaken
		}
	}
	r.s.clients[c.ID] = *c
	return nil
}

func (r stubClients) FindByID(_ context.Context, id string, scope access.ClientScope) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.clients[id]
	if !ok || !scope.Matches(&c) {
		return nil, domain.ErrClientNotFound
	}
	return &c, nil
}

func (r stubClients) LockByID(ctx context.Context, id string, scope access.ClientScope) (*domain.Client, error) {
	r.s.mu.Lock()
	r.s.locked = append(r.s.locked, id)
	r.s.mu.Unlock()
	return r.FindByID(ctx, id, scope)
}

func (r stubClients) FindByProfileID(_ context.Context, userID string) (*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.clients {
		if c.ClientProfileID == userID {
			return &c, nil
		}
	}
	return nil, domain.ErrClientNotFound
}

func (r stubClients) List(_ context.Context, scope access.ClientScope) ([]*domain.Client, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Client{}
	for _, c := range r.s.clients {
		c := c
		if scope.Matches(&c) {
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyName < out[j].CompanyName })
	return out, nil
}

func (r stubClients) Update(_ context.Context, c *domain.Client) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.clients[c.ID]
	if !ok {
		return domain.ErrClientNotFound
	}
	for id, other := range r.s.clients {
		if id != c.ID && other.Username == c.Username {
			return domain.ErrClientUsernameTaken
		}
	}
	existing.CompanyName = c.CompanyName
	existing.Username = c.Username
	r.s.clients[c.ID] = existing
	return nil
}

func (r stubClients) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.clients, id)
	return nil
}

func (r stubClients) IDsCreatedBy(_ context.Context, userID string) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, c := range r.s.clients {
		if c.CreatedBy == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r stubClients) DeleteMany(_ context.Context, ids []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, id := range ids {
		delete(r.s.clients, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Reports
// ---------------------------------------------------------------------------

type stubReports struct{ s *stubStore }

func (r stubReports) Create(_ context.Context, rep *domain.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failReportWrite != nil {
		return r.s.failReportWrite
	}
	r.s.reports[rep.ID] = *rep
	return nil
}

func (r stubReports) FindByID(_ context.Context, id string, scope access.ReportScope) (*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rep, ok := r.s.reports[id]
	if !ok || !scope.Matches(&rep) {
		return nil, domain.ErrReportNotFound
	}
	return &rep, nil
}

func (r stubReports) List(_ context.Context, scope access.ReportScope) ([]*domain.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*domain.Report{}
	for _, rep := range r.s.reports {
		rep := rep
		if scope.Matches(&rep) {
			out = append(out, &rep)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r stubReports) CountByClient(_ context.Context, clientID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rep := range r.s.reports {
		if rep.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (r stubReports) Update(_ context.Context, rep *domain.Report) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failReportWrite != nil {
		return r.s.failReportWrite
	}
	if _, ok := r.s.reports[rep.ID]; !ok {
		return domain.ErrReportNotFound
	}
	r.s.reports[rep.ID] = *rep
	return nil
}

func (r stubReports) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.reports, id)
	return nil
}

func (r stubReports) DeleteByClientIDs(_ context.Context, clientIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	set := toSet(clientIDs)
	for id, rep := range r.s.reports {
		if _, ok := set[rep.ClientID]; ok {
			delete(r.s.reports, id)
		}
	}
	return nil
}

func (r stubReports) DeleteByCreator(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, rep := range r.s.reports {
		if rep.CreatedBy == userID {
			delete(r.s.reports, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Revocation store
// ---------------------------------------------------------------------------

type stubRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (s *stubRevocations) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.revoked[jti] = ttl
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.revoked[jti]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errBoom = errors.New("boom")

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

type fixture struct {
	store   *stubStore
	revoked *stubRevocations
	tokens  *TokenIssuer
	auth    *AuthService
	users   *UserService
	clients *ClientService
	reports *ReportService
}

func newFixture() *fixture {
	store := newStubStore()
	revoked := newStubRevocations()
	users, clients, reports, tx := stubUsers{store}, stubClients{store}, stubReports{store}, stubTx{store}
	tokens := NewTokenIssuer("secret", time.Minute, time.Hour, revoked)

	return &fixture{
		store:   store,
		revoked: revoked,
		tokens:  tokens,
		auth:    NewAuthService(users, tokens, discardLogger),
		users:   NewUserService(users, clients, reports, tx, discardLogger),
		clients: NewClientService(clients, users, reports, tx, discardLogger),
		reports: NewReportService(reports, clients, tx, discardLogger),
	}
}

// seedUser stores an account directly, bypassing hashing.
func (f *fixture) seedUser(id string, role domain.Role) domain.Caller {
	f.store.users[id] = domain.User{ID: id, Email: id + "@example.com", Role: role, Status: domain.StatusActive}
	return domain.Caller{ID: id, Role: role}
}
