// Package access computes which Clients and Reports a caller may see and
// whether a caller may mutate a given record.
//
// Scopes are conjunctions of field equalities. An empty field means "no
// constraint on that field"; Deny short-circuits to the empty set. Storage
// adapters translate a scope into their own query language, and Matches
// evaluates the same predicate in memory.
package access

import (
	"context"

	"github.com/biportal/portal-api/internal/core/domain"
)

// ClientScope narrows the Client collection.
type ClientScope struct {
	Deny      bool
	CreatedBy string
	// ProfileID matches Client.ClientProfileID, the provisioned account.
	ProfileID string
}

// Matches reports whether c is inside the scope.
func (s ClientScope) Matches(c *domain.Client) bool {
	if s.Deny || c == nil {
		return false
	}
	if s.CreatedBy != "" && c.CreatedBy != s.CreatedBy {
		return false
	}
	if s.ProfileID != "" && c.ClientProfileID != s.ProfileID {
		return false
	}
	return true
}

// ReportScope narrows the Report collection.
type ReportScope struct {
	Deny      bool
	CreatedBy string
	ClientID  string
}

// Matches reports whether r is inside the scope.
func (s ReportScope) Matches(r *domain.Report) bool {
	if s.Deny || r == nil {
		return false
	}
	if s.CreatedBy != "" && r.CreatedBy != s.CreatedBy {
		return false
	}
	if s.ClientID != "" && r.ClientID != s.ClientID {
		return false
	}
	return true
}

// Narrow intersects the scope with an exact Client id. It never widens: a
// scope already pinned to a different Client becomes empty.
func (s ReportScope) Narrow(clientID string) ReportScope {
	if clientID == "" || s.Deny {
		return s
	}
	if s.ClientID != "" && s.ClientID != clientID {
		return ReportScope{Deny: true}
	}
	s.ClientID = clientID
	return s
}

// Clients returns the Client scope of caller.
func Clients(caller domain.Caller) ClientScope {
	if caller.IsZero() {
		return ClientScope{Deny: true}
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return ClientScope{}
	case domain.RoleCoreUser:
		return ClientScope{CreatedBy: caller.ID}
	case domain.RoleClient:
		return ClientScope{ProfileID: caller.ID}
	default:
		return ClientScope{Deny: true}
	}
}

// Reports returns the Report scope of caller. linkedClientID is the id of the
// Client provisioned for a client-role caller; it is ignored for other roles
// and an empty value denies everything for client-role callers.
func Reports(caller domain.Caller, linkedClientID, clientIDHint string) ReportScope {
	if caller.IsZero() {
		return ReportScope{Deny: true}
	}

	var scope ReportScope
	switch caller.Role {
	case domain.RoleAdmin:
		scope = ReportScope{}
	case domain.RoleCoreUser:
		scope = ReportScope{CreatedBy: caller.ID}
	case domain.RoleClient:
		if linkedClientID == "" {
			return ReportScope{Deny: true}
		}
		scope = ReportScope{ClientID: linkedClientID}
	default:
		return ReportScope{Deny: true}
	}
	return scope.Narrow(clientIDHint)
}

// LinkedClientFinder finds the Client whose profile link is the given user.
type LinkedClientFinder interface {
	FindByProfileID(ctx context.Context, userID string) (*domain.Client, error)
}

// ResolveReports is Reports with the client-role lookup performed through
// finder. Any lookup failure yields the empty scope.
func ResolveReports(ctx context.Context, finder LinkedClientFinder, caller domain.Caller, clientIDHint string) ReportScope {
	var linked string
	if caller.Role == domain.RoleClient && !caller.IsZero() {
		c, err := finder.FindByProfileID(ctx, caller.ID)
		if err != nil || c == nil {
			return ReportScope{Deny: true}
		}
		linked = c.ID
	}
	return Reports(caller, linked, clientIDHint)
}

// CanMutate reports whether caller may update or delete a record created by
// createdBy. Client-role accounts never create records, so in practice they
// never pass.
func CanMutate(caller domain.Caller, createdBy string) bool {
	if caller.IsZero() {
		return false
	}
	switch caller.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCoreUser, domain.RoleClient:
		return createdBy != "" && createdBy == caller.ID
	default:
		return false
	}
}
