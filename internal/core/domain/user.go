package domain

import (
	"strings"
	"time"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCoreUser Role = "core_user"
	RoleClient   Role = "client"
)

// ParseRole returns the Role named by s and false when s names no known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleCoreUser, RoleClient:
		return r, true
	default:
		return "", false
	}
}

// Subscription plans.
const (
	SubscriptionFree         = "free"
	SubscriptionProfessional = "professional"
	SubscriptionEnterprise   = "enterprise"
)

const StatusActive = "active"

// User models an authenticated actor in the system.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email,omitempty"`
	Username           string     `json:"username,omitempty"`
	PasswordHash       string     `json:"-"`
	Role               Role       `json:"role"`
	ClientID           string     `json:"client_id,omitempty"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	PhoneNumber        string     `json:"phone_number"`
	CompanyName        string     `json:"company_name"`
	BusinessType       string     `json:"business_type"`
	Subscription       string     `json:"subscription"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	Status             string     `json:"status"`
	CreatedAt          time.Time  `json:"created_at"`
}

// FullName joins first and last name, or returns "" when both are empty.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Caller is the authenticated identity on whose behalf an operation runs.
type Caller struct {
	ID   string
	Role Role
}

// IsZero reports whether no identity was established.
func (c Caller) IsZero() bool {
	return c.ID == ""
}

// Caller returns the identity of u.
func (u *User) Caller() Caller {
	return Caller{ID: u.ID, Role: u.Role}
}

// UserCounts is the admin dashboard summary.
type UserCounts struct {
	Total       int64 `json:"total"`
	CoreUsers   int64 `json:"core_users"`
	ClientUsers int64 `json:"client_users"`
}
