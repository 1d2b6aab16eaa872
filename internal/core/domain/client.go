package domain

import "time"

// Client is a tenant company record. Each Client is provisioned together with
// exactly one client-role User whose ClientID points back at it.
type Client struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"company_name"`
	Username        string    `json:"username"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	ClientProfileID string    `json:"client_profile_id,omitempty"`
}
