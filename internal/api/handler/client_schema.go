package handler

import "time"

type createClientRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=255"`
	Username    string `json:"username"     validate:"required,max=100,excludes=@"`
	Password    string `json:"password"     validate:"required,password"`
}

// replaceClientRequest is the PUT body: every writable field except the
// password must be present.
type replaceClientRequest struct {
	CompanyName string `json:"company_name" validate:"required,max=255"`
	Username    string `json:"username"     validate:"required,max=100,excludes=@"`
	Password    string `json:"password"     validate:"omitempty,password"`
}

// patchClientRequest is the PATCH body; absent fields are left untouched.
type patchClientRequest struct {
	CompanyName *string `json:"company_name" validate:"omitempty,max=255"`
	Username    *string `json:"username"     validate:"omitempty,max=100,excludes=@"`
	Password    *string `json:"password"     validate:"omitempty,password"`
}

type clientResponse struct {
	ID              string    `json:"id"`
	CompanyName     string    `json:"company_name"`
	Username        string    `json:"username"`
	CreatedBy       string    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
	ClientProfileID string    `json:"client_profile_id,omitempty"`
}

type reportCountResponse struct {
	Count int64 `json:"count"`
}
