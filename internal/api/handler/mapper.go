package handler

import (
	"time"

	"github.com/biportal/portal-api/internal/core/domain"
	"github.com/biportal/portal-api/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		CompanyName:  req.CompanyName,
		BusinessType: req.BusinessType,
	}
}

func toCreateClientInput(req createClientRequest) ports.CreateClientInput {
	return ports.CreateClientInput{
		CompanyName: req.CompanyName,
		Username:    req.Username,
		Password:    req.Password,
	}
}

// toReplaceClientInput turns a PUT body into a full update. An empty password
// keeps the current one.
func toReplaceClientInput(req replaceClientRequest) ports.UpdateClientInput {
	in := ports.UpdateClientInput{
		CompanyName: &req.CompanyName,
		Username:    &req.Username,
	}
	if req.Password != "" {
		in.Password = &req.Password
	}
	return in
}

func toPatchClientInput(req patchClientRequest) ports.UpdateClientInput {
	return ports.UpdateClientInput{
		CompanyName: req.CompanyName,
		Username:    req.Username,
		Password:    req.Password,
	}
}

func toCreateReportInput(req createReportRequest) ports.CreateReportInput {
	return ports.CreateReportInput{
		Name:     req.Name,
		ClientID: req.ClientID,
		EmbedURL: req.EmbedURL,
		Type:     domain.ReportType(req.Type),
	}
}

// toReplaceReportInput treats a PUT body as a full update; an omitted type
// resets to the default.
func toReplaceReportInput(req createReportRequest) ports.UpdateReportInput {
	typ := domain.ReportType(req.Type)
	if typ == "" {
		typ = domain.ReportTypeReport
	}
	return ports.UpdateReportInput{
		Name:     &req.Name,
		ClientID: &req.ClientID,
		EmbedURL: &req.EmbedURL,
		Type:     &typ,
	}
}

func toPatchReportInput(req patchReportRequest) ports.UpdateReportInput {
	in := ports.UpdateReportInput{
		Name:     req.Name,
		ClientID: req.ClientID,
		EmbedURL: req.EmbedURL,
	}
	if req.Type != nil {
		typ := domain.ReportType(*req.Type)
		in.Type = &typ
	}
	return in
}

// --- Domain → Response ---

type userResponse struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email,omitempty"`
	Username           string     `json:"username,omitempty"`
	Name               *string    `json:"name"`
	Role               string     `json:"role"`
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

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Username:           u.Username,
		Role:               string(u.Role),
		ClientID:           u.ClientID,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		PhoneNumber:        u.PhoneNumber,
		CompanyName:        u.CompanyName,
		BusinessType:       u.BusinessType,
		Subscription:       u.Subscription,
		SubscriptionExpiry: u.SubscriptionExpiry,
		Status:             u.Status,
		CreatedAt:          u.CreatedAt,
	}
	if name := u.FullName(); name != "" {
		resp.Name = &name
	}
	return resp
}

func toClientResponse(c *domain.Client) clientResponse {
	return clientResponse{
		ID:              c.ID,
		CompanyName:     c.CompanyName,
		Username:        c.Username,
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		ClientProfileID: c.ClientProfileID,
	}
}

func toReportResponse(r *domain.Report) reportResponse {
	return reportResponse{
		ID:        r.ID,
		Name:      r.Name,
		ClientID:  r.ClientID,
		EmbedURL:  r.EmbedURL,
		Type:      string(r.Type),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func mapSlice[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
