package handler

import "time"

// createReportRequest carries no created_by: the creator is always the caller.
type createReportRequest struct {
	Name     string `json:"name"               validate:"required,max=255"`
	ClientID string `json:"client"             validate:"required"`
	EmbedURL string `json:"power_bi_embed_url" validate:"required,url,max=1000"`
	Type     string `json:"type"               validate:"omitempty,oneof=Dashboard Report"`
}

type patchReportRequest struct {
	Name     *string `json:"name"               validate:"omitempty,max=255"`
	ClientID *string `json:"client"`
	EmbedURL *string `json:"power_bi_embed_url" validate:"omitempty,url,max=1000"`
	Type     *string `json:"type"               validate:"omitempty,oneof=Dashboard Report"`
}

type reportResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ClientID  string    `json:"client"`
	EmbedURL  string    `json:"power_bi_embed_url"`
	Type      string    `json:"type"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
