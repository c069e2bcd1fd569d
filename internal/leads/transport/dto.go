package transport

import (
	"time"

	"dealer_backend/internal/leads/scoring"

	"github.com/google/uuid"
)

// Request DTOs

type CreateLeadRequest struct {
	FirstName string     `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string     `json:"lastName" validate:"required,min=1,max=100"`
	Email     string     `json:"email" validate:"omitempty,email,max=254"`
	Phone     string     `json:"phone" validate:"omitempty,min=5,max=40"`
	Message   string     `json:"message" validate:"omitempty,max=5000"`
	Notes     string     `json:"notes" validate:"omitempty,max=5000"`
	Source    string     `json:"source" validate:"omitempty,leadsource"`
	VehicleID *uuid.UUID `json:"vehicleId"`
}

type UpdateLeadRequest struct {
	FirstName    *string    `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName     *string    `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email        *string    `json:"email" validate:"omitempty,email,max=254"`
	Phone        *string    `json:"phone" validate:"omitempty,min=5,max=40"`
	Notes        *string    `json:"notes" validate:"omitempty,max=5000"`
	Status       *string    `json:"status" validate:"omitempty,leadstatus"`
	NextFollowup *time.Time `json:"nextFollowup"`
}

type LogActivityRequest struct {
	Type string `json:"type" validate:"required,activitytype"`
	Body string `json:"body" validate:"omitempty,max=5000"`
}

type ListLeadsRequest struct {
	Search    string `form:"search" validate:"max=100"`
	Source    string `form:"source" validate:"omitempty,leadsource"`
	Status    string `form:"status" validate:"omitempty,leadstatus"`
	Since     string `form:"since" validate:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" validate:"min=1"`
	PageSize  int    `form:"pageSize" validate:"min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=score createdAt lastName status"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// Response DTOs

type VehicleResponse struct {
	ID          uuid.UUID `json:"id"`
	Make        string    `json:"make"`
	Model       string    `json:"model"`
	AskingPrice *float64  `json:"askingPrice,omitempty"`
}

type ScoreResponse struct {
	Breakdown scoring.Breakdown `json:"breakdown"`
	Label     scoring.Label     `json:"label"`
	Version   string            `json:"version"`
}

type LeadResponse struct {
	ID           uuid.UUID        `json:"id"`
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        *string          `json:"email,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	Message      *string          `json:"message,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
	Source       string           `json:"source"`
	SourceLabel  string           `json:"sourceLabel"`
	Status       string           `json:"status"`
	StatusLabel  string           `json:"statusLabel"`
	NextFollowup *time.Time       `json:"nextFollowup,omitempty"`
	Vehicle      *VehicleResponse `json:"vehicle,omitempty"`
	Score        ScoreResponse    `json:"score"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

type ActivityResponse struct {
	ID        uuid.UUID  `json:"id"`
	LeadID    uuid.UUID  `json:"leadId"`
	Type      string     `json:"type"`
	Body      *string    `json:"body,omitempty"`
	CreatedBy *uuid.UUID `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type LeadDetailResponse struct {
	LeadResponse
	Activities []ActivityResponse `json:"activities"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type ComponentsResponse struct {
	Components   []scoring.Component `json:"components"`
	MaxTotal     int                 `json:"maxTotal"`
	HotThreshold int                 `json:"hotThreshold"`
	Version      string              `json:"version"`
}

type RecalculateResponse struct {
	Status string `json:"status"`
}
