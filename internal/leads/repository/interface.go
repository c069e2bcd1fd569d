package repository

import (
	"context"
	"time"

	"dealer_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Vehicle is the read-only slice of inventory data a lead can reference.
type Vehicle struct {
	ID          uuid.UUID
	Make        string
	Model       string
	AskingPrice *float64
}

// Lead is a persisted sales lead with its joined vehicle and last stored score.
type Lead struct {
	ID             uuid.UUID
	DealerID       uuid.UUID
	VehicleID      *uuid.UUID
	Vehicle        *Vehicle
	FirstName      string
	LastName       string
	Email          *string
	Phone          *string
	Message        *string
	Notes          *string
	Source         domain.Source
	Status         domain.Status
	NextFollowup   *time.Time
	Score          *int
	ScoreBreakdown []byte
	ScoreUpdatedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AskingPrice returns the linked vehicle's price, or nil without a vehicle.
func (l Lead) AskingPrice() *float64 {
	if l.Vehicle == nil {
		return nil
	}
	return l.Vehicle.AskingPrice
}

// Activity is an append-only interaction logged against a lead.
type Activity struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	DealerID  uuid.UUID
	Type      domain.ActivityType
	Body      *string
	CreatedBy *uuid.UUID
	CreatedAt time.Time
}

// CreateParams contains parameters for creating a lead.
type CreateParams struct {
	DealerID  uuid.UUID
	VehicleID *uuid.UUID
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Message   *string
	Notes     *string
	Source    domain.Source
}

// UpdateParams contains a partial lead update. Nil fields are left untouched.
type UpdateParams struct {
	ID           uuid.UUID
	DealerID     uuid.UUID
	FirstName    *string
	LastName     *string
	Email        *string
	Phone        *string
	Notes        *string
	Status       *domain.Status
	NextFollowup *time.Time
}

// ListParams filters and pages a dealer's leads.
type ListParams struct {
	DealerID     uuid.UUID
	Search       string
	Source       *domain.Source
	Status       *domain.Status
	CreatedSince *time.Time
	SortBy       string
	SortOrder    string
	Offset       int
	Limit        int
}

// CreateActivityParams contains parameters for logging an activity.
type CreateActivityParams struct {
	LeadID    uuid.UUID
	DealerID  uuid.UUID
	Type      domain.ActivityType
	Body      *string
	CreatedBy *uuid.UUID
}

// ScoreSnapshot is a computed score persisted on the lead row.
type ScoreSnapshot struct {
	Total      int
	Breakdown  []byte
	Version    string
	ComputedAt time.Time
}

// =====================================
// Segregated Interfaces
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id, dealerID uuid.UUID) (Lead, error)
	List(ctx context.Context, params ListParams) ([]Lead, int, error)
	VehicleExists(ctx context.Context, id, dealerID uuid.UUID) (bool, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateParams) (Lead, error)
	Update(ctx context.Context, params UpdateParams) (Lead, error)
}

// ActivityStore reads and appends lead activities.
type ActivityStore interface {
	ListActivities(ctx context.Context, leadID, dealerID uuid.UUID) ([]Activity, error)
	ListActivitiesForLeads(ctx context.Context, leadIDs []uuid.UUID, dealerID uuid.UUID) (map[uuid.UUID][]Activity, error)
	CreateActivity(ctx context.Context, params CreateActivityParams) (Activity, error)
}

// ScoreStore persists score snapshots and enumerates work for batch refreshes.
type ScoreStore interface {
	// SaveScore stores the snapshot and returns the total it replaced (nil if never scored).
	SaveScore(ctx context.Context, leadID, dealerID uuid.UUID, snapshot ScoreSnapshot) (*int, error)
	ListOpenLeadIDs(ctx context.Context, dealerID uuid.UUID) ([]uuid.UUID, error)
	ListDealerIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Repository combines all lead repository operations.
type Repository interface {
	LeadReader
	LeadWriter
	ActivityStore
	ScoreStore
}
