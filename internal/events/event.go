// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"dealer_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadCreated is published when a new lead is captured.
type LeadCreated struct {
	BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	DealerID uuid.UUID `json:"dealerId"`
	Source   string    `json:"source"`
	Name     string    `json:"name"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadActivityLogged is published after an activity is appended to a lead.
type LeadActivityLogged struct {
	BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	DealerID     uuid.UUID `json:"dealerId"`
	ActivityID   uuid.UUID `json:"activityId"`
	ActivityType string    `json:"activityType"`
}

func (e LeadActivityLogged) EventName() string { return "leads.activity.logged" }

// LeadStatusChanged is published when a lead moves through the sales funnel.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	DealerID  uuid.UUID `json:"dealerId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadBecameHot is published once each time a stored score crosses into the top band.
type LeadBecameHot struct {
	BaseEvent
	LeadID        uuid.UUID  `json:"leadId"`
	DealerID      uuid.UUID  `json:"dealerId"`
	Name          string     `json:"name"`
	Source        string     `json:"source"`
	Vehicle       string     `json:"vehicle,omitempty"`
	PreviousScore *int       `json:"previousScore,omitempty"`
	Score         int        `json:"score"`
	ScoredAt      time.Time  `json:"scoredAt"`
	VehicleID     *uuid.UUID `json:"vehicleId,omitempty"`
}

func (e LeadBecameHot) EventName() string { return "leads.score.became_hot" }
