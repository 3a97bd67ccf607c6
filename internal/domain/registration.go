package domain

import "time"

// Registration statuses
const (
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusCancelled = "cancelled"
	RegistrationStatusWaitlist  = "waitlist"
)

// Registration represents a participant's registration for a ticket type.
// A user may hold at most one active (confirmed or waitlist) registration
// per ticket type; the store enforces this with a partial unique constraint.
type Registration struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	EventID        string     `json:"event_id"`
	TicketTypeID   string     `json:"ticket_type_id"`
	Status         string     `json:"status"`
	IdempotencyKey *string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
}

// IsActive reports whether the registration holds or awaits a capacity unit
func (r *Registration) IsActive() bool {
	return r.Status == RegistrationStatusConfirmed || r.Status == RegistrationStatusWaitlist
}

// RegistrationEventType identifies a registration lifecycle event
type RegistrationEventType string

// Registration lifecycle events published to Kafka
const (
	RegistrationEventConfirmed  RegistrationEventType = "registration.confirmed"
	RegistrationEventWaitlisted RegistrationEventType = "registration.waitlist"
	RegistrationEventCancelled  RegistrationEventType = "registration.cancelled"
	RegistrationEventPromoted   RegistrationEventType = "registration.promoted"
)

// RegistrationEvent is the payload published for lifecycle transitions
type RegistrationEvent struct {
	EventID        string                `json:"event_id"`
	Type           RegistrationEventType `json:"type"`
	RegistrationID string                `json:"registration_id"`
	UserID         string                `json:"user_id"`
	TicketTypeID   string                `json:"ticket_type_id"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// NewRegistrationEvent builds a lifecycle event for a registration
func NewRegistrationEvent(eventType RegistrationEventType, reg *Registration, eventID string) *RegistrationEvent {
	return &RegistrationEvent{
		EventID:        eventID,
		Type:           eventType,
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		TicketTypeID:   reg.TicketTypeID,
		OccurredAt:     time.Now().UTC(),
	}
}

// Key returns the partition key for the event (per ticket type, so lifecycle
// events for one pool stay ordered)
func (e *RegistrationEvent) Key() string {
	return e.TicketTypeID
}
