package repository

import (
	"context"
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

// VenueRepository defines the interface for venue data access
type VenueRepository interface {
	// Create creates a new venue
	Create(ctx context.Context, venue *domain.Venue) error
	// GetByID retrieves a venue by ID
	GetByID(ctx context.Context, id string) (*domain.Venue, error)
	// List lists venues with pagination
	List(ctx context.Context, limit, offset int) ([]*domain.Venue, int, error)
	// Update updates a venue
	Update(ctx context.Context, venue *domain.Venue) error
	// Delete deletes a venue by ID
	Delete(ctx context.Context, id string) error
	// EventCount returns the number of events referencing the venue
	EventCount(ctx context.Context, venueID string) (int, error)
}

// EventFilter contains filter options for listing events
type EventFilter struct {
	Status      string
	OrganizerID string
	Search      string
}

// EventReader is the read-only slice of event access used by the
// display paths, where a cached implementation may serve stale data
type EventReader interface {
	// GetByID retrieves an event by ID
	GetByID(ctx context.Context, id string) (*domain.Event, error)
	// List lists events with filters and pagination
	List(ctx context.Context, filter *EventFilter, limit, offset int) ([]*domain.Event, int, error)
}

// EventRepository defines the interface for event data access
type EventRepository interface {
	EventReader
	// Create creates a new event
	Create(ctx context.Context, event *domain.Event) error
	// Update updates an event
	Update(ctx context.Context, event *domain.Event) error
	// TransitionStatus atomically moves an event from one status to another.
	// Returns false when the event is missing or not in the expected status.
	TransitionStatus(ctx context.Context, id, from, to string) (bool, error)
	// Delete deletes an event by ID (ticket types cascade)
	Delete(ctx context.Context, id string) error
}

// CapacityDrift describes a ticket type whose sold count disagrees with
// its confirmed registration count
type CapacityDrift struct {
	TicketTypeID   string
	SoldCount      int
	ConfirmedCount int
}

// TicketTypeRepository defines the interface for ticket type data access
type TicketTypeRepository interface {
	// Create creates a new ticket type
	Create(ctx context.Context, ticketType *domain.TicketType) error
	// GetByID retrieves a ticket type by ID
	GetByID(ctx context.Context, id string) (*domain.TicketType, error)
	// GetByEventID retrieves ticket types by event ID
	GetByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	// Update updates a ticket type (sold_count excluded, the ledger owns it)
	Update(ctx context.Context, ticketType *domain.TicketType) error
	// Delete deletes a ticket type by ID
	Delete(ctx context.Context, id string) error
	// ListDrifted returns ticket types whose sold_count differs from the
	// number of confirmed registrations
	ListDrifted(ctx context.Context, limit int) ([]*CapacityDrift, error)
	// RepairSoldCount sets sold_count to actual only if it still equals
	// expected. Returns false if the row changed concurrently.
	RepairSoldCount(ctx context.Context, id string, expected, actual int) (bool, error)
}

// RegistrationDetail is a registration joined with event and ticket metadata
type RegistrationDetail struct {
	Registration   *domain.Registration
	EventTitle     string
	EventStartTime time.Time
	TicketTypeName string
}

// AttendeeRegistration is a registration joined with the participant profile
type AttendeeRegistration struct {
	Registration *domain.Registration
	Email        string
	DisplayName  string
}

// RegistrationRepository defines the interface for registration data access
type RegistrationRepository interface {
	// Create persists a new registration. A violation of the active-uniqueness
	// constraint is returned as domain.ErrDuplicateRegistration.
	Create(ctx context.Context, reg *domain.Registration) error
	// GetByID retrieves a registration by ID
	GetByID(ctx context.Context, id string) (*domain.Registration, error)
	// GetByIdempotencyKey retrieves a user's registration by idempotency key
	GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Registration, error)
	// CancelIfStatus cancels a registration only if owned by userID and
	// currently in fromStatus, stamping cancelled_at with cancelledAt.
	// Returns true when the row was updated.
	CancelIfStatus(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error)
	// PromoteOldestWaitlisted confirms the oldest waitlisted registration for
	// the ticket type. Returns nil when no waitlisted registration exists.
	PromoteOldestWaitlisted(ctx context.Context, ticketTypeID string) (*domain.Registration, error)
	// ListByUser lists a user's registrations with event/ticket metadata
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*RegistrationDetail, int, error)
	// ListByEvent lists an event's registrations with participant profiles
	ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*AttendeeRegistration, int, error)
	// CountActiveByEvent counts confirmed and waitlisted registrations
	CountActiveByEvent(ctx context.Context, eventID string) (int, error)
}
