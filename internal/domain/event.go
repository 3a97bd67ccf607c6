package domain

import "time"

// Event statuses
const (
	EventStatusDraft     = "draft"
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
)

// Event represents an event that participants can register for
type Event struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   *string    `json:"description,omitempty"`
	VenueID       *string    `json:"venue_id,omitempty"`
	VenueName     *string    `json:"venue_name,omitempty"`
	VenueLocation *string    `json:"venue_location,omitempty"`
	OrganizerID   string     `json:"organizer_id"`
	StartTime     time.Time  `json:"start_time"`
	EndTime       time.Time  `json:"end_time"`
	Timezone      string     `json:"timezone"`
	Capacity      *int       `json:"capacity,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsOpenForRegistration reports whether new registrations are accepted.
// An event accepts registrations while active and not yet started.
func (e *Event) IsOpenForRegistration(now time.Time) bool {
	return e.Status == EventStatusActive && now.Before(e.StartTime)
}

// CanTransitionTo reports whether the event status may change to target
func (e *Event) CanTransitionTo(target string) bool {
	switch e.Status {
	case EventStatusDraft:
		return target == EventStatusActive || target == EventStatusCancelled
	case EventStatusActive:
		return target == EventStatusCancelled || target == EventStatusCompleted
	default:
		return false
	}
}

// IsValidEventStatus reports whether s is a known event status
func IsValidEventStatus(s string) bool {
	switch s {
	case EventStatusDraft, EventStatusActive, EventStatusCancelled, EventStatusCompleted:
		return true
	}
	return false
}
