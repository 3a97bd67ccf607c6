package dto

import (
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

// CreateEventRequest represents the request to create a new event
type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=1,max=255"`
	Description *string   `json:"description"`
	VenueID     *string   `json:"venue_id"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Timezone    string    `json:"timezone"`
	Capacity    *int      `json:"capacity"`
	OrganizerID string    `json:"-"` // Set from context
}

// Validate validates the CreateEventRequest
func (r *CreateEventRequest) Validate() (bool, string) {
	if r.Title == "" {
		return false, "Event title is required"
	}
	if !r.EndTime.After(r.StartTime) {
		return false, "End time must be after start time"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Event capacity must be greater than zero"
	}
	if r.Timezone != "" {
		if _, err := time.LoadLocation(r.Timezone); err != nil {
			return false, "Unknown timezone"
		}
	}
	return true, ""
}

// UpdateEventRequest represents the request to update an event
type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	VenueID     *string    `json:"venue_id"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Timezone    *string    `json:"timezone"`
	Capacity    *int       `json:"capacity"`
}

// Validate validates the UpdateEventRequest
func (r *UpdateEventRequest) Validate() (bool, string) {
	if r.Title != nil && *r.Title == "" {
		return false, "Event title cannot be empty"
	}
	if r.StartTime != nil && r.EndTime != nil && !r.EndTime.After(*r.StartTime) {
		return false, "End time must be after start time"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Event capacity must be greater than zero"
	}
	if r.Timezone != nil {
		if _, err := time.LoadLocation(*r.Timezone); err != nil {
			return false, "Unknown timezone"
		}
	}
	return true, ""
}

// EventResponse represents the response for an event
type EventResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description,omitempty"`
	VenueID       *string   `json:"venue_id,omitempty"`
	VenueName     *string   `json:"venue_name,omitempty"`
	VenueLocation *string   `json:"venue_location,omitempty"`
	OrganizerID   string    `json:"organizer_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Timezone      string    `json:"timezone"`
	Capacity      *int      `json:"capacity,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewEventResponse converts a domain event to its response form
func NewEventResponse(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		VenueID:       e.VenueID,
		VenueName:     e.VenueName,
		VenueLocation: e.VenueLocation,
		OrganizerID:   e.OrganizerID,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		Timezone:      e.Timezone,
		Capacity:      e.Capacity,
		Status:        e.Status,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// EventAvailabilityResponse is an event with per-ticket-type availability
type EventAvailabilityResponse struct {
	Event       *EventResponse        `json:"event"`
	TicketTypes []*TicketTypeResponse `json:"ticket_types"`
}
