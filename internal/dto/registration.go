package dto

import (
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/repository"
)

// CreateRegistrationRequest represents the request to register for an event
type CreateRegistrationRequest struct {
	TicketTypeID   string  `json:"ticket_type_id" binding:"required"`
	IdempotencyKey *string `json:"idempotency_key"`
	EventID        string  `json:"-"` // Set from path
	UserID         string  `json:"-"` // Set from context
}

// Validate validates the CreateRegistrationRequest
func (r *CreateRegistrationRequest) Validate() (bool, string) {
	if r.TicketTypeID == "" {
		return false, "Ticket type is required"
	}
	if r.IdempotencyKey != nil && *r.IdempotencyKey == "" {
		return false, "Idempotency key cannot be empty"
	}
	return true, ""
}

// RegistrationResponse represents the response for a registration
type RegistrationResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	EventID      string     `json:"event_id"`
	TicketTypeID string     `json:"ticket_type_id"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

// NewRegistrationResponse converts a domain registration to its response form
func NewRegistrationResponse(r *domain.Registration) *RegistrationResponse {
	return &RegistrationResponse{
		ID:           r.ID,
		UserID:       r.UserID,
		EventID:      r.EventID,
		TicketTypeID: r.TicketTypeID,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt,
		CancelledAt:  r.CancelledAt,
	}
}

// RegistrationDetailResponse is a registration with event/ticket metadata,
// used for a participant's registration history
type RegistrationDetailResponse struct {
	*RegistrationResponse
	EventTitle     string    `json:"event_title"`
	EventStartTime time.Time `json:"event_start_time"`
	TicketTypeName string    `json:"ticket_type_name"`
}

// NewRegistrationDetailResponse converts a repository detail row
func NewRegistrationDetailResponse(d *repository.RegistrationDetail) *RegistrationDetailResponse {
	return &RegistrationDetailResponse{
		RegistrationResponse: NewRegistrationResponse(d.Registration),
		EventTitle:           d.EventTitle,
		EventStartTime:       d.EventStartTime,
		TicketTypeName:       d.TicketTypeName,
	}
}

// AttendeeResponse is a registration with participant identity, used for
// the organizer registration roll
type AttendeeResponse struct {
	*RegistrationResponse
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// NewAttendeeResponse converts a repository attendee row
func NewAttendeeResponse(a *repository.AttendeeRegistration) *AttendeeResponse {
	return &AttendeeResponse{
		RegistrationResponse: NewRegistrationResponse(a.Registration),
		Email:                a.Email,
		DisplayName:          a.DisplayName,
	}
}
