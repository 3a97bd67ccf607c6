package dto

import (
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

// CreateTicketTypeRequest represents the request to create a ticket type
type CreateTicketTypeRequest struct {
	Name            string   `json:"name" binding:"required,min=1,max=255"`
	Description     *string  `json:"description"`
	Kind            string   `json:"kind" binding:"required"`
	Price           *float64 `json:"price"`
	Capacity        *int     `json:"capacity"`
	WaitlistEnabled bool     `json:"waitlist_enabled"`
}

// Validate validates the CreateTicketTypeRequest
func (r *CreateTicketTypeRequest) Validate() (bool, string) {
	if r.Name == "" {
		return false, "Ticket type name is required"
	}
	if !domain.IsValidTicketKind(r.Kind) {
		return false, "Ticket kind must be free, paid, or donation"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Ticket type capacity must be greater than zero"
	}
	tt := domain.TicketType{Kind: r.Kind, Price: r.Price}
	if err := tt.ValidatePricing(); err != nil {
		return false, "Price does not match ticket kind"
	}
	return true, ""
}

// UpdateTicketTypeRequest represents the request to update a ticket type
type UpdateTicketTypeRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=255"`
	Description     *string  `json:"description"`
	Kind            *string  `json:"kind"`
	Price           *float64 `json:"price"`
	Capacity        *int     `json:"capacity"`
	WaitlistEnabled *bool    `json:"waitlist_enabled"`
}

// Validate validates the UpdateTicketTypeRequest
func (r *UpdateTicketTypeRequest) Validate() (bool, string) {
	if r.Name != nil && *r.Name == "" {
		return false, "Ticket type name cannot be empty"
	}
	if r.Kind != nil && !domain.IsValidTicketKind(*r.Kind) {
		return false, "Ticket kind must be free, paid, or donation"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Ticket type capacity must be greater than zero"
	}
	return true, ""
}

// TicketTypeResponse represents the response for a ticket type
type TicketTypeResponse struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Kind            string    `json:"kind"`
	Price           *float64  `json:"price,omitempty"`
	Capacity        *int      `json:"capacity,omitempty"`
	SoldCount       int       `json:"sold_count"`
	Remaining       *int      `json:"remaining,omitempty"` // nil = unlimited
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewTicketTypeResponse converts a domain ticket type to its response form
func NewTicketTypeResponse(t *domain.TicketType) *TicketTypeResponse {
	return &TicketTypeResponse{
		ID:              t.ID,
		EventID:         t.EventID,
		Name:            t.Name,
		Description:     t.Description,
		Kind:            t.Kind,
		Price:           t.Price,
		Capacity:        t.Capacity,
		SoldCount:       t.SoldCount,
		Remaining:       t.Remaining(),
		WaitlistEnabled: t.WaitlistEnabled,
		CreatedAt:       t.CreatedAt,
	}
}
