package dto

import (
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
)

// CreateVenueRequest represents the request to create a new venue
type CreateVenueRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=255"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Capacity    int     `json:"capacity" binding:"required"`
}

// Validate validates the CreateVenueRequest
func (r *CreateVenueRequest) Validate() (bool, string) {
	if r.Name == "" {
		return false, "Venue name is required"
	}
	if r.Capacity <= 0 {
		return false, "Venue capacity must be greater than zero"
	}
	return true, ""
}

// UpdateVenueRequest represents the request to update a venue
type UpdateVenueRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=255"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	Capacity    *int    `json:"capacity"`
}

// Validate validates the UpdateVenueRequest
func (r *UpdateVenueRequest) Validate() (bool, string) {
	if r.Name != nil && *r.Name == "" {
		return false, "Venue name cannot be empty"
	}
	if r.Capacity != nil && *r.Capacity <= 0 {
		return false, "Venue capacity must be greater than zero"
	}
	return true, ""
}

// VenueResponse represents the response for a venue
type VenueResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewVenueResponse converts a domain venue to its response form
func NewVenueResponse(v *domain.Venue) *VenueResponse {
	return &VenueResponse{
		ID:          v.ID,
		Name:        v.Name,
		Location:    v.Location,
		Description: v.Description,
		Capacity:    v.Capacity,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
