package domain

import "time"

// Venue represents a physical venue where events take place
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    *string   `json:"location,omitempty"`
	Description *string   `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
