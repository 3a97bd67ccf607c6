package domain

import "time"

// User roles
const (
	RoleOrganizer   = "organizer"
	RoleParticipant = "participant"
)

// Profile is a read-only projection of a user identity.
// Profiles are written by the identity provider, never by this service.
type Profile struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
