package domain

import "time"

// Ticket kinds
const (
	TicketKindFree     = "free"
	TicketKindPaid     = "paid"
	TicketKindDonation = "donation"
)

// TicketType represents a capacity-bounded pool of tickets for an event.
// SoldCount is owned by the capacity ledger; no other component writes it.
type TicketType struct {
	ID              string    `json:"id"`
	EventID         string    `json:"event_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	Kind            string    `json:"kind"`
	Price           *float64  `json:"price,omitempty"`
	Capacity        *int      `json:"capacity,omitempty"` // nil = unlimited
	SoldCount       int       `json:"sold_count"`
	WaitlistEnabled bool      `json:"waitlist_enabled"`
	CreatedAt       time.Time `json:"created_at"`
}

// Remaining returns the number of units still available, or nil when unlimited
func (t *TicketType) Remaining() *int {
	if t.Capacity == nil {
		return nil
	}
	remaining := *t.Capacity - t.SoldCount
	if remaining < 0 {
		remaining = 0
	}
	return &remaining
}

// IsValidTicketKind reports whether k is a known ticket kind
func IsValidTicketKind(k string) bool {
	switch k {
	case TicketKindFree, TicketKindPaid, TicketKindDonation:
		return true
	}
	return false
}

// ValidatePricing checks price/kind coherence: free tickets carry no price,
// paid tickets require a positive price, donation tickets may omit it.
func (t *TicketType) ValidatePricing() error {
	switch t.Kind {
	case TicketKindFree:
		if t.Price != nil && *t.Price != 0 {
			return ErrInvalidPrice
		}
	case TicketKindPaid:
		if t.Price == nil || *t.Price <= 0 {
			return ErrInvalidPrice
		}
	case TicketKindDonation:
		if t.Price != nil && *t.Price < 0 {
			return ErrInvalidPrice
		}
	default:
		return ErrInvalidPrice
	}
	return nil
}
