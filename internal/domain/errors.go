package domain

import "errors"

// Domain errors
var (
	// Registration errors
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrDuplicateRegistration = errors.New("user already has an active registration for this ticket type")
	ErrIdempotencyConflict   = errors.New("idempotency key already used by a concurrent request")
	ErrAlreadyCancelled      = errors.New("registration already cancelled")
	ErrCapacityExceeded      = errors.New("ticket type capacity exceeded")
	ErrEventNotOpen          = errors.New("event is not open for registration")

	// Venue errors
	ErrVenueNotFound = errors.New("venue not found")
	ErrVenueInUse    = errors.New("venue is referenced by existing events")

	// Event errors
	ErrEventNotFound           = errors.New("event not found")
	ErrEventHasRegistrations   = errors.New("event has active registrations")
	ErrInvalidStatusTransition = errors.New("invalid event status transition")

	// Ticket type errors
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// Validation errors
	ErrInvalidUserID       = errors.New("invalid user id")
	ErrInvalidEventID      = errors.New("invalid event id")
	ErrInvalidVenueID      = errors.New("invalid venue id")
	ErrInvalidTicketTypeID = errors.New("invalid ticket type id")
	ErrInvalidCapacity     = errors.New("capacity must be greater than zero")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidPrice        = errors.New("price does not match ticket kind")

	// Infrastructure errors
	ErrStoreUnavailable = errors.New("store temporarily unavailable")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrRegistrationNotFound) ||
		errors.Is(err, ErrVenueNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrTicketTypeNotFound)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidVenueID) ||
		errors.Is(err, ErrInvalidTicketTypeID) ||
		errors.Is(err, ErrInvalidCapacity) ||
		errors.Is(err, ErrInvalidTimeRange) ||
		errors.Is(err, ErrInvalidPrice)
}

// IsConflictError checks if the error is a conflict error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateRegistration) ||
		errors.Is(err, ErrIdempotencyConflict) ||
		errors.Is(err, ErrAlreadyCancelled) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrEventNotOpen) ||
		errors.Is(err, ErrVenueInUse) ||
		errors.Is(err, ErrEventHasRegistrations) ||
		errors.Is(err, ErrInvalidStatusTransition)
}
