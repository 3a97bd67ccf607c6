package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// EventService defines the interface for event business logic
type EventService interface {
	// CreateEvent creates a new event in draft status
	CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)

	// GetEvent retrieves an event by ID
	GetEvent(ctx context.Context, id string) (*dto.EventResponse, error)

	// ListEvents lists events with filters and pagination
	ListEvents(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*dto.EventResponse, int, error)

	// UpdateEvent updates an event's details
	UpdateEvent(ctx context.Context, id, organizerID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error)

	// PublishEvent moves a draft event to active, opening it for registration
	PublishEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error)

	// CancelEvent cancels a draft or active event
	CancelEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error)

	// CompleteEvent marks an active event as completed
	CompleteEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error)

	// DeleteEvent deletes an event with no active registrations
	DeleteEvent(ctx context.Context, id, organizerID string) error
}

// eventService implements EventService
type eventService struct {
	eventRepo        repository.EventRepository
	venueRepo        repository.VenueRepository
	registrationRepo repository.RegistrationRepository
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo repository.EventRepository,
	venueRepo repository.VenueRepository,
	registrationRepo repository.RegistrationRepository,
) EventService {
	return &eventService{
		eventRepo:        eventRepo,
		venueRepo:        venueRepo,
		registrationRepo: registrationRepo,
	}
}

// CreateEvent creates a new event in draft status
func (s *eventService) CreateEvent(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.create")
	defer span.End()

	if req.OrganizerID == "" {
		return nil, domain.ErrInvalidUserID
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	event := &domain.Event{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		OrganizerID: req.OrganizerID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Timezone:    timezone,
		Capacity:    req.Capacity,
		Status:      domain.EventStatusDraft,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	// Venue name and location are denormalized onto the event so display
	// reads never fan out to the venues table
	if req.VenueID != nil {
		if err := s.attachVenue(ctx, event, *req.VenueID); err != nil {
			return nil, err
		}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("event_id", event.ID))
	return dto.NewEventResponse(event), nil
}

// GetEvent retrieves an event by ID
func (s *eventService) GetEvent(ctx context.Context, id string) (*dto.EventResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	return dto.NewEventResponse(event), nil
}

// ListEvents lists events with filters and pagination
func (s *eventService) ListEvents(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*dto.EventResponse, int, error) {
	events, total, err := s.eventRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.EventResponse, 0, len(events))
	for _, e := range events {
		responses = append(responses, dto.NewEventResponse(e))
	}
	return responses, total, nil
}

// UpdateEvent updates an event's details
func (s *eventService) UpdateEvent(ctx context.Context, id, organizerID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.event.update")
	defer span.End()

	event, err := s.getOwnedEvent(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if req.Timezone != nil {
		event.Timezone = *req.Timezone
	}
	if req.Capacity != nil {
		event.Capacity = req.Capacity
	}
	if !event.EndTime.After(event.StartTime) {
		return nil, domain.ErrInvalidTimeRange
	}
	if req.VenueID != nil {
		if err := s.attachVenue(ctx, event, *req.VenueID); err != nil {
			return nil, err
		}
	}
	event.UpdatedAt = time.Now().UTC()

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return dto.NewEventResponse(event), nil
}

// PublishEvent moves a draft event to active, opening it for registration
func (s *eventService) PublishEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.publish", id, organizerID, domain.EventStatusActive)
}

// CancelEvent cancels a draft or active event
func (s *eventService) CancelEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.cancel", id, organizerID, domain.EventStatusCancelled)
}

// CompleteEvent marks an active event as completed
func (s *eventService) CompleteEvent(ctx context.Context, id, organizerID string) (*dto.EventResponse, error) {
	return s.transition(ctx, "service.event.complete", id, organizerID, domain.EventStatusCompleted)
}

// DeleteEvent deletes an event with no active registrations
func (s *eventService) DeleteEvent(ctx context.Context, id, organizerID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.event.delete")
	defer span.End()

	if _, err := s.getOwnedEvent(ctx, id, organizerID); err != nil {
		return err
	}

	count, err := s.registrationRepo.CountActiveByEvent(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrEventHasRegistrations
	}

	return s.eventRepo.Delete(ctx, id)
}

// transition applies a status transition guarded by a compare-and-set on the
// current status, so two concurrent transitions cannot both win
func (s *eventService) transition(ctx context.Context, spanName, id, organizerID, target string) (*dto.EventResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, spanName)
	defer span.End()

	event, err := s.getOwnedEvent(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}
	if !event.CanTransitionTo(target) {
		return nil, domain.ErrInvalidStatusTransition
	}

	ok, err := s.eventRepo.TransitionStatus(ctx, id, event.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to a concurrent transition
		return nil, domain.ErrInvalidStatusTransition
	}

	event.Status = target
	span.SetAttributes(
		attribute.String("event_id", id),
		attribute.String("status", target),
	)
	return dto.NewEventResponse(event), nil
}

// getOwnedEvent loads an event and verifies the caller organizes it.
// Ownership failures are reported as not found so event IDs don't leak.
func (s *eventService) getOwnedEvent(ctx context.Context, id, organizerID string) (*domain.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil || event.OrganizerID != organizerID {
		return nil, domain.ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) attachVenue(ctx context.Context, event *domain.Event, venueID string) error {
	if venueID == "" {
		event.VenueID = nil
		event.VenueName = nil
		event.VenueLocation = nil
		return nil
	}

	venue, err := s.venueRepo.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if venue == nil {
		return domain.ErrVenueNotFound
	}

	event.VenueID = &venue.ID
	event.VenueName = &venue.Name
	event.VenueLocation = venue.Location
	return nil
}
