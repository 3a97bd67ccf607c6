package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/pkg/redis"
	"github.com/prohmpiriya/event-registration/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const availabilityKeyPrefix = "availability:event:"

// QueryService defines the read-side interface for public listings,
// availability, and registration history
type QueryService interface {
	// ListOpenEvents lists active events for public browsing
	ListOpenEvents(ctx context.Context, limit, offset int) ([]*dto.EventResponse, int, error)

	// GetEventAvailability returns an event with per-ticket-type remaining
	// capacity. Draft events are not visible.
	GetEventAvailability(ctx context.Context, eventID string) (*dto.EventAvailabilityResponse, error)

	// GetUserRegistrations lists a user's registrations with event metadata
	GetUserRegistrations(ctx context.Context, userID string, limit, offset int) ([]*dto.RegistrationDetailResponse, int, error)

	// ListEventAttendees lists an event's registrations for its organizer
	ListEventAttendees(ctx context.Context, eventID, organizerID string, limit, offset int) ([]*dto.AttendeeResponse, int, error)
}

// queryService implements QueryService
type queryService struct {
	eventRepo        repository.EventReader
	ticketTypeRepo   repository.TicketTypeRepository
	registrationRepo repository.RegistrationRepository
	cache            *redis.Client
	cacheTTL         time.Duration
}

// NewQueryService creates a new query service. Event reads may be served
// by a cached EventReader and the availability projection is cached
// briefly; remaining counts shown to browsers may lag the ledger by up
// to the TTL, registration itself never reads them.
func NewQueryService(
	eventRepo repository.EventReader,
	ticketTypeRepo repository.TicketTypeRepository,
	registrationRepo repository.RegistrationRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
) QueryService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Second
	}
	return &queryService{
		eventRepo:        eventRepo,
		ticketTypeRepo:   ticketTypeRepo,
		registrationRepo: registrationRepo,
		cache:            cache,
		cacheTTL:         cacheTTL,
	}
}

// ListOpenEvents lists active events for public browsing
func (s *queryService) ListOpenEvents(ctx context.Context, limit, offset int) ([]*dto.EventResponse, int, error) {
	filter := &repository.EventFilter{Status: domain.EventStatusActive}
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

// GetEventAvailability returns an event with per-ticket-type remaining capacity
func (s *queryService) GetEventAvailability(ctx context.Context, eventID string) (*dto.EventAvailabilityResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.query.event_availability")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	cacheKey := availabilityKeyPrefix + eventID
	if s.cache != nil {
		cached, err := s.cache.GetString(ctx, cacheKey)
		if err == nil && cached != "" {
			var resp dto.EventAvailabilityResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return &resp, nil
			}
		}
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil || event.Status == domain.EventStatusDraft {
		return nil, domain.ErrEventNotFound
	}

	ticketTypes, err := s.ticketTypeRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	ttResponses := make([]*dto.TicketTypeResponse, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		ttResponses = append(ttResponses, dto.NewTicketTypeResponse(tt))
	}

	resp := &dto.EventAvailabilityResponse{
		Event:       dto.NewEventResponse(event),
		TicketTypes: ttResponses,
	}

	if s.cache != nil {
		if data, err := json.Marshal(resp); err == nil {
			_ = s.cache.SetString(ctx, cacheKey, string(data), s.cacheTTL)
		}
	}

	return resp, nil
}

// GetUserRegistrations lists a user's registrations with event metadata
func (s *queryService) GetUserRegistrations(ctx context.Context, userID string, limit, offset int) ([]*dto.RegistrationDetailResponse, int, error) {
	if userID == "" {
		return nil, 0, domain.ErrInvalidUserID
	}

	details, total, err := s.registrationRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.RegistrationDetailResponse, 0, len(details))
	for _, d := range details {
		responses = append(responses, dto.NewRegistrationDetailResponse(d))
	}
	return responses, total, nil
}

// ListEventAttendees lists an event's registrations for its organizer
func (s *queryService) ListEventAttendees(ctx context.Context, eventID, organizerID string, limit, offset int) ([]*dto.AttendeeResponse, int, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, 0, err
	}
	if event == nil || event.OrganizerID != organizerID {
		return nil, 0, domain.ErrEventNotFound
	}

	attendees, total, err := s.registrationRepo.ListByEvent(ctx, eventID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.AttendeeResponse, 0, len(attendees))
	for _, a := range attendees {
		responses = append(responses, dto.NewAttendeeResponse(a))
	}
	return responses, total, nil
}
