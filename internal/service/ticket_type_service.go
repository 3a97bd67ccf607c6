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

// TicketTypeService defines the interface for ticket type business logic
type TicketTypeService interface {
	// CreateTicketType creates a new ticket type under an event
	CreateTicketType(ctx context.Context, eventID, organizerID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error)

	// GetTicketType retrieves a ticket type by ID
	GetTicketType(ctx context.Context, id string) (*dto.TicketTypeResponse, error)

	// ListTicketTypes lists an event's ticket types
	ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error)

	// UpdateTicketType updates a ticket type
	UpdateTicketType(ctx context.Context, id, organizerID string, req *dto.UpdateTicketTypeRequest) (*dto.TicketTypeResponse, error)

	// DeleteTicketType deletes a ticket type with no sold units
	DeleteTicketType(ctx context.Context, id, organizerID string) error
}

// ticketTypeService implements TicketTypeService
type ticketTypeService struct {
	ticketTypeRepo repository.TicketTypeRepository
	eventRepo      repository.EventRepository
}

// NewTicketTypeService creates a new ticket type service
func NewTicketTypeService(
	ticketTypeRepo repository.TicketTypeRepository,
	eventRepo repository.EventRepository,
) TicketTypeService {
	return &ticketTypeService{
		ticketTypeRepo: ticketTypeRepo,
		eventRepo:      eventRepo,
	}
}

// CreateTicketType creates a new ticket type under an event
func (s *ticketTypeService) CreateTicketType(ctx context.Context, eventID, organizerID string, req *dto.CreateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.create")
	defer span.End()

	if err := s.checkOwnership(ctx, eventID, organizerID); err != nil {
		return nil, err
	}

	ticketType := &domain.TicketType{
		ID:              uuid.New().String(),
		EventID:         eventID,
		Name:            req.Name,
		Description:     req.Description,
		Kind:            req.Kind,
		Price:           req.Price,
		Capacity:        req.Capacity,
		SoldCount:       0,
		WaitlistEnabled: req.WaitlistEnabled,
		CreatedAt:       time.Now().UTC(),
	}
	if err := ticketType.ValidatePricing(); err != nil {
		return nil, err
	}

	if err := s.ticketTypeRepo.Create(ctx, ticketType); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("ticket_type_id", ticketType.ID),
	)
	return dto.NewTicketTypeResponse(ticketType), nil
}

// GetTicketType retrieves a ticket type by ID
func (s *ticketTypeService) GetTicketType(ctx context.Context, id string) (*dto.TicketTypeResponse, error) {
	ticketType, err := s.ticketTypeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticketType == nil {
		return nil, domain.ErrTicketTypeNotFound
	}
	return dto.NewTicketTypeResponse(ticketType), nil
}

// ListTicketTypes lists an event's ticket types
func (s *ticketTypeService) ListTicketTypes(ctx context.Context, eventID string) ([]*dto.TicketTypeResponse, error) {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}

	ticketTypes, err := s.ticketTypeRepo.GetByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TicketTypeResponse, 0, len(ticketTypes))
	for _, tt := range ticketTypes {
		responses = append(responses, dto.NewTicketTypeResponse(tt))
	}
	return responses, nil
}

// UpdateTicketType updates a ticket type
func (s *ticketTypeService) UpdateTicketType(ctx context.Context, id, organizerID string, req *dto.UpdateTicketTypeRequest) (*dto.TicketTypeResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.update")
	defer span.End()

	ticketType, err := s.getOwnedTicketType(ctx, id, organizerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		ticketType.Name = *req.Name
	}
	if req.Description != nil {
		ticketType.Description = req.Description
	}
	if req.Kind != nil {
		ticketType.Kind = *req.Kind
	}
	if req.Price != nil {
		ticketType.Price = req.Price
	}
	if req.Capacity != nil {
		// Capacity may not shrink below what is already sold
		if *req.Capacity < ticketType.SoldCount {
			return nil, domain.ErrInvalidCapacity
		}
		ticketType.Capacity = req.Capacity
	}
	if req.WaitlistEnabled != nil {
		ticketType.WaitlistEnabled = *req.WaitlistEnabled
	}
	if err := ticketType.ValidatePricing(); err != nil {
		return nil, err
	}

	if err := s.ticketTypeRepo.Update(ctx, ticketType); err != nil {
		return nil, err
	}
	return dto.NewTicketTypeResponse(ticketType), nil
}

// DeleteTicketType deletes a ticket type with no sold units
func (s *ticketTypeService) DeleteTicketType(ctx context.Context, id, organizerID string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.ticket_type.delete")
	defer span.End()

	ticketType, err := s.getOwnedTicketType(ctx, id, organizerID)
	if err != nil {
		return err
	}
	if ticketType.SoldCount > 0 {
		return domain.ErrEventHasRegistrations
	}

	return s.ticketTypeRepo.Delete(ctx, id)
}

// getOwnedTicketType loads a ticket type and verifies the caller organizes
// its event. Ownership failures are reported as not found.
func (s *ticketTypeService) getOwnedTicketType(ctx context.Context, id, organizerID string) (*domain.TicketType, error) {
	ticketType, err := s.ticketTypeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticketType == nil {
		return nil, domain.ErrTicketTypeNotFound
	}
	if err := s.checkOwnership(ctx, ticketType.EventID, organizerID); err != nil {
		return nil, err
	}
	return ticketType, nil
}

func (s *ticketTypeService) checkOwnership(ctx context.Context, eventID, organizerID string) error {
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event == nil || event.OrganizerID != organizerID {
		return domain.ErrEventNotFound
	}
	return nil
}
