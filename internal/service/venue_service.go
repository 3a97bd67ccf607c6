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

// VenueService defines the interface for venue business logic
type VenueService interface {
	// CreateVenue creates a new venue
	CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error)

	// GetVenue retrieves a venue by ID
	GetVenue(ctx context.Context, id string) (*dto.VenueResponse, error)

	// ListVenues lists venues with pagination
	ListVenues(ctx context.Context, limit, offset int) ([]*dto.VenueResponse, int, error)

	// UpdateVenue updates a venue
	UpdateVenue(ctx context.Context, id string, req *dto.UpdateVenueRequest) (*dto.VenueResponse, error)

	// DeleteVenue deletes a venue that no event references
	DeleteVenue(ctx context.Context, id string) error
}

// venueService implements VenueService
type venueService struct {
	venueRepo repository.VenueRepository
}

// NewVenueService creates a new venue service
func NewVenueService(venueRepo repository.VenueRepository) VenueService {
	return &venueService{venueRepo: venueRepo}
}

// CreateVenue creates a new venue
func (s *venueService) CreateVenue(ctx context.Context, req *dto.CreateVenueRequest) (*dto.VenueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.create")
	defer span.End()

	venue := &domain.Venue{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Capacity:    req.Capacity,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.venueRepo.Create(ctx, venue); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("venue_id", venue.ID))
	return dto.NewVenueResponse(venue), nil
}

// GetVenue retrieves a venue by ID
func (s *venueService) GetVenue(ctx context.Context, id string) (*dto.VenueResponse, error) {
	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}
	return dto.NewVenueResponse(venue), nil
}

// ListVenues lists venues with pagination
func (s *venueService) ListVenues(ctx context.Context, limit, offset int) ([]*dto.VenueResponse, int, error) {
	venues, total, err := s.venueRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*dto.VenueResponse, 0, len(venues))
	for _, v := range venues {
		responses = append(responses, dto.NewVenueResponse(v))
	}
	return responses, total, nil
}

// UpdateVenue updates a venue
func (s *venueService) UpdateVenue(ctx context.Context, id string, req *dto.UpdateVenueRequest) (*dto.VenueResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.update")
	defer span.End()

	venue, err := s.venueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, domain.ErrVenueNotFound
	}

	if req.Name != nil {
		venue.Name = *req.Name
	}
	if req.Location != nil {
		venue.Location = req.Location
	}
	if req.Description != nil {
		venue.Description = req.Description
	}
	if req.Capacity != nil {
		venue.Capacity = *req.Capacity
	}
	venue.UpdatedAt = time.Now().UTC()

	if err := s.venueRepo.Update(ctx, venue); err != nil {
		return nil, err
	}
	return dto.NewVenueResponse(venue), nil
}

// DeleteVenue deletes a venue that no event references
func (s *venueService) DeleteVenue(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.venue.delete")
	defer span.End()

	count, err := s.venueRepo.EventCount(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return domain.ErrVenueInUse
	}

	return s.venueRepo.Delete(ctx, id)
}
