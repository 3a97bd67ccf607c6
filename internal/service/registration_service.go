package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/dto"
	"github.com/prohmpiriya/event-registration/internal/ledger"
	"github.com/prohmpiriya/event-registration/internal/metrics"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/pkg/logger"
	"github.com/prohmpiriya/event-registration/pkg/retry"
	"github.com/prohmpiriya/event-registration/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// RegistrationService defines the interface for the registration workflow
type RegistrationService interface {
	// Register registers a user for a ticket type. When the pool is full and
	// the ticket type allows it, the registration is created on the waitlist.
	Register(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error)

	// Cancel cancels a registration owned by the user. Cancelling a confirmed
	// registration frees a capacity unit and promotes the oldest waitlisted
	// registration when one exists.
	Cancel(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error)

	// GetRegistration retrieves a registration owned by the user
	GetRegistration(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error)
}

// registrationService implements RegistrationService
type registrationService struct {
	registrationRepo repository.RegistrationRepository
	ticketTypeRepo   repository.TicketTypeRepository
	eventRepo        repository.EventRepository
	capacityLedger   ledger.Ledger
	eventPublisher   EventPublisher
	releaseRetry     *retry.Config
	now              func() time.Time
}

// NewRegistrationService creates a new registration service. The event
// repository must be the uncached one: registration decisions may not be
// made against stale reads.
func NewRegistrationService(
	registrationRepo repository.RegistrationRepository,
	ticketTypeRepo repository.TicketTypeRepository,
	eventRepo repository.EventRepository,
	capacityLedger ledger.Ledger,
	eventPublisher EventPublisher,
) RegistrationService {
	if eventPublisher == nil {
		eventPublisher = NewNoOpEventPublisher()
	}
	return &registrationService{
		registrationRepo: registrationRepo,
		ticketTypeRepo:   ticketTypeRepo,
		eventRepo:        eventRepo,
		capacityLedger:   capacityLedger,
		eventPublisher:   eventPublisher,
		releaseRetry: &retry.Config{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
			JitterFactor:    0.1,
		},
		now: time.Now,
	}
}

// Register registers a user for a ticket type
func (s *registrationService) Register(ctx context.Context, req *dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registration.register")
	defer span.End()

	start := time.Now()

	if req == nil || req.UserID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if req.EventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if req.TicketTypeID == "" {
		span.SetStatus(codes.Error, "invalid ticket_type_id")
		return nil, domain.ErrInvalidTicketTypeID
	}

	span.SetAttributes(
		attribute.String("user_id", req.UserID),
		attribute.String("event_id", req.EventID),
		attribute.String("ticket_type_id", req.TicketTypeID),
	)

	// Replay: the same idempotency key returns the original outcome
	if req.IdempotencyKey != nil {
		existing, err := s.registrationRepo.GetByIdempotencyKey(ctx, req.UserID, *req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return dto.NewRegistrationResponse(existing), nil
		}
	}

	ticketType, err := s.ticketTypeRepo.GetByID(ctx, req.TicketTypeID)
	if err != nil {
		return nil, err
	}
	if ticketType == nil || ticketType.EventID != req.EventID {
		return nil, domain.ErrTicketTypeNotFound
	}

	event, err := s.eventRepo.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrEventNotFound
	}
	if !event.IsOpenForRegistration(s.now()) {
		return nil, domain.ErrEventNotOpen
	}

	err = s.capacityLedger.TryReserve(ctx, req.TicketTypeID)
	switch {
	case err == nil:
		reg, err := s.persist(ctx, req, domain.RegistrationStatusConfirmed)
		if err != nil {
			// The unit was taken but no registration holds it, give it back
			s.compensateRelease(ctx, req.TicketTypeID)
			if errors.Is(err, domain.ErrIdempotencyConflict) {
				return s.replayIdempotent(ctx, req, err)
			}
			return nil, err
		}
		s.publish(ctx, s.eventPublisher.PublishRegistrationConfirmed, reg)
		metrics.RecordConfirmation(ctx, req.EventID, req.TicketTypeID, time.Since(start).Seconds())
		return dto.NewRegistrationResponse(reg), nil

	case errors.Is(err, domain.ErrCapacityExceeded):
		metrics.RecordRejection(ctx, req.TicketTypeID)
		if !ticketType.WaitlistEnabled {
			return nil, domain.ErrCapacityExceeded
		}
		reg, err := s.persist(ctx, req, domain.RegistrationStatusWaitlist)
		if err != nil {
			if errors.Is(err, domain.ErrIdempotencyConflict) {
				return s.replayIdempotent(ctx, req, err)
			}
			return nil, err
		}
		s.publish(ctx, s.eventPublisher.PublishRegistrationWaitlisted, reg)
		metrics.RecordWaitlist(ctx, req.EventID, req.TicketTypeID)
		return dto.NewRegistrationResponse(reg), nil

	default:
		return nil, err
	}
}

// Cancel cancels a registration owned by the user
func (s *registrationService) Cancel(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.registration.cancel")
	defer span.End()

	if userID == "" {
		return nil, domain.ErrInvalidUserID
	}

	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.UserID != userID {
		return nil, domain.ErrRegistrationNotFound
	}
	if reg.Status == domain.RegistrationStatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}

	span.SetAttributes(
		attribute.String("registration_id", registrationID),
		attribute.String("status", reg.Status),
	)

	fromStatus := reg.Status
	cancelledAt := s.now().UTC()
	ok, err := s.registrationRepo.CancelIfStatus(ctx, registrationID, userID, fromStatus, cancelledAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race to a concurrent cancel
		return nil, domain.ErrAlreadyCancelled
	}

	// The stored row carries the same timestamp the response reports
	reg.Status = domain.RegistrationStatusCancelled
	reg.CancelledAt = &cancelledAt

	// A waitlisted registration never held a unit, nothing to release
	if fromStatus == domain.RegistrationStatusConfirmed {
		if err := s.capacityLedger.Release(ctx, reg.TicketTypeID); err != nil {
			logger.ErrorCtx(ctx, "failed to release capacity unit on cancel",
				zap.String("registration_id", registrationID),
				zap.String("ticket_type_id", reg.TicketTypeID),
				zap.Error(err))
		} else {
			s.promoteWaitlisted(ctx, reg.TicketTypeID)
		}
	}

	s.publish(ctx, s.eventPublisher.PublishRegistrationCancelled, reg)
	metrics.RecordCancellation(ctx, reg.EventID)
	return dto.NewRegistrationResponse(reg), nil
}

// GetRegistration retrieves a registration owned by the user
func (s *registrationService) GetRegistration(ctx context.Context, registrationID, userID string) (*dto.RegistrationResponse, error) {
	reg, err := s.registrationRepo.GetByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	if reg == nil || reg.UserID != userID {
		return nil, domain.ErrRegistrationNotFound
	}
	return dto.NewRegistrationResponse(reg), nil
}

// persist inserts the registration row. A duplicate active registration
// surfaces as domain.ErrDuplicateRegistration from the repository.
func (s *registrationService) persist(ctx context.Context, req *dto.CreateRegistrationRequest, status string) (*domain.Registration, error) {
	reg := &domain.Registration{
		ID:             uuid.New().String(),
		UserID:         req.UserID,
		EventID:        req.EventID,
		TicketTypeID:   req.TicketTypeID,
		Status:         status,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// replayIdempotent resolves a lost race on the idempotency key by returning
// the winning request's registration. cause is returned when the winner
// cannot be read back.
func (s *registrationService) replayIdempotent(ctx context.Context, req *dto.CreateRegistrationRequest, cause error) (*dto.RegistrationResponse, error) {
	if req.IdempotencyKey == nil {
		return nil, cause
	}
	existing, err := s.registrationRepo.GetByIdempotencyKey(ctx, req.UserID, *req.IdempotencyKey)
	if err != nil || existing == nil {
		return nil, cause
	}
	return dto.NewRegistrationResponse(existing), nil
}

// promoteWaitlisted moves the oldest waitlisted registration into the unit
// just freed. The unit is reserved first; if no waitlisted registration
// exists it is handed back to the pool.
func (s *registrationService) promoteWaitlisted(ctx context.Context, ticketTypeID string) {
	if err := s.capacityLedger.TryReserve(ctx, ticketTypeID); err != nil {
		// Someone else claimed the freed unit, they own the outcome
		return
	}

	promoted, err := s.registrationRepo.PromoteOldestWaitlisted(ctx, ticketTypeID)
	if err != nil {
		logger.ErrorCtx(ctx, "waitlist promotion failed",
			zap.String("ticket_type_id", ticketTypeID),
			zap.Error(err))
		s.compensateRelease(ctx, ticketTypeID)
		return
	}
	if promoted == nil {
		s.compensateRelease(ctx, ticketTypeID)
		return
	}

	logger.InfoCtx(ctx, "promoted waitlisted registration",
		zap.String("registration_id", promoted.ID),
		zap.String("ticket_type_id", ticketTypeID))
	s.publish(ctx, s.eventPublisher.PublishRegistrationPromoted, promoted)
	metrics.RecordPromotion(ctx, ticketTypeID)
}

// compensateRelease returns a reserved unit to the pool, retrying transient
// failures. A unit that cannot be released is left for the reconciler.
func (s *registrationService) compensateRelease(ctx context.Context, ticketTypeID string) {
	result := retry.Do(ctx, s.releaseRetry, func(ctx context.Context) error {
		return s.capacityLedger.Release(ctx, ticketTypeID)
	})
	if result.Err != nil {
		logger.ErrorCtx(ctx, "compensating release failed, leaving repair to reconciler",
			zap.String("ticket_type_id", ticketTypeID),
			zap.Int("attempts", result.Attempts),
			zap.Error(result.LastError))
	}
}

// publish sends a lifecycle event. Publishing is best effort; a broker
// outage never fails the registration itself.
func (s *registrationService) publish(ctx context.Context, fn func(context.Context, *domain.Registration) error, reg *domain.Registration) {
	if err := fn(ctx, reg); err != nil {
		logger.WarnCtx(ctx, "failed to publish registration event",
			zap.String("registration_id", reg.ID),
			zap.Error(err))
	}
}
