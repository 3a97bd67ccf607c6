package service

import (
	"context"
	"sync"
	"time"

	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/internal/repository"
)

// MockVenueRepository is a mock implementation of VenueRepository
type MockVenueRepository struct {
	CreateFunc     func(ctx context.Context, venue *domain.Venue) error
	GetByIDFunc    func(ctx context.Context, id string) (*domain.Venue, error)
	ListFunc       func(ctx context.Context, limit, offset int) ([]*domain.Venue, int, error)
	UpdateFunc     func(ctx context.Context, venue *domain.Venue) error
	DeleteFunc     func(ctx context.Context, id string) error
	EventCountFunc func(ctx context.Context, venueID string) (int, error)
}

func (m *MockVenueRepository) Create(ctx context.Context, venue *domain.Venue) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, venue)
	}
	return nil
}

func (m *MockVenueRepository) GetByID(ctx context.Context, id string) (*domain.Venue, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockVenueRepository) List(ctx context.Context, limit, offset int) ([]*domain.Venue, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*domain.Venue{}, 0, nil
}

func (m *MockVenueRepository) Update(ctx context.Context, venue *domain.Venue) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, venue)
	}
	return nil
}

func (m *MockVenueRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockVenueRepository) EventCount(ctx context.Context, venueID string) (int, error) {
	if m.EventCountFunc != nil {
		return m.EventCountFunc(ctx, venueID)
	}
	return 0, nil
}

// MockEventRepository is a mock implementation of EventRepository
type MockEventRepository struct {
	CreateFunc           func(ctx context.Context, event *domain.Event) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Event, error)
	ListFunc             func(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error)
	UpdateFunc           func(ctx context.Context, event *domain.Event) error
	TransitionStatusFunc func(ctx context.Context, id, from, to string) (bool, error)
	DeleteFunc           func(ctx context.Context, id string) error
}

func (m *MockEventRepository) Create(ctx context.Context, event *domain.Event) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockEventRepository) List(ctx context.Context, filter *repository.EventFilter, limit, offset int) ([]*domain.Event, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter, limit, offset)
	}
	return []*domain.Event{}, 0, nil
}

func (m *MockEventRepository) Update(ctx context.Context, event *domain.Event) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, event)
	}
	return nil
}

func (m *MockEventRepository) TransitionStatus(ctx context.Context, id, from, to string) (bool, error) {
	if m.TransitionStatusFunc != nil {
		return m.TransitionStatusFunc(ctx, id, from, to)
	}
	return true, nil
}

func (m *MockEventRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTicketTypeRepository is a mock implementation of TicketTypeRepository
type MockTicketTypeRepository struct {
	CreateFunc          func(ctx context.Context, ticketType *domain.TicketType) error
	GetByIDFunc         func(ctx context.Context, id string) (*domain.TicketType, error)
	GetByEventIDFunc    func(ctx context.Context, eventID string) ([]*domain.TicketType, error)
	UpdateFunc          func(ctx context.Context, ticketType *domain.TicketType) error
	DeleteFunc          func(ctx context.Context, id string) error
	ListDriftedFunc     func(ctx context.Context, limit int) ([]*repository.CapacityDrift, error)
	RepairSoldCountFunc func(ctx context.Context, id string, expected, actual int) (bool, error)
}

func (m *MockTicketTypeRepository) Create(ctx context.Context, ticketType *domain.TicketType) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ticketType)
	}
	return nil
}

func (m *MockTicketTypeRepository) GetByID(ctx context.Context, id string) (*domain.TicketType, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTicketTypeRepository) GetByEventID(ctx context.Context, eventID string) ([]*domain.TicketType, error) {
	if m.GetByEventIDFunc != nil {
		return m.GetByEventIDFunc(ctx, eventID)
	}
	return []*domain.TicketType{}, nil
}

func (m *MockTicketTypeRepository) Update(ctx context.Context, ticketType *domain.TicketType) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ticketType)
	}
	return nil
}

func (m *MockTicketTypeRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockTicketTypeRepository) ListDrifted(ctx context.Context, limit int) ([]*repository.CapacityDrift, error) {
	if m.ListDriftedFunc != nil {
		return m.ListDriftedFunc(ctx, limit)
	}
	return []*repository.CapacityDrift{}, nil
}

func (m *MockTicketTypeRepository) RepairSoldCount(ctx context.Context, id string, expected, actual int) (bool, error) {
	if m.RepairSoldCountFunc != nil {
		return m.RepairSoldCountFunc(ctx, id, expected, actual)
	}
	return true, nil
}

// MockRegistrationRepository is a mock implementation of RegistrationRepository
type MockRegistrationRepository struct {
	CreateFunc                  func(ctx context.Context, reg *domain.Registration) error
	GetByIDFunc                 func(ctx context.Context, id string) (*domain.Registration, error)
	GetByIdempotencyKeyFunc     func(ctx context.Context, userID, key string) (*domain.Registration, error)
	CancelIfStatusFunc          func(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error)
	PromoteOldestWaitlistedFunc func(ctx context.Context, ticketTypeID string) (*domain.Registration, error)
	ListByUserFunc              func(ctx context.Context, userID string, limit, offset int) ([]*repository.RegistrationDetail, int, error)
	ListByEventFunc             func(ctx context.Context, eventID string, limit, offset int) ([]*repository.AttendeeRegistration, int, error)
	CountActiveByEventFunc      func(ctx context.Context, eventID string) (int, error)
}

func (m *MockRegistrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, reg)
	}
	return nil
}

func (m *MockRegistrationRepository) GetByID(ctx context.Context, id string) (*domain.Registration, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Registration, error) {
	if m.GetByIdempotencyKeyFunc != nil {
		return m.GetByIdempotencyKeyFunc(ctx, userID, key)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) CancelIfStatus(ctx context.Context, id, userID, fromStatus string, cancelledAt time.Time) (bool, error) {
	if m.CancelIfStatusFunc != nil {
		return m.CancelIfStatusFunc(ctx, id, userID, fromStatus, cancelledAt)
	}
	return true, nil
}

func (m *MockRegistrationRepository) PromoteOldestWaitlisted(ctx context.Context, ticketTypeID string) (*domain.Registration, error) {
	if m.PromoteOldestWaitlistedFunc != nil {
		return m.PromoteOldestWaitlistedFunc(ctx, ticketTypeID)
	}
	return nil, nil
}

func (m *MockRegistrationRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*repository.RegistrationDetail, int, error) {
	if m.ListByUserFunc != nil {
		return m.ListByUserFunc(ctx, userID, limit, offset)
	}
	return []*repository.RegistrationDetail{}, 0, nil
}

func (m *MockRegistrationRepository) ListByEvent(ctx context.Context, eventID string, limit, offset int) ([]*repository.AttendeeRegistration, int, error) {
	if m.ListByEventFunc != nil {
		return m.ListByEventFunc(ctx, eventID, limit, offset)
	}
	return []*repository.AttendeeRegistration{}, 0, nil
}

func (m *MockRegistrationRepository) CountActiveByEvent(ctx context.Context, eventID string) (int, error) {
	if m.CountActiveByEventFunc != nil {
		return m.CountActiveByEventFunc(ctx, eventID)
	}
	return 0, nil
}

// MockLedger is a mock implementation of ledger.Ledger
type MockLedger struct {
	TryReserveFunc func(ctx context.Context, ticketTypeID string) error
	ReleaseFunc    func(ctx context.Context, ticketTypeID string) error
}

func (m *MockLedger) TryReserve(ctx context.Context, ticketTypeID string) error {
	if m.TryReserveFunc != nil {
		return m.TryReserveFunc(ctx, ticketTypeID)
	}
	return nil
}

func (m *MockLedger) Release(ctx context.Context, ticketTypeID string) error {
	if m.ReleaseFunc != nil {
		return m.ReleaseFunc(ctx, ticketTypeID)
	}
	return nil
}

// RecordingPublisher captures published lifecycle events for assertions
type RecordingPublisher struct {
	mu        sync.Mutex
	Confirmed []*domain.Registration
	Waitlist  []*domain.Registration
	Cancelled []*domain.Registration
	Promoted  []*domain.Registration
}

func (p *RecordingPublisher) PublishRegistrationConfirmed(ctx context.Context, reg *domain.Registration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Confirmed = append(p.Confirmed, reg)
	return nil
}

func (p *RecordingPublisher) PublishRegistrationWaitlisted(ctx context.Context, reg *domain.Registration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waitlist = append(p.Waitlist, reg)
	return nil
}

func (p *RecordingPublisher) PublishRegistrationCancelled(ctx context.Context, reg *domain.Registration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Cancelled = append(p.Cancelled, reg)
	return nil
}

func (p *RecordingPublisher) PublishRegistrationPromoted(ctx context.Context, reg *domain.Registration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Promoted = append(p.Promoted, reg)
	return nil
}

func (p *RecordingPublisher) Close() error {
	return nil
}
