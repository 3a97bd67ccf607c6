package di

import (
	"time"

	"github.com/prohmpiriya/event-registration/internal/handler"
	"github.com/prohmpiriya/event-registration/internal/ledger"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/pkg/database"
	"github.com/prohmpiriya/event-registration/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	VenueRepo        repository.VenueRepository
	EventRepo        repository.EventRepository
	CachedEventRepo  repository.EventReader
	TicketTypeRepo   repository.TicketTypeRepository
	RegistrationRepo repository.RegistrationRepository
	CapacityLedger   ledger.Ledger

	// Services
	VenueService        service.VenueService
	EventService        service.EventService
	TicketTypeService   service.TicketTypeService
	RegistrationService service.RegistrationService
	QueryService        service.QueryService
	EventPublisher      service.EventPublisher

	// Handlers
	HealthHandler       *handler.HealthHandler
	VenueHandler        *handler.VenueHandler
	EventHandler        *handler.EventHandler
	TicketTypeHandler   *handler.TicketTypeHandler
	RegistrationHandler *handler.RegistrationHandler
	QueryHandler        *handler.QueryHandler
}

// ContainerConfig holds configuration for creating a container
type ContainerConfig struct {
	DB             *database.PostgresDB
	Redis          *redis.Client
	EventPublisher service.EventPublisher
	CacheTTL       time.Duration
}

// NewContainer creates and wires all application dependencies
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	c.VenueRepo = repository.NewPostgresVenueRepository(c.DB.Pool())
	c.EventRepo = repository.NewPostgresEventRepository(c.DB.Pool())
	c.TicketTypeRepo = repository.NewPostgresTicketTypeRepository(c.DB.Pool())
	c.RegistrationRepo = repository.NewPostgresRegistrationRepository(c.DB.Pool())
	c.CapacityLedger = ledger.NewPostgresLedger(c.DB.Pool())

	// Cache event reads for the public browsing paths. The registration
	// and management services keep the uncached repository so capacity
	// and status decisions never see stale data.
	c.CachedEventRepo = c.EventRepo
	if c.Redis != nil {
		c.CachedEventRepo = repository.NewCachedEventRepository(c.EventRepo, c.Redis, cfg.CacheTTL)
	}

	c.EventPublisher = cfg.EventPublisher
	if c.EventPublisher == nil {
		c.EventPublisher = service.NewNoOpEventPublisher()
	}

	// Initialize services
	c.VenueService = service.NewVenueService(c.VenueRepo)
	c.EventService = service.NewEventService(c.EventRepo, c.VenueRepo, c.RegistrationRepo)
	c.TicketTypeService = service.NewTicketTypeService(c.TicketTypeRepo, c.EventRepo)
	c.RegistrationService = service.NewRegistrationService(
		c.RegistrationRepo,
		c.TicketTypeRepo,
		c.EventRepo,
		c.CapacityLedger,
		c.EventPublisher,
	)
	c.QueryService = service.NewQueryService(
		c.CachedEventRepo,
		c.TicketTypeRepo,
		c.RegistrationRepo,
		c.Redis,
		cfg.CacheTTL,
	)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.VenueHandler = handler.NewVenueHandler(c.VenueService)
	c.EventHandler = handler.NewEventHandler(c.EventService)
	c.TicketTypeHandler = handler.NewTicketTypeHandler(c.TicketTypeService)
	c.RegistrationHandler = handler.NewRegistrationHandler(c.RegistrationService)
	c.QueryHandler = handler.NewQueryHandler(c.QueryService)

	return c
}
