package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/event-registration/internal/di"
	"github.com/prohmpiriya/event-registration/internal/metrics"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/pkg/config"
	"github.com/prohmpiriya/event-registration/pkg/database"
	"github.com/prohmpiriya/event-registration/pkg/logger"
	"github.com/prohmpiriya/event-registration/pkg/middleware"
	pkgredis "github.com/prohmpiriya/event-registration/pkg/redis"
	"github.com/prohmpiriya/event-registration/pkg/telemetry"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		Level:       "info",
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if cfg.App.Debug {
		logCfg.Level = "debug"
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting Event Registration Service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	ctx := context.Background()

	// Initialize tracing
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		logger.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", zap.Error(err))
		}
	}()
	if err := metrics.Init(); err != nil {
		logger.Warn("metrics initialization failed", zap.Error(err))
	}

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        int32(cfg.Database.MaxOpenConns),
		MinConns:        int32(cfg.Database.MaxIdleConns),
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	logger.Info("Database connected",
		zap.Int32("max_conns", dbCfg.MaxConns),
		zap.Int32("min_conns", dbCfg.MinConns))

	// Initialize Redis connection
	redisCfg := &pkgredis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisClient, err := pkgredis.NewClient(ctx, redisCfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected", zap.String("addr", redisCfg.Addr()))

	// Initialize Kafka event publisher
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		eventPubCfg := &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID,
		}
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, eventPubCfg)
		if err != nil {
			logger.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			eventPublisher = kafkaPublisher
			logger.Info("Kafka event publisher connected", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	}
	defer eventPublisher.Close()

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		DB:             db,
		Redis:          redisClient,
		EventPublisher: eventPublisher,
		CacheTTL:       cfg.Redis.CacheTTL,
	})

	// Setup Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(telemetry.TracingMiddleware(cfg.App.Name))

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Live)
	router.GET("/ready", container.HealthHandler.Ready)

	jwtAuth := middleware.JWTMiddleware(&middleware.JWTConfig{Secret: cfg.JWT.Secret})
	organizerOnly := middleware.RequireRole(middleware.RoleOrganizer)

	v1 := router.Group("/api/v1")
	{
		// Public browsing, no authentication
		v1.GET("/events", container.QueryHandler.ListOpenEvents)
		v1.GET("/events/:id/availability", container.QueryHandler.GetAvailability)

		// Participant routes
		authed := v1.Group("")
		authed.Use(jwtAuth)
		{
			authed.POST("/events/:id/registrations", container.RegistrationHandler.Register)
			authed.GET("/registrations/:id", container.RegistrationHandler.Get)
			authed.DELETE("/registrations/:id", container.RegistrationHandler.Cancel)
			authed.GET("/me/registrations", container.QueryHandler.MyRegistrations)
		}

		// Organizer routes
		org := v1.Group("")
		org.Use(jwtAuth, organizerOnly)
		{
			org.POST("/venues", container.VenueHandler.Create)
			org.GET("/venues", container.VenueHandler.List)
			org.GET("/venues/:id", container.VenueHandler.Get)
			org.PUT("/venues/:id", container.VenueHandler.Update)
			org.DELETE("/venues/:id", container.VenueHandler.Delete)

			org.POST("/events", container.EventHandler.Create)
			org.GET("/events/manage", container.EventHandler.List)
			org.GET("/events/:id", container.EventHandler.Get)
			org.PUT("/events/:id", container.EventHandler.Update)
			org.DELETE("/events/:id", container.EventHandler.Delete)
			org.POST("/events/:id/publish", container.EventHandler.Publish)
			org.POST("/events/:id/cancel", container.EventHandler.Cancel)
			org.POST("/events/:id/complete", container.EventHandler.Complete)

			org.POST("/events/:id/ticket-types", container.TicketTypeHandler.Create)
			org.GET("/events/:id/ticket-types", container.TicketTypeHandler.ListByEvent)
			org.PUT("/ticket-types/:id", container.TicketTypeHandler.Update)
			org.DELETE("/ticket-types/:id", container.TicketTypeHandler.Delete)

			org.GET("/events/:id/registrations", container.QueryHandler.ListAttendees)
		}
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info(fmt.Sprintf("Event Registration Service listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	logger.Info("Server exited gracefully")
}
