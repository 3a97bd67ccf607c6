package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/prohmpiriya/event-registration/internal/ledger"
	"github.com/prohmpiriya/event-registration/internal/metrics"
	"github.com/prohmpiriya/event-registration/internal/repository"
	"github.com/prohmpiriya/event-registration/internal/service"
	"github.com/prohmpiriya/event-registration/internal/worker"
	"github.com/prohmpiriya/event-registration/pkg/config"
	"github.com/prohmpiriya/event-registration/pkg/database"
	"github.com/prohmpiriya/event-registration/pkg/logger"
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
		ServiceName: cfg.App.Name + "-reconcile",
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting reconcile worker...",
		zap.Duration("interval", cfg.Worker.ReconcileInterval),
		zap.Int("batch_size", cfg.Worker.ReconcileBatch))

	if err := metrics.Init(); err != nil {
		logger.Warn("metrics initialization failed", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        10,
		MinConns:        2,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		logger.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()

	// Initialize Kafka event publisher for promotion events
	var eventPublisher service.EventPublisher = service.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		eventPubCfg := &service.EventPublisherConfig{
			Brokers:     cfg.Kafka.Brokers,
			Topic:       cfg.Kafka.Topic,
			ServiceName: cfg.App.Name,
			ClientID:    cfg.Kafka.ClientID + "-reconcile",
		}
		kafkaPublisher, err := service.NewKafkaEventPublisher(ctx, eventPubCfg)
		if err != nil {
			logger.Warn(fmt.Sprintf("Kafka connection failed, using no-op publisher: %v", err))
		} else {
			eventPublisher = kafkaPublisher
		}
	}
	defer eventPublisher.Close()

	w := worker.NewReconcileWorker(
		&worker.ReconcileWorkerConfig{
			Interval:  cfg.Worker.ReconcileInterval,
			BatchSize: cfg.Worker.ReconcileBatch,
		},
		repository.NewPostgresTicketTypeRepository(db.Pool()),
		repository.NewPostgresRegistrationRepository(db.Pool()),
		ledger.NewPostgresLedger(db.Pool()),
		eventPublisher,
	)

	w.Start(ctx)

	logger.Info("Reconcile worker exited")
}
