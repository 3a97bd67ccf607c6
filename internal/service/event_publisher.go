package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/event-registration/internal/domain"
	"github.com/prohmpiriya/event-registration/pkg/kafka"
)

// EventPublisher defines the interface for publishing registration lifecycle events
type EventPublisher interface {
	// PublishRegistrationConfirmed publishes a registration confirmed event
	PublishRegistrationConfirmed(ctx context.Context, reg *domain.Registration) error

	// PublishRegistrationWaitlisted publishes a registration waitlisted event
	PublishRegistrationWaitlisted(ctx context.Context, reg *domain.Registration) error

	// PublishRegistrationCancelled publishes a registration cancelled event
	PublishRegistrationCancelled(ctx context.Context, reg *domain.Registration) error

	// PublishRegistrationPromoted publishes a waitlist promotion event
	PublishRegistrationPromoted(ctx context.Context, reg *domain.Registration) error

	// Close closes the event publisher
	Close() error
}

// KafkaEventPublisher implements EventPublisher using Kafka
type KafkaEventPublisher struct {
	producer    *kafka.Producer
	topic       string
	serviceName string
}

// EventPublisherConfig contains configuration for the event publisher
type EventPublisherConfig struct {
	Brokers     []string
	Topic       string
	ServiceName string
	ClientID    string
}

// NewKafkaEventPublisher creates a new Kafka event publisher
func NewKafkaEventPublisher(ctx context.Context, cfg *EventPublisherConfig) (*KafkaEventPublisher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("event publisher config is required")
	}

	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "registration-events"
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "event-registration"
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "event-registration-producer"
	}

	producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		ClientID:      clientID,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
		BatchSize:     100,
		LingerMs:      10,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return &KafkaEventPublisher{
		producer:    producer,
		topic:       topic,
		serviceName: serviceName,
	}, nil
}

// PublishRegistrationConfirmed publishes a registration confirmed event
func (p *KafkaEventPublisher) PublishRegistrationConfirmed(ctx context.Context, reg *domain.Registration) error {
	return p.publishEvent(ctx, domain.RegistrationEventConfirmed, reg)
}

// PublishRegistrationWaitlisted publishes a registration waitlisted event
func (p *KafkaEventPublisher) PublishRegistrationWaitlisted(ctx context.Context, reg *domain.Registration) error {
	return p.publishEvent(ctx, domain.RegistrationEventWaitlisted, reg)
}

// PublishRegistrationCancelled publishes a registration cancelled event
func (p *KafkaEventPublisher) PublishRegistrationCancelled(ctx context.Context, reg *domain.Registration) error {
	return p.publishEvent(ctx, domain.RegistrationEventCancelled, reg)
}

// PublishRegistrationPromoted publishes a waitlist promotion event
func (p *KafkaEventPublisher) PublishRegistrationPromoted(ctx context.Context, reg *domain.Registration) error {
	return p.publishEvent(ctx, domain.RegistrationEventPromoted, reg)
}

// Close closes the event publisher
func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		p.producer.Close()
	}
	return nil
}

// publishEvent publishes a registration lifecycle event to Kafka
func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType domain.RegistrationEventType, reg *domain.Registration) error {
	eventID := uuid.New().String()
	event := domain.NewRegistrationEvent(eventType, reg, eventID)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	headers := map[string]string{
		"event_type":   string(eventType),
		"event_id":     eventID,
		"source":       p.serviceName,
		"content_type": "application/json",
	}

	msg := &kafka.Message{
		Topic:     p.topic,
		Key:       []byte(event.Key()),
		Value:     value,
		Headers:   headers,
		Timestamp: time.Now(),
	}

	if err := p.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	return nil
}

// NoOpEventPublisher is a no-op implementation of EventPublisher for testing
type NoOpEventPublisher struct{}

// NewNoOpEventPublisher creates a new no-op event publisher
func NewNoOpEventPublisher() *NoOpEventPublisher {
	return &NoOpEventPublisher{}
}

// PublishRegistrationConfirmed is a no-op
func (p *NoOpEventPublisher) PublishRegistrationConfirmed(ctx context.Context, reg *domain.Registration) error {
	return nil
}

// PublishRegistrationWaitlisted is a no-op
func (p *NoOpEventPublisher) PublishRegistrationWaitlisted(ctx context.Context, reg *domain.Registration) error {
	return nil
}

// PublishRegistrationCancelled is a no-op
func (p *NoOpEventPublisher) PublishRegistrationCancelled(ctx context.Context, reg *domain.Registration) error {
	return nil
}

// PublishRegistrationPromoted is a no-op
func (p *NoOpEventPublisher) PublishRegistrationPromoted(ctx context.Context, reg *domain.Registration) error {
	return nil
}

// Close is a no-op
func (p *NoOpEventPublisher) Close() error {
	return nil
}
