package events

import (
	"context"
	"fmt"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/middleware"
	"roomly/pkg/model"
)

const (
	schemaVersion = "1"
	source        = "bookings-service"
)

// Publisher announces committed booking writes.
type Publisher interface {
	Publish(ctx context.Context, event *model.BookingEvent) error
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, *model.BookingEvent) error { return nil }
func (noopPublisher) Close() error                                       { return nil }

type kafkaPublisher struct {
	producer *kafka.Producer
	log      *logger.Logger
}

func NewKafkaPublisher(producer *kafka.Producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: producer, log: log}
}

// Publish keys messages by room so events of one room stay ordered.
func (p *kafkaPublisher) Publish(ctx context.Context, event *model.BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(event.RoomID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", event.Type, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
