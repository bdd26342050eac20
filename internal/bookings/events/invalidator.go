package events

import (
	"context"
	"errors"
	"roomly/internal/bookings/cache"
	"roomly/pkg/contracts"
	"roomly/pkg/kafka"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

var errMissingRoom = errors.New("booking event has no room id")

// InvalidationHandler evicts this instance's cached conflict answers for the
// room named in a booking event. The writer already bumped the shared
// generation, so the event only matters to per-instance tiers.
func InvalidationHandler(c cache.ConflictCache, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}
		if event.RoomID == "" {
			return kafka.NewPermanentError("invalid booking event", errMissingRoom)
		}

		if err := c.EvictRoom(ctx, event.RoomID); err != nil {
			return kafka.NewTransientError("conflict cache invalidation failed", err)
		}

		log.Debug("Conflict cache evicted",
			"room_id", event.RoomID,
			"event_type", event.Type,
			"booking_id", event.BookingID,
		)
		return nil
	}
}

type invalidator struct {
	consumer *kafka.Consumer
}

// NewInvalidator wraps a consumer of the booking events topic as a worker.
func NewInvalidator(consumer *kafka.Consumer) contracts.Worker {
	return &invalidator{consumer: consumer}
}

func (w *invalidator) Name() string {
	return "conflict-cache-invalidator"
}

func (w *invalidator) Run(ctx context.Context) error {
	defer w.consumer.Close()
	return w.consumer.Run(ctx)
}
