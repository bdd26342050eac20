package repository

import (
	"context"
	"roomly/pkg/config"
	"roomly/pkg/db"
	"roomly/pkg/model"
	"time"
)

const (
	CollectionName = "Bookings"
	TableName      = "bookings"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	Update(ctx context.Context, id string, booking *model.Booking) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, search model.BookingSearch) ([]*model.Booking, error)
	CountSearch(ctx context.Context, search model.BookingSearch) (int64, error)
	// FindOverlapping returns bookings of every status in the room whose
	// interval overlaps [from, to).
	FindOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error)
	Count(ctx context.Context) (int64, error)
	ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error
}

// New returns the repositories for the configured store driver.
func New(cfg *config.Config) (BookingRepository, BookingLockRepository) {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresBookingRepository(cfg), NewPostgresBookingLockRepository(cfg)
	}
	return NewMongoBookingRepository(cfg), NewMongoBookingLockRepository(cfg)
}

// withTimeout bounds ctx by timeout unless ctx already expires sooner.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}
	return context.WithTimeout(ctx, timeout)
}
