package repository

import (
	"context"
	"roomly/pkg/config"
	"roomly/pkg/model"
	"time"
)

const (
	CollectionName = "Rooms"
)

type RoomRepository interface {
	Create(ctx context.Context, room *model.Room) error
	FindByID(ctx context.Context, id string) (*model.Room, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	Update(ctx context.Context, id string, room *model.Room) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// New returns the room repository for the configured store driver.
func New(cfg *config.Config) RoomRepository {
	if cfg.StoreDriver == config.StorePostgres {
		return NewPostgresRoomRepository(cfg)
	}
	return NewMongoRoomRepository(cfg)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
