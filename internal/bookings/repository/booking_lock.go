package repository

import (
	"context"
	"fmt"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/pkg/config"
	"roomly/pkg/model"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository holds advisory per-room locks. Acquire returns
// ErrLockHeld while an unexpired lock with the same id exists.
type BookingLockRepository interface {
	Acquire(ctx context.Context, lock *model.BookingLock) error
	Release(ctx context.Context, lockID, owner string) error
}

type mongoBookingLockRepository struct {
	collection *mongo.Collection
}

func NewMongoBookingLockRepository(cfg *config.Config) BookingLockRepository {
	database := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		collection: database.Collection(LockCollectionName),
	}
}

// Acquire upserts over an expired lock. A live lock makes the filter miss,
// the upsert then collides on _id and reports a duplicate key.
func (r *mongoBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	now := time.Now().UTC()
	lock.CreatedAt = now

	filter := bson.M{"_id": lock.ID, "expires_at": bson.M{"$lte": now}}
	update := bson.M{"$set": bson.M{
		"owner":      lock.Owner,
		"expires_at": lock.ExpiresAt,
		"created_at": lock.CreatedAt,
	}}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingserrors.ErrLockHeld
		}
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	return nil
}

func (r *mongoBookingLockRepository) Release(ctx context.Context, lockID, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID, "owner": owner})
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

type postgresBookingLockRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresBookingLockRepository(cfg *config.Config) BookingLockRepository {
	return &postgresBookingLockRepository{pool: cfg.Client.Postgres}
}

func (r *postgresBookingLockRepository) Acquire(ctx context.Context, lock *model.BookingLock) error {
	lock.CreatedAt = time.Now().UTC()

	tag, err := r.pool.Exec(ctx,
		`INSERT INTO booking_locks (id, owner, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at
		 WHERE booking_locks.expires_at <= now()`,
		lock.ID, lock.Owner, lock.ExpiresAt, lock.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return bookingserrors.ErrLockHeld
	}
	return nil
}

func (r *postgresBookingLockRepository) Release(ctx context.Context, lockID, owner string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM booking_locks WHERE id = $1 AND owner = $2`, lockID, owner)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
