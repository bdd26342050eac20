// Package cache keeps recent conflict-check answers per room.
//
// Entries are keyed by a per-room generation counter. Invalidating a room
// bumps its generation, so every cached answer for that room is skipped at
// once and left to expire through its TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "roomly:conflicts"

type Key struct {
	RoomID           string
	Start            time.Time
	End              time.Time
	ExcludeBookingID string
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s",
		k.Start.UTC().Format(time.RFC3339Nano),
		k.End.UTC().Format(time.RFC3339Nano),
		k.ExcludeBookingID,
	)
}

// Ticket pins the room generation a lookup saw. Set stores under that
// generation, so an answer computed across an invalidation is never served.
type Ticket struct {
	Key        Key
	Generation int64

	pinned bool
	local  int64
}

type ConflictCache interface {
	// Get returns the cached answer for key. On a miss, hand the ticket to Set.
	Get(ctx context.Context, key Key) (*model.ConflictCheckResponse, Ticket, bool)
	Set(ctx context.Context, t Ticket, resp *model.ConflictCheckResponse)
	// InvalidateRoom runs after this instance wrote a booking of the room.
	InvalidateRoom(ctx context.Context, roomID string) error
	// EvictRoom runs when another instance reports a write to the room.
	EvictRoom(ctx context.Context, roomID string) error
}

type noopCache struct{}

// NewNoop returns a cache that never hits.
func NewNoop() ConflictCache {
	return noopCache{}
}

func (noopCache) Get(_ context.Context, key Key) (*model.ConflictCheckResponse, Ticket, bool) {
	return nil, Ticket{Key: key}, false
}
func (noopCache) Set(context.Context, Ticket, *model.ConflictCheckResponse) {}
func (noopCache) InvalidateRoom(context.Context, string) error              { return nil }
func (noopCache) EvictRoom(context.Context, string) error                   { return nil }

type redisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    *logger.Logger
}

// NewRedis returns a Redis-backed cache, or the no-op cache when rdb is nil
// or ttl is not positive.
func NewRedis(rdb *redis.Client, ttl time.Duration, log *logger.Logger) ConflictCache {
	if rdb == nil || ttl <= 0 {
		return NewNoop()
	}
	return &redisCache{rdb: rdb, ttl: ttl, prefix: defaultPrefix, log: log}
}

func (c *redisCache) generationKey(roomID string) string {
	return fmt.Sprintf("%s:gen:%s", c.prefix, roomID)
}

func (c *redisCache) generation(ctx context.Context, roomID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(roomID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *redisCache) entryKey(key Key, gen int64) string {
	return fmt.Sprintf("%s:%s:%d:%s", c.prefix, key.RoomID, gen, key)
}

// Get treats any Redis failure as a miss. A ticket from a failed lookup is
// not pinned and Set ignores it.
func (c *redisCache) Get(ctx context.Context, key Key) (*model.ConflictCheckResponse, Ticket, bool) {
	gen, err := c.generation(ctx, key.RoomID)
	if err != nil {
		c.log.Warn("conflict cache lookup failed", "room_id", key.RoomID, "error", err)
		return nil, Ticket{Key: key}, false
	}
	ticket := Ticket{Key: key, Generation: gen, pinned: true}

	entry := c.entryKey(key, gen)
	raw, err := c.rdb.Get(ctx, entry).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("conflict cache lookup failed", "room_id", key.RoomID, "error", err)
		}
		return nil, ticket, false
	}

	var resp model.ConflictCheckResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		c.log.Warn("conflict cache entry is corrupt", "key", entry, "error", err)
		return nil, ticket, false
	}
	return &resp, ticket, true
}

func (c *redisCache) Set(ctx context.Context, t Ticket, resp *model.ConflictCheckResponse) {
	if !t.pinned {
		return
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		c.log.Warn("conflict cache store failed", "room_id", t.Key.RoomID, "error", err)
		return
	}

	if err := c.rdb.Set(ctx, c.entryKey(t.Key, t.Generation), raw, c.ttl).Err(); err != nil {
		c.log.Warn("conflict cache store failed", "room_id", t.Key.RoomID, "error", err)
	}
}

func (c *redisCache) InvalidateRoom(ctx context.Context, roomID string) error {
	if err := c.rdb.Incr(ctx, c.generationKey(roomID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate conflict cache for room %s: %w", roomID, err)
	}
	return nil
}

// EvictRoom is a no-op: the writing instance already bumped the shared
// generation through InvalidateRoom.
func (c *redisCache) EvictRoom(context.Context, string) error {
	return nil
}
