package cache

import (
	"context"
	"os"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(room string) Key {
	start := time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC)
	return Key{RoomID: room, Start: start, End: start.Add(time.Hour)}
}

func noConflicts() *model.ConflictCheckResponse {
	return &model.ConflictCheckResponse{Conflicts: []*model.Booking{}}
}

func TestNoopCache(t *testing.T) {
	c := NewNoop()
	ctx := context.Background()

	_, ticket, ok := c.Get(ctx, testKey("room-a"))
	assert.False(t, ok)
	c.Set(ctx, ticket, &model.ConflictCheckResponse{HasConflicts: true})
	_, _, ok = c.Get(ctx, testKey("room-a"))
	assert.False(t, ok)
	assert.NoError(t, c.InvalidateRoom(ctx, "room-a"))
	assert.NoError(t, c.EvictRoom(ctx, "room-a"))
}

func TestNewRedis_FallsBackToNoop(t *testing.T) {
	assert.IsType(t, noopCache{}, NewRedis(nil, time.Minute, logger.Discard()))
	assert.IsType(t, noopCache{}, NewRedis(redis.NewClient(&redis.Options{}), 0, logger.Discard()))
}

func TestKey_String(t *testing.T) {
	t.Run("includes exclusion", func(t *testing.T) {
		a := testKey("room-a")
		b := a
		b.ExcludeBookingID = "b1"
		assert.NotEqual(t, a.String(), b.String())
	})

	t.Run("keeps sub-second precision", func(t *testing.T) {
		a := testKey("room-a")
		b := a
		b.Start = a.Start.Add(500 * time.Millisecond)
		assert.NotEqual(t, a.String(), b.String())

		c := a
		c.End = a.End.Add(time.Nanosecond)
		assert.NotEqual(t, a.String(), c.String())
	})

	t.Run("ignores the zone of the timestamps", func(t *testing.T) {
		a := testKey("room-a")
		b := a
		b.Start = a.Start.In(time.FixedZone("UTC+2", 2*60*60))
		assert.Equal(t, a.String(), b.String())
	})
}

func newTestNear(remote ConflictCache, ttl time.Duration, maxPerRoom int) (*nearCache, *time.Time) {
	now := time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewNear(remote, ttl, maxPerRoom).(*nearCache)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestNewNear_DisabledWithoutTTL(t *testing.T) {
	remote := NewNoop()
	assert.Equal(t, remote, NewNear(remote, 0, 10))
}

func TestNearCache_ServesUntilEvicted(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestNear(NewNoop(), time.Minute, 0)

	_, ticket, ok := c.Get(ctx, testKey("room-a"))
	require.False(t, ok)
	c.Set(ctx, ticket, noConflicts())
	_, otherTicket, _ := c.Get(ctx, testKey("room-b"))
	c.Set(ctx, otherTicket, noConflicts())

	got, _, ok := c.Get(ctx, testKey("room-a"))
	require.True(t, ok)
	assert.False(t, got.HasConflicts)

	require.NoError(t, c.EvictRoom(ctx, "room-a"))

	_, _, ok = c.Get(ctx, testKey("room-a"))
	assert.False(t, ok, "evicted room must miss")
	_, _, ok = c.Get(ctx, testKey("room-b"))
	assert.True(t, ok, "other rooms keep their entries")
}

func TestNearCache_StaleTicketIsDropped(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestNear(NewNoop(), time.Minute, 0)

	_, ticket, ok := c.Get(ctx, testKey("room-a"))
	require.False(t, ok)

	// The room changes while the answer is being computed.
	require.NoError(t, c.InvalidateRoom(ctx, "room-a"))
	c.Set(ctx, ticket, noConflicts())

	_, _, ok = c.Get(ctx, testKey("room-a"))
	assert.False(t, ok)
}

func TestNearCache_EntriesExpire(t *testing.T) {
	ctx := context.Background()
	c, now := newTestNear(NewNoop(), 5*time.Second, 0)

	_, ticket, _ := c.Get(ctx, testKey("room-a"))
	c.Set(ctx, ticket, noConflicts())

	*now = now.Add(4 * time.Second)
	_, _, ok := c.Get(ctx, testKey("room-a"))
	assert.True(t, ok)

	*now = now.Add(time.Second)
	_, _, ok = c.Get(ctx, testKey("room-a"))
	assert.False(t, ok)
}

func TestNearCache_BoundedPerRoom(t *testing.T) {
	ctx := context.Background()
	c, now := newTestNear(NewNoop(), time.Minute, 2)

	keys := make([]Key, 3)
	for i := range keys {
		keys[i] = testKey("room-a")
		keys[i].Start = keys[i].Start.Add(time.Duration(i) * time.Hour)
		keys[i].End = keys[i].End.Add(time.Duration(i) * time.Hour)
		_, ticket, _ := c.Get(ctx, keys[i])
		c.Set(ctx, ticket, noConflicts())
	}

	_, _, ok := c.Get(ctx, keys[2])
	assert.False(t, ok, "a full room takes no new entries")

	*now = now.Add(time.Minute)
	_, ticket, _ := c.Get(ctx, keys[2])
	c.Set(ctx, ticket, noConflicts())
	_, _, ok = c.Get(ctx, keys[2])
	assert.True(t, ok, "expired entries make room")
}

func TestNearCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestNear(NewNoop(), time.Minute, 0)

	resp := noConflicts()
	_, ticket, _ := c.Get(ctx, testKey("room-a"))
	c.Set(ctx, ticket, resp)
	resp.HasConflicts = true

	got, _, ok := c.Get(ctx, testKey("room-a"))
	require.True(t, ok)
	assert.False(t, got.HasConflicts)
	got.HasConflicts = true

	again, _, _ := c.Get(ctx, testKey("room-a"))
	assert.False(t, again.HasConflicts)
}

func redisTestClient(t *testing.T) *redis.Client {
	t.Helper()
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

// Runs against a real Redis when REDIS_TEST_URL is set.
func TestRedisCache_InvalidateRoom(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(redisTestClient(t), time.Minute, logger.Discard())
	room := "room-" + uuid.NewString()
	other := "room-" + uuid.NewString()

	resp := &model.ConflictCheckResponse{Conflicts: []*model.Booking{{ID: "b1", RoomID: room}}, HasConflicts: true}
	_, ticket, _ := c.Get(ctx, testKey(room))
	c.Set(ctx, ticket, resp)
	_, otherTicket, _ := c.Get(ctx, testKey(other))
	c.Set(ctx, otherTicket, noConflicts())

	got, _, ok := c.Get(ctx, testKey(room))
	require.True(t, ok)
	assert.True(t, got.HasConflicts)
	assert.Equal(t, "b1", got.Conflicts[0].ID)

	require.NoError(t, c.InvalidateRoom(ctx, room))

	_, _, ok = c.Get(ctx, testKey(room))
	assert.False(t, ok, "entries of an invalidated room must miss")
	_, _, ok = c.Get(ctx, testKey(other))
	assert.True(t, ok, "other rooms keep their entries")
}

func TestRedisCache_StaleTicketIsNeverServed(t *testing.T) {
	ctx := context.Background()
	c := NewRedis(redisTestClient(t), time.Minute, logger.Discard())
	room := "room-" + uuid.NewString()

	_, ticket, ok := c.Get(ctx, testKey(room))
	require.False(t, ok)

	require.NoError(t, c.InvalidateRoom(ctx, room))
	c.Set(ctx, ticket, noConflicts())

	_, _, ok = c.Get(ctx, testKey(room))
	assert.False(t, ok)
}
