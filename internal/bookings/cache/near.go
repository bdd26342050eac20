package cache

import (
	"context"
	"roomly/pkg/model"
	"sync"
	"time"
)

const DefaultNearEntriesPerRoom = 256

type nearEntry struct {
	resp    *model.ConflictCheckResponse
	expires time.Time
}

type nearRoom struct {
	gen     int64
	entries map[string]nearEntry
}

type nearCache struct {
	remote     ConflictCache
	ttl        time.Duration
	maxPerRoom int
	now        func() time.Time

	mu    sync.Mutex
	rooms map[string]*nearRoom
}

// NewNear puts an in-process tier in front of remote. Writes made by other
// instances only reach the tier through EvictRoom, so wire it to the booking
// event stream. A non-positive ttl disables the tier.
func NewNear(remote ConflictCache, ttl time.Duration, maxPerRoom int) ConflictCache {
	if ttl <= 0 {
		return remote
	}
	if maxPerRoom <= 0 {
		maxPerRoom = DefaultNearEntriesPerRoom
	}
	return &nearCache{
		remote:     remote,
		ttl:        ttl,
		maxPerRoom: maxPerRoom,
		now:        time.Now,
		rooms:      make(map[string]*nearRoom),
	}
}

func (c *nearCache) room(roomID string) *nearRoom {
	r, ok := c.rooms[roomID]
	if !ok {
		r = &nearRoom{entries: make(map[string]nearEntry)}
		c.rooms[roomID] = r
	}
	return r
}

func (c *nearCache) lookup(key Key) (*model.ConflictCheckResponse, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.room(key.RoomID)
	e, ok := r.entries[key.String()]
	if !ok {
		return nil, r.gen, false
	}
	if !c.now().Before(e.expires) {
		delete(r.entries, key.String())
		return nil, r.gen, false
	}
	cp := *e.resp
	return &cp, r.gen, true
}

// store drops the answer when the room was evicted after gen was read.
func (c *nearCache) store(key Key, gen int64, resp *model.ConflictCheckResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.room(key.RoomID)
	if r.gen != gen {
		return
	}
	now := c.now()
	if len(r.entries) >= c.maxPerRoom {
		for k, e := range r.entries {
			if !now.Before(e.expires) {
				delete(r.entries, k)
			}
		}
		if len(r.entries) >= c.maxPerRoom {
			return
		}
	}
	cp := *resp
	r.entries[key.String()] = nearEntry{resp: &cp, expires: now.Add(c.ttl)}
}

func (c *nearCache) evict(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := c.room(roomID)
	r.gen++
	clear(r.entries)
}

func (c *nearCache) Get(ctx context.Context, key Key) (*model.ConflictCheckResponse, Ticket, bool) {
	resp, gen, ok := c.lookup(key)
	if ok {
		return resp, Ticket{Key: key, local: gen}, true
	}

	resp, ticket, ok := c.remote.Get(ctx, key)
	ticket.local = gen
	if ok {
		c.store(key, gen, resp)
	}
	return resp, ticket, ok
}

func (c *nearCache) Set(ctx context.Context, t Ticket, resp *model.ConflictCheckResponse) {
	c.remote.Set(ctx, t, resp)
	c.store(t.Key, t.local, resp)
}

func (c *nearCache) InvalidateRoom(ctx context.Context, roomID string) error {
	c.evict(roomID)
	return c.remote.InvalidateRoom(ctx, roomID)
}

func (c *nearCache) EvictRoom(ctx context.Context, roomID string) error {
	c.evict(roomID)
	return c.remote.EvictRoom(ctx, roomID)
}
