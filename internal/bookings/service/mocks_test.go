package service

import (
	"context"
	"fmt"
	"roomly/internal/bookings/cache"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/internal/conflicts"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/pkg/config"
	"roomly/pkg/db"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"sync"
	"testing"
	"time"
)

// ────────────────────────────────────────────────
// Mock repositories for testing
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int

	createFunc      func(ctx context.Context, booking *model.Booking) error
	overlappingFunc func(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error)
	countFunc       func(ctx context.Context) (int64, error)
	findAllFunc     func(ctx context.Context, limit int, offset int64) ([]*model.Booking, error)
	transactions    int
}

func newMockRepo(existing ...*model.Booking) *mockBookingRepository {
	r := &mockBookingRepository{bookings: map[string]*model.Booking{}}
	for _, b := range existing {
		r.bookings[b.ID] = b
	}
	return r
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, booking); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	booking.ID = fmt.Sprintf("new-%d", m.nextID)
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *mockBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "bad-id" {
		return nil, bookingserrors.ErrInvalidID
	}
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Booking{}, nil
}

func (m *mockBookingRepository) Update(_ context.Context, id string, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	stored := *booking
	m.bookings[id] = &stored
	return nil
}

func (m *mockBookingRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.bookings[id]; !ok {
		return bookingserrors.ErrNotFound
	}
	delete(m.bookings, id)
	return nil
}

func (m *mockBookingRepository) Search(ctx context.Context, search model.BookingSearch) ([]*model.Booking, error) {
	from, to := time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if search.StartTime != nil {
		from = *search.StartTime
	}
	if search.EndTime != nil {
		to = *search.EndTime
	}
	return m.FindOverlapping(ctx, search.RoomID, from, to)
}

func (m *mockBookingRepository) CountSearch(ctx context.Context, search model.BookingSearch) (int64, error) {
	found, err := m.Search(ctx, search)
	return int64(len(found)), err
}

func (m *mockBookingRepository) FindOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	if m.overlappingFunc != nil {
		return m.overlappingFunc(ctx, roomID, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.StartTime.Before(to) && b.EndTime.After(from) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return int64(len(m.bookings)), nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn db.TransactionFunc) error {
	m.transactions++
	return fn(ctx)
}

type mockLockRepository struct {
	acquireErr error
	acquired   []string
	released   []string
}

func (m *mockLockRepository) Acquire(_ context.Context, lock *model.BookingLock) error {
	if m.acquireErr != nil {
		return m.acquireErr
	}
	m.acquired = append(m.acquired, lock.ID)
	return nil
}

func (m *mockLockRepository) Release(_ context.Context, lockID, _ string) error {
	m.released = append(m.released, lockID)
	return nil
}

type mockRoomLookup struct {
	rooms map[string]*model.Room
	err   error
}

func (m *mockRoomLookup) FindByID(_ context.Context, id string) (*model.Room, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	return r, nil
}

type mockPublisher struct {
	events []*model.BookingEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event *model.BookingEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func (m *mockPublisher) Close() error { return nil }

// mockCache mirrors the generation scheme of the Redis cache: a write bumps
// the room generation and entries are keyed under the generation Get saw.
type mockCache struct {
	entries     map[string]*model.ConflictCheckResponse
	gens        map[string]int64
	invalidated []string
	evicted     []string
	sets        int
}

func newMockCache() *mockCache {
	return &mockCache{
		entries: map[string]*model.ConflictCheckResponse{},
		gens:    map[string]int64{},
	}
}

func mockEntryKey(key cache.Key, gen int64) string {
	return fmt.Sprintf("%s:%d:%s", key.RoomID, gen, key)
}

func (m *mockCache) Get(_ context.Context, key cache.Key) (*model.ConflictCheckResponse, cache.Ticket, bool) {
	gen := m.gens[key.RoomID]
	r, ok := m.entries[mockEntryKey(key, gen)]
	return r, cache.Ticket{Key: key, Generation: gen}, ok
}

func (m *mockCache) Set(_ context.Context, t cache.Ticket, resp *model.ConflictCheckResponse) {
	m.sets++
	m.entries[mockEntryKey(t.Key, t.Generation)] = resp
}

func (m *mockCache) InvalidateRoom(_ context.Context, roomID string) error {
	m.invalidated = append(m.invalidated, roomID)
	m.gens[roomID]++
	return nil
}

func (m *mockCache) EvictRoom(_ context.Context, roomID string) error {
	m.evicted = append(m.evicted, roomID)
	return nil
}

// ────────────────────────────────────────────────
// Fixtures
// ────────────────────────────────────────────────

var testDay = time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	return atOn(testDay, hhmm)
}

func atOn(day time.Time, hhmm string) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		panic(err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func confirmed(id, room, from, to string) *model.Booking {
	return &model.Booking{
		ID:        id,
		RoomID:    room,
		Title:     "Meeting " + id,
		Organizer: "Dana",
		StartTime: at(from),
		EndTime:   at(to),
		Status:    model.StatusConfirmed,
	}
}

func activeRoom(id string) *model.Room {
	return &model.Room{
		ID:          id,
		Name:        "Room " + id,
		Capacity:    8,
		OpenAt:      "08:00",
		CloseAt:     "18:00",
		TimeZone:    "UTC",
		SlotStepMin: 30,
		Active:      true,
	}
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		ReadTimeout:        5 * time.Second,
		WriteTimeout:       5 * time.Second,
		MinBookingDuration: conflicts.DefaultMinDuration,
		MaxBookingDuration: conflicts.DefaultMaxDuration,
		DefaultOpenAt:      "08:00",
		DefaultCloseAt:     "18:00",
		DefaultTimeZone:    "UTC",
		SlotStep:           30 * time.Minute,
		SlotLookaheadDays:  7,
		BookingLockTTL:     10 * time.Second,
	}
}

type fixture struct {
	repo      *mockBookingRepository
	locks     *mockLockRepository
	rooms     *mockRoomLookup
	cache     *mockCache
	publisher *mockPublisher
	bookings  BookingService
	conflicts ConflictService
}

func newFixture(t *testing.T, existing ...*model.Booking) *fixture {
	t.Helper()
	cfg := testConfig()
	opts, err := NewCheckerOptions(cfg)
	if err != nil {
		t.Fatalf("NewCheckerOptions() error = %v", err)
	}

	f := &fixture{
		repo:      newMockRepo(existing...),
		locks:     &mockLockRepository{},
		rooms:     &mockRoomLookup{rooms: map[string]*model.Room{"room-a": activeRoom("room-a"), "room-b": activeRoom("room-b")}},
		cache:     newMockCache(),
		publisher: &mockPublisher{},
	}
	deps := Dependencies{
		Repo:      f.repo,
		LockRepo:  f.locks,
		Rooms:     f.rooms,
		Checker:   conflicts.NewChecker(repository.NewConflictSource(f.repo), opts),
		Validator: validator.NewBookingValidator(cfg.Log, opts.Bounds),
		Cache:     f.cache,
		Publisher: f.publisher,
	}
	f.bookings = NewBookingService(deps, cfg)
	f.conflicts = NewConflictService(deps, cfg)
	return f
}
