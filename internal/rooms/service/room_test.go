package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"strings"
	"sync"
	"testing"
	"time"
)

// ────────────────────────────────────────────────
// Mock repository for testing
// ────────────────────────────────────────────────

type mockRoomRepository struct {
	mu     sync.Mutex
	rooms  map[string]*model.Room
	nextID int

	findAllFunc func(ctx context.Context, limit int, offset int64) ([]*model.Room, error)
	countFunc   func(ctx context.Context) (int64, error)
}

func newMockRepo() *mockRoomRepository {
	return &mockRoomRepository{rooms: map[string]*model.Room{}}
}

func (m *mockRoomRepository) nameTaken(name, exceptID string) bool {
	for id, r := range m.rooms {
		if id != exceptID && strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func (m *mockRoomRepository) Create(_ context.Context, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nameTaken(room.Name, "") {
		return roomserrors.ErrDuplicateName
	}
	m.nextID++
	room.ID = fmt.Sprintf("room-%d", m.nextID)
	stored := *room
	m.rooms[room.ID] = &stored
	return nil
}

func (m *mockRoomRepository) FindByID(_ context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id == "bad-id" {
		return nil, roomserrors.ErrInvalidID
	}
	r, ok := m.rooms[id]
	if !ok {
		return nil, roomserrors.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockRoomRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Room, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Room{}, nil
}

func (m *mockRoomRepository) Update(_ context.Context, id string, room *model.Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	if m.nameTaken(room.Name, id) {
		return roomserrors.ErrDuplicateName
	}
	stored := *room
	m.rooms[id] = &stored
	return nil
}

func (m *mockRoomRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[id]; !ok {
		return roomserrors.ErrNotFound
	}
	delete(m.rooms, id)
	return nil
}

func (m *mockRoomRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return int64(len(m.rooms)), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:             logger.Discard(),
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		DefaultOpenAt:   "08:00",
		DefaultCloseAt:  "18:00",
		DefaultTimeZone: "UTC",
		SlotStep:        30 * time.Minute,
	}
}

func newTestService(repo *mockRoomRepository) RoomService {
	cfg := testConfig()
	return NewRoomService(repo, validator.NewRoomValidator(cfg.Log), cfg)
}

func wantStatus(t *testing.T, err error, status int) {
	t.Helper()
	appErr := apperrors.AsAppError(err)
	if appErr == nil {
		t.Fatalf("expected AppError with status %d, got %v", status, err)
	}
	if appErr.StatusCode() != status {
		t.Fatalf("status = %d, want %d (%v)", appErr.StatusCode(), status, err)
	}
}

// ────────────────────────────────────────────────
// Tests for Create()
// ────────────────────────────────────────────────

func TestCreate_AppliesDefaultsAndNormalizes(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)

	room := &model.Room{
		Name:     "  Focus   room ",
		Capacity: 4,
		OpenAt:   "9:00",
		TimeZone: "utc",
	}
	if err := svc.Create(context.Background(), room); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := repo.rooms[room.ID]
	if stored == nil {
		t.Fatal("room was not stored")
	}
	if stored.Name != "Focus room" {
		t.Errorf("name = %q", stored.Name)
	}
	if stored.OpenAt != "09:00" || stored.CloseAt != "18:00" {
		t.Errorf("hours = %s-%s, want 09:00-18:00", stored.OpenAt, stored.CloseAt)
	}
	if stored.TimeZone != "UTC" || stored.SlotStepMin != 30 {
		t.Errorf("zone = %s step = %d", stored.TimeZone, stored.SlotStepMin)
	}
	if !stored.Active {
		t.Error("new rooms should be active")
	}
}

func TestCreate_Errors(t *testing.T) {
	tests := []struct {
		name       string
		room       *model.Room
		wantStatus int
	}{
		{
			name:       "close before open",
			room:       &model.Room{Name: "Late", Capacity: 2, OpenAt: "18:00", CloseAt: "09:00"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown zone",
			room:       &model.Room{Name: "Away", Capacity: 2, TimeZone: "Nowhere/Else"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "duplicate name",
			room:       &model.Room{Name: "boardroom", Capacity: 2},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockRepo()
			svc := newTestService(repo)
			if err := svc.Create(context.Background(), &model.Room{Name: "Boardroom", Capacity: 10}); err != nil {
				t.Fatalf("seed: %v", err)
			}

			err := svc.Create(context.Background(), tt.room)
			wantStatus(t, err, tt.wantStatus)
		})
	}
}

// ────────────────────────────────────────────────
// Tests for GetByID(), Update() and Delete()
// ────────────────────────────────────────────────

func TestGetByID_Errors(t *testing.T) {
	svc := newTestService(newMockRepo())

	_, err := svc.GetByID(context.Background(), "  ")
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.GetByID(context.Background(), "bad-id")
	wantStatus(t, err, http.StatusBadRequest)

	_, err = svc.GetByID(context.Background(), "missing")
	wantStatus(t, err, http.StatusNotFound)
}

func TestUpdate(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	room := &model.Room{Name: "Boardroom", Capacity: 10}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("seed: %v", err)
	}
	other := &model.Room{Name: "Library", Capacity: 6}
	if err := svc.Create(ctx, other); err != nil {
		t.Fatalf("seed: %v", err)
	}

	inactive := false
	updated, err := svc.Update(ctx, room.ID, &model.RoomUpdate{CloseAt: "20:00", Active: &inactive})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.CloseAt != "20:00" || updated.OpenAt != "08:00" || updated.Active {
		t.Errorf("unexpected room %+v", updated)
	}

	t.Run("merged hours are checked", func(t *testing.T) {
		_, err := svc.Update(ctx, room.ID, &model.RoomUpdate{OpenAt: "21:00"})
		wantStatus(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("rename onto another room", func(t *testing.T) {
		_, err := svc.Update(ctx, room.ID, &model.RoomUpdate{Name: "Library"})
		wantStatus(t, err, http.StatusConflict)
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := svc.Update(ctx, "missing", &model.RoomUpdate{Name: "Nope"})
		wantStatus(t, err, http.StatusNotFound)
	})
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	room := &model.Room{Name: "Boardroom", Capacity: 10}
	if err := svc.Create(ctx, room); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.Delete(ctx, room.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantStatus(t, svc.Delete(ctx, room.ID), http.StatusNotFound)
}

// ────────────────────────────────────────────────
// Tests for GetAll()
// ────────────────────────────────────────────────

func TestGetAll_ConcurrentAccess(t *testing.T) {
	var mu sync.Mutex
	calls := map[string]int{}
	repo := newMockRepo()
	repo.countFunc = func(context.Context) (int64, error) {
		mu.Lock()
		calls["count"]++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return 42, nil
	}
	repo.findAllFunc = func(_ context.Context, limit int, offset int64) ([]*model.Room, error) {
		mu.Lock()
		calls["find"]++
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		return []*model.Room{{ID: "r1"}}, nil
	}
	svc := newTestService(repo)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rooms, total, err := svc.GetAll(context.Background(), 10, 0)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if total != 42 || len(rooms) != 1 {
				t.Errorf("got %d rooms total %d", len(rooms), total)
			}
		}()
	}
	wg.Wait()

	if calls["count"] != 5 || calls["find"] != 5 {
		t.Errorf("calls = %v", calls)
	}
}

func TestGetAll_PropagatesErrors(t *testing.T) {
	repo := newMockRepo()
	repo.countFunc = func(context.Context) (int64, error) {
		return 0, errors.New("count failed")
	}
	svc := newTestService(repo)

	_, _, err := svc.GetAll(context.Background(), 10, 0)
	wantStatus(t, err, http.StatusInternalServerError)
}
