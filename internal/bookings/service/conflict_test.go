package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"roomly/internal/conflicts"
	"roomly/pkg/model"
	"testing"
	"time"
)

func checkRequest(room, from, to string) *model.ConflictCheckRequest {
	return &model.ConflictCheckRequest{
		RoomID:    room,
		StartTime: at(from).Format(time.RFC3339),
		EndTime:   at(to).Format(time.RFC3339),
	}
}

func TestCheck_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		wantIDs  []string
	}{
		{name: "partial overlap", from: "10:30", to: "11:30", wantIDs: []string{"b1"}},
		{name: "adjacent after", from: "11:00", to: "12:00"},
		{name: "adjacent before", from: "09:00", to: "10:00"},
		{name: "containment", from: "09:00", to: "12:00", wantIDs: []string{"b1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))

			resp, err := f.conflicts.Check(context.Background(), checkRequest("room-a", tt.from, tt.to))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.HasConflicts != (len(tt.wantIDs) > 0) {
				t.Errorf("HasConflicts = %v, want %v", resp.HasConflicts, len(tt.wantIDs) > 0)
			}
			if len(resp.Conflicts) != len(tt.wantIDs) {
				t.Fatalf("got %d conflicts, want %d", len(resp.Conflicts), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if resp.Conflicts[i].ID != id {
					t.Errorf("conflict[%d] = %s, want %s", i, resp.Conflicts[i].ID, id)
				}
			}
		})
	}
}

func TestCheck_IncompleteIntervalIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		req  *model.ConflictCheckRequest
	}{
		{name: "missing start", req: &model.ConflictCheckRequest{RoomID: "room-a", EndTime: at("11:00").Format(time.RFC3339)}},
		{name: "missing end", req: &model.ConflictCheckRequest{RoomID: "room-a", StartTime: at("10:00").Format(time.RFC3339)}},
		{name: "unparseable", req: &model.ConflictCheckRequest{RoomID: "room-a", StartTime: "tomorrow", EndTime: "later"}},
		{name: "no room either", req: &model.ConflictCheckRequest{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))
			f.repo.overlappingFunc = func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
				t.Fatal("store must not be queried for an incomplete interval")
				return nil, nil
			}

			resp, err := f.conflicts.Check(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.HasConflicts || len(resp.Conflicts) != 0 {
				t.Errorf("expected empty result, got %+v", resp)
			}
		})
	}
}

func TestCheck_EditExcludesItself(t *testing.T) {
	f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))
	req := checkRequest("room-a", "10:00", "11:00")
	req.ExcludeBookingID = "b1"

	resp, err := f.conflicts.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.HasConflicts {
		t.Errorf("booking must not conflict with itself, got %v", resp.Conflicts)
	}
}

func TestCheck_MissingExcludedBookingWarns(t *testing.T) {
	f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))
	req := checkRequest("room-a", "10:00", "11:00")
	req.ExcludeBookingID = "gone"

	resp, err := f.conflicts.Check(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Warnings) != 1 || resp.Warnings[0] != conflicts.WarningExcludedBookingMissing {
		t.Errorf("expected missing exclusion warning, got %v", resp.Warnings)
	}
	if !resp.HasConflicts {
		t.Error("check should still run without the exclusion")
	}
	if f.cache.sets != 0 {
		t.Error("answers carrying warnings should not be cached")
	}
}

func TestCheck_Errors(t *testing.T) {
	t.Run("invalid interval", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.conflicts.Check(context.Background(), checkRequest("room-a", "11:00", "10:00"))
		wantStatus(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("duration out of bounds", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.conflicts.Check(context.Background(), checkRequest("room-a", "10:00", "10:05"))
		wantStatus(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("missing room", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.conflicts.Check(context.Background(), checkRequest("", "10:00", "11:00"))
		wantStatus(t, err, http.StatusUnprocessableEntity)
	})

	t.Run("store unavailable is retryable", func(t *testing.T) {
		f := newFixture(t)
		f.repo.overlappingFunc = func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
			return nil, errors.New("connection reset")
		}
		_, err := f.conflicts.Check(context.Background(), checkRequest("room-a", "10:00", "11:00"))
		appErr := wantStatus(t, err, http.StatusServiceUnavailable)
		if !appErr.Retryable() {
			t.Error("unavailable errors must be retryable")
		}
	})

	t.Run("room directory unavailable", func(t *testing.T) {
		f := newFixture(t)
		f.rooms.err = errors.New("timeout")
		_, err := f.conflicts.Check(context.Background(), checkRequest("room-a", "10:00", "11:00"))
		wantStatus(t, err, http.StatusServiceUnavailable)
	})
}

func TestCheck_CachedUntilRoomChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	calls := 0
	f.repo.overlappingFunc = func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
		calls++
		return nil, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := f.conflicts.Check(ctx, checkRequest("room-a", "10:00", "11:00")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("expected one store query, got %d", calls)
	}

	f.repo.overlappingFunc = nil
	if err := f.bookings.Create(ctx, newBooking("room-a", "10:00", "11:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := f.conflicts.Check(ctx, checkRequest("room-a", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.HasConflicts {
		t.Error("a write to the room must invalidate its cached answers")
	}
}

func TestCheck_WriteDuringCheckIsNotCached(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	calls := 0
	f.repo.overlappingFunc = func(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
		calls++
		if calls == 1 {
			// Another request books the room while this check is reading.
			if err := f.cache.InvalidateRoom(ctx, "room-a"); err != nil {
				t.Fatalf("InvalidateRoom() error = %v", err)
			}
			return nil, nil
		}
		return []*model.Booking{confirmed("b1", "room-a", "10:00", "11:00")}, nil
	}

	first, err := f.conflicts.Check(ctx, checkRequest("room-a", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.HasConflicts {
		t.Fatal("first check read the room before the write")
	}

	second, err := f.conflicts.Check(ctx, checkRequest("room-a", "10:00", "11:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected the second check to query the store, got %d queries", calls)
	}
	if !second.HasConflicts {
		t.Error("an answer computed before the write must not be served after it")
	}
}

// ────────────────────────────────────────────────
// Tests for Suggest()
// ────────────────────────────────────────────────

func fullDay(room string) []*model.Booking {
	var out []*model.Booking
	for h := 8; h < 18; h++ {
		from := time.Date(2000, 1, 1, h, 0, 0, 0, time.UTC).Format("15:04")
		to := time.Date(2000, 1, 1, h+1, 0, 0, 0, time.UTC).Format("15:04")
		out = append(out, confirmed("full-"+from, room, from, to))
	}
	return out
}

func TestSuggest_FullDayMovesToNextDay(t *testing.T) {
	f := newFixture(t, fullDay("room-a")...)

	resp, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{
		RoomID:    "room-a",
		StartTime: at("09:00"),
		EndTime:   at("10:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Available {
		t.Fatal("expected a slot on the next day")
	}
	next := testDay.AddDate(0, 0, 1)
	if !resp.Start.Equal(atOn(next, "09:00")) || !resp.End.Equal(atOn(next, "10:00")) {
		t.Errorf("got %v - %v, want 09:00-10:00 on %s", resp.Start, resp.End, next.Format(time.DateOnly))
	}
}

func TestSuggest_SameDay(t *testing.T) {
	f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))

	resp, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{
		RoomID:    "room-a",
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Available || !resp.Start.Equal(at("11:00")) {
		t.Errorf("expected 11:00, got %+v", resp)
	}
}

func TestSuggest_UsesRoomHours(t *testing.T) {
	f := newFixture(t, confirmed("b1", "room-a", "10:00", "11:00"))
	room := f.rooms.rooms["room-a"]
	room.OpenAt, room.CloseAt = "10:00", "11:00"

	resp, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{
		RoomID:    "room-a",
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next := testDay.AddDate(0, 0, 1)
	if !resp.Available || !resp.Start.Equal(atOn(next, "10:00")) {
		t.Errorf("expected 10:00 next day inside room hours, got %+v", resp)
	}
}

func TestSuggest_LongerThanRoomHours(t *testing.T) {
	f := newFixture(t)
	room := f.rooms.rooms["room-a"]
	room.OpenAt, room.CloseAt = "10:00", "10:30"

	resp, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{
		RoomID:    "room-a",
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next := testDay.AddDate(0, 0, 1)
	if !resp.Available || !resp.Start.Equal(atOn(next, "10:00")) || !resp.End.Equal(atOn(next, "11:00")) {
		t.Errorf("expected 10:00-11:00 next day, got %+v", resp)
	}
}

func TestSuggest_NothingFreeWithinLookahead(t *testing.T) {
	var busy []*model.Booking
	for i := 0; i <= 7; i++ {
		d := testDay.AddDate(0, 0, i)
		b := confirmed(fmt.Sprintf("all-day-%d", i), "room-a", "08:00", "18:00")
		b.StartTime, b.EndTime = atOn(d, "08:00"), atOn(d, "18:00")
		busy = append(busy, b)
	}
	f := newFixture(t, busy...)

	resp, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{
		RoomID:    "room-a",
		StartTime: at("10:00"),
		EndTime:   at("11:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Available || resp.Start != nil {
		t.Errorf("expected no slot, got %+v", resp)
	}
}

func TestSuggest_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.conflicts.Suggest(context.Background(), &model.SuggestRequest{StartTime: at("10:00"), EndTime: at("11:00")})
	wantStatus(t, err, http.StatusUnprocessableEntity)

	_, err = f.conflicts.Suggest(context.Background(), &model.SuggestRequest{RoomID: "room-a", StartTime: at("11:00"), EndTime: at("10:00")})
	wantStatus(t, err, http.StatusUnprocessableEntity)
}
