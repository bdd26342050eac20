//go:build integration

package integrationtests

import (
	"context"
	"net/http"
	"roomly/pkg/client"
	"roomly/pkg/model"
	"roomly/test/common"
	"sync"
	"testing"
	"time"
)

const ServiceName = "bookings-integration-tests"

func book(t *testing.T, s *common.IntegrationTestSuite, roomID string, start, end time.Time) *model.Booking {
	t.Helper()
	b, err := s.Bookings.Create(context.Background(), &model.Booking{
		RoomID:    roomID,
		Title:     "Integration sync",
		Organizer: "Integration",
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	return b
}

func checkRequest(roomID string, start, end time.Time) model.ConflictCheckRequest {
	return model.ConflictCheckRequest{
		RoomID:    roomID,
		StartTime: start.Format(time.RFC3339),
		EndTime:   end.Format(time.RFC3339),
	}
}

func TestBookingConflicts(t *testing.T) {
	s := common.NewIntegrationTestSuite(t, ServiceName)
	common.ClearBookings(t, s.Bookings)
	ctx := context.Background()
	day := common.FutureDay()

	t.Run("overlap and adjacency", func(t *testing.T) {
		room := common.CreateRoom(t, s.Rooms, "Overlap")
		book(t, s, room.ID, common.At(day, 10, 0), common.At(day, 11, 0))

		tests := []struct {
			name         string
			start, end   time.Time
			wantConflict bool
		}{
			{name: "partial overlap", start: common.At(day, 10, 30), end: common.At(day, 11, 30), wantConflict: true},
			{name: "adjacent after", start: common.At(day, 11, 0), end: common.At(day, 12, 0)},
			{name: "adjacent before", start: common.At(day, 9, 0), end: common.At(day, 10, 0)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := s.Bookings.CheckConflicts(ctx, checkRequest(room.ID, tt.start, tt.end))
				if err != nil {
					t.Fatalf("check failed: %v", err)
				}
				if resp.HasConflicts != tt.wantConflict {
					t.Errorf("HasConflicts = %v, want %v (%v)", resp.HasConflicts, tt.wantConflict, resp.Conflicts)
				}
			})
		}
	})

	t.Run("edit in place excludes itself", func(t *testing.T) {
		room := common.CreateRoom(t, s.Rooms, "Edit")
		b := book(t, s, room.ID, common.At(day, 14, 0), common.At(day, 15, 0))

		req := checkRequest(room.ID, b.StartTime, b.EndTime)
		req.ExcludeBookingID = b.ID
		resp, err := s.Bookings.CheckConflicts(ctx, req)
		if err != nil {
			t.Fatalf("check failed: %v", err)
		}
		if resp.HasConflicts {
			t.Errorf("booking conflicts with itself: %v", resp.Conflicts)
		}

		title := "Renamed sync"
		if err := s.Bookings.Update(ctx, b.ID, &model.BookingUpdate{Title: title}); err != nil {
			t.Fatalf("in-place update rejected: %v", err)
		}
	})

	t.Run("full day suggests next morning", func(t *testing.T) {
		room := common.CreateRoom(t, s.Rooms, "Full")
		for h := 8; h < 18; h++ {
			book(t, s, room.ID, common.At(day, h, 0), common.At(day, h+1, 0))
		}

		resp, err := s.Bookings.SuggestNextSlot(ctx, model.SuggestRequest{
			RoomID:    room.ID,
			StartTime: common.At(day, 9, 0),
			EndTime:   common.At(day, 10, 0),
		})
		if err != nil {
			t.Fatalf("suggest failed: %v", err)
		}
		next := day.AddDate(0, 0, 1)
		if !resp.Available || !resp.Start.Equal(common.At(next, 9, 0)) {
			t.Errorf("got %+v, want 09:00 on %s", resp, next.Format(time.DateOnly))
		}
	})

	t.Run("concurrent creates admit one booking", func(t *testing.T) {
		room := common.CreateRoom(t, s.Rooms, "Race")
		const attempts = 8

		var wg sync.WaitGroup
		var mu sync.Mutex
		created, rejected := 0, 0
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Bookings.Create(ctx, &model.Booking{
					RoomID:    room.ID,
					Title:     "Race",
					Organizer: "Integration",
					StartTime: common.At(day, 16, 0),
					EndTime:   common.At(day, 17, 0),
				})
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					created++
				case client.IsStatus(err, http.StatusConflict):
					rejected++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}()
		}
		wg.Wait()

		if created != 1 || rejected != attempts-1 {
			t.Errorf("created=%d rejected=%d, want 1/%d", created, rejected, attempts-1)
		}
	})
}
