package common

import (
	"context"
	"fmt"
	"roomly/pkg/client"
	"roomly/pkg/model"
	"testing"
	"time"
)

// ClearBookings deletes every booking the service returns, page by page.
func ClearBookings(t *testing.T, bookings *client.BookingClient) {
	t.Helper()
	ctx := context.Background()

	for {
		page, meta, err := bookings.GetAll(ctx, 100, 0)
		if err != nil {
			t.Fatalf("failed to list bookings: %v", err)
		}
		if len(page) == 0 || meta.TotalCount == 0 {
			return
		}
		for _, b := range page {
			if err := bookings.Delete(ctx, b.ID); err != nil && !client.IsStatus(err, 404) {
				t.Fatalf("failed to delete booking %s: %v", b.ID, err)
			}
		}
	}
}

// CreateRoom registers a room open 08:00-18:00 UTC with a unique name.
func CreateRoom(t *testing.T, rooms *client.RoomClient, prefix string) *model.Room {
	t.Helper()

	room, err := rooms.Create(context.Background(), &model.Room{
		Name:        fmt.Sprintf("%s %d", prefix, time.Now().UnixNano()),
		Capacity:    8,
		OpenAt:      "08:00",
		CloseAt:     "18:00",
		TimeZone:    "UTC",
		SlotStepMin: 30,
	})
	if err != nil {
		t.Fatalf("failed to create room: %v", err)
	}
	t.Cleanup(func() {
		_ = rooms.Delete(context.Background(), room.ID)
	})
	return room
}

// FutureDay returns midnight UTC a month from now, clear of the past-start rule.
func FutureDay() time.Time {
	d := time.Now().UTC().AddDate(0, 1, 0)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func At(day time.Time, hour, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
}
