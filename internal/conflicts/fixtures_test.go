package conflicts

import (
	"context"
	"fmt"
	"roomly/pkg/model"
	"time"
)

var day = time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	return atOn(day, hhmm)
}

func atOn(d time.Time, hhmm string) time.Time {
	offset, err := ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return clockOn(d, offset)
}

func booking(id, from, to string) *model.Booking {
	return &model.Booking{
		ID:        id,
		RoomID:    "room-1",
		StartTime: at(from),
		EndTime:   at(to),
		Status:    model.StatusConfirmed,
	}
}

func withStatus(b *model.Booking, s model.BookingStatus) *model.Booking {
	b.Status = s
	return b
}

// fullDay books the whole default operating window of d in 30 minute blocks.
func fullDay(d time.Time) []*model.Booking {
	var out []*model.Booking
	for start := atOn(d, "08:00"); start.Before(atOn(d, "18:00")); start = start.Add(30 * time.Minute) {
		out = append(out, &model.Booking{
			ID:        fmt.Sprintf("blk-%s", start.Format("0102-1504")),
			RoomID:    "room-1",
			StartTime: start,
			EndTime:   start.Add(30 * time.Minute),
			Status:    model.StatusConfirmed,
		})
	}
	return out
}

type fakeSource struct {
	bookings  []*model.Booking
	err       error
	byIDErr   error
	calls     int
	lastRoom  string
	lastFrom  time.Time
	lastTo    time.Time
	byIDCalls int
}

func (f *fakeSource) BookingsOverlapping(_ context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	f.calls++
	f.lastRoom, f.lastFrom, f.lastTo = roomID, from, to
	if f.err != nil {
		return nil, f.err
	}
	window := Interval{Start: from, End: to}
	var out []*model.Booking
	for _, b := range f.bookings {
		if b.RoomID == roomID && Overlaps(window, BookingInterval(b)) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeSource) BookingByID(_ context.Context, id string) (*model.Booking, error) {
	f.byIDCalls++
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, fmt.Errorf("lookup %s: %w", id, ErrBookingNotFound)
}

func fixedNow() time.Time {
	return time.Date(2030, time.March, 1, 12, 0, 0, 0, time.UTC)
}

func newTestChecker(src BookingSource) *Checker {
	opts := DefaultOptions()
	opts.Now = fixedNow
	return NewChecker(src, opts)
}
