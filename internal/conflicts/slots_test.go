package conflicts

import (
	"roomly/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slotQuery(start, end string, bookings ...*model.Booking) SlotQuery {
	return SlotQuery{
		Candidate: Interval{Start: at(start), End: at(end)},
		Bookings:  bookings,
		Hours:     DefaultOperatingHours(),
		Step:      DefaultStep,
	}
}

func TestNextAvailableSlot_SameDay(t *testing.T) {
	tests := []struct {
		name      string
		query     SlotQuery
		wantStart string
	}{
		{
			name:      "empty day takes first later step",
			query:     slotQuery("10:00", "11:00"),
			wantStart: "10:30",
		},
		{
			name:      "unaligned candidate",
			query:     slotQuery("10:10", "10:40"),
			wantStart: "10:30",
		},
		{
			name:      "adjacent slot after conflict",
			query:     slotQuery("10:30", "11:30", booking("b1", "10:00", "11:00")),
			wantStart: "11:00",
		},
		{
			name: "skips busy steps",
			query: slotQuery("09:00", "10:00",
				booking("b1", "09:00", "10:00"),
				booking("b2", "10:00", "12:00"),
			),
			wantStart: "12:00",
		},
		{
			name:      "before opening",
			query:     slotQuery("06:00", "07:00"),
			wantStart: "08:00",
		},
		{
			name: "pending and cancelled ignored",
			query: slotQuery("09:00", "10:00",
				withStatus(booking("p", "09:30", "10:30"), model.StatusPending),
				withStatus(booking("c", "09:30", "10:30"), model.StatusCancelled),
			),
			wantStart: "09:30",
		},
		{
			name: "excluded booking ignored",
			query: func() SlotQuery {
				q := slotQuery("09:00", "10:00", booking("self", "09:30", "10:30"))
				q.ExcludeBookingID = "self"
				return q
			}(),
			wantStart: "09:30",
		},
		{
			name:      "ends exactly at closing",
			query:     slotQuery("16:00", "17:30", booking("b1", "16:00", "16:30")),
			wantStart: "16:30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, ok := NextAvailableSlot(tt.query)
			require.True(t, ok)
			assert.True(t, slot.Start.Equal(at(tt.wantStart)), "got %s", slot)
			assert.Equal(t, tt.query.Candidate.Duration(), slot.Duration())
			assert.True(t, slot.Start.After(tt.query.Candidate.Start))
		})
	}
}

func TestNextAvailableSlot_NextDay(t *testing.T) {
	next := day.AddDate(0, 0, 1)

	t.Run("same time next day", func(t *testing.T) {
		q := slotQuery("09:00", "10:00", fullDay(day)...)
		slot, ok := NextAvailableSlot(q)
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next, "09:00")), "got %s", slot)
		assert.True(t, slot.End.Equal(atOn(next, "10:00")))
	})

	t.Run("next day is checked for conflicts", func(t *testing.T) {
		bookings := append(fullDay(day), &model.Booking{
			ID: "n1", RoomID: "room-1", Status: model.StatusConfirmed,
			StartTime: atOn(next, "09:00"), EndTime: atOn(next, "10:00"),
		})
		slot, ok := NextAvailableSlot(slotQuery("09:00", "10:00", bookings...))
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next, "08:00")), "got %s", slot)
	})

	t.Run("late candidate falls back to opening", func(t *testing.T) {
		slot, ok := NextAvailableSlot(slotQuery("17:30", "18:30"))
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next, "08:00")), "got %s", slot)
	})

	t.Run("lookahead exhausted", func(t *testing.T) {
		var bookings []*model.Booking
		for i := 0; i <= DefaultLookaheadDays; i++ {
			bookings = append(bookings, fullDay(day.AddDate(0, 0, i))...)
		}
		q := slotQuery("09:00", "10:00", bookings...)
		q.LookaheadDays = DefaultLookaheadDays
		_, ok := NextAvailableSlot(q)
		assert.False(t, ok)
	})
}

func TestNextAvailableSlot_EndsAtClosing(t *testing.T) {
	slot, ok := NextAvailableSlot(slotQuery("16:30", "17:30"))
	require.True(t, ok)
	assert.True(t, slot.Start.Equal(at("17:00")), "got %s", slot)
	assert.True(t, slot.End.Equal(at("18:00")), "got %s", slot)
}

func TestNextAvailableSlot_WindowTooShort(t *testing.T) {
	hours, err := ParseOperatingHours("08:00", "10:00", "UTC")
	require.NoError(t, err)
	next := day.AddDate(0, 0, 1)

	t.Run("next day at opening", func(t *testing.T) {
		q := slotQuery("08:00", "11:00")
		q.Hours = hours
		slot, ok := NextAvailableSlot(q)
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next, "08:00")), "got %s", slot)
		assert.True(t, slot.End.Equal(atOn(next, "11:00")), "got %s", slot)
	})

	t.Run("one hour window, two hour meeting", func(t *testing.T) {
		short, err := ParseOperatingHours("09:00", "10:00", "UTC")
		require.NoError(t, err)
		q := slotQuery("09:00", "11:00")
		q.Hours = short
		slot, ok := NextAvailableSlot(q)
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next, "09:00")), "got %s", slot)
		assert.True(t, slot.End.Equal(atOn(next, "11:00")), "got %s", slot)
	})

	t.Run("conflicting day is skipped", func(t *testing.T) {
		q := slotQuery("08:00", "11:00", &model.Booking{
			ID: "n1", RoomID: "room-1", Status: model.StatusConfirmed,
			StartTime: atOn(next, "10:30"), EndTime: atOn(next, "11:30"),
		})
		q.Hours = hours
		slot, ok := NextAvailableSlot(q)
		require.True(t, ok)
		assert.True(t, slot.Start.Equal(atOn(next.AddDate(0, 0, 1), "08:00")), "got %s", slot)
	})

	t.Run("lookahead exhausted", func(t *testing.T) {
		var bookings []*model.Booking
		for i := 1; i <= 2; i++ {
			d := day.AddDate(0, 0, i)
			bookings = append(bookings, &model.Booking{
				ID: d.Format("0102"), RoomID: "room-1", Status: model.StatusConfirmed,
				StartTime: atOn(d, "08:00"), EndTime: atOn(d, "09:00"),
			})
		}
		q := slotQuery("08:00", "11:00", bookings...)
		q.Hours = hours
		q.LookaheadDays = 2
		_, ok := NextAvailableSlot(q)
		assert.False(t, ok)
	})
}

func TestNextAvailableSlot_RespectsLocation(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)
	hours, err := ParseOperatingHours("08:00", "18:00", "Europe/Berlin")
	require.NoError(t, err)

	start := time.Date(2030, time.March, 4, 17, 0, 0, 0, loc)
	q := SlotQuery{
		Candidate: Interval{Start: start, End: start.Add(2 * time.Hour)},
		Hours:     hours,
		Step:      30 * time.Minute,
	}

	slot, ok := NextAvailableSlot(q)
	require.True(t, ok)
	assert.True(t, slot.Start.Equal(time.Date(2030, time.March, 5, 8, 0, 0, 0, loc)), "got %s", slot)
}

func TestNextAvailableSlot_DurationAndOrderProperties(t *testing.T) {
	busy := []*model.Booking{
		booking("b1", "08:00", "09:30"),
		booking("b2", "11:00", "12:00"),
		booking("b3", "13:30", "17:00"),
	}
	for _, minutes := range []int{15, 30, 45, 60, 90, 120, 240} {
		for _, start := range []string{"08:00", "09:15", "10:30", "12:45", "16:00"} {
			s := at(start)
			q := SlotQuery{
				Candidate: Interval{Start: s, End: s.Add(time.Duration(minutes) * time.Minute)},
				Bookings:  busy,
				Hours:     DefaultOperatingHours(),
				Step:      DefaultStep,
			}
			slot, ok := NextAvailableSlot(q)
			require.True(t, ok, "start %s duration %dm", start, minutes)
			assert.Equal(t, q.Candidate.Duration(), slot.Duration())
			assert.True(t, slot.Start.After(q.Candidate.Start))
			assert.Empty(t, Filter(busy, slot, ""), "suggested %s collides", slot)
		}
	}
}
