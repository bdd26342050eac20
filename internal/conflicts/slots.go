package conflicts

import (
	"roomly/pkg/model"
	"time"
)

// SlotQuery is the input of NextAvailableSlot. Bookings should cover the
// candidate's day and the lookahead days; statuses other than confirmed and
// the excluded booking are ignored.
type SlotQuery struct {
	Candidate        Interval
	Bookings         []*model.Booking
	ExcludeBookingID string
	Hours            OperatingHours
	Step             time.Duration
	LookaheadDays    int
}

// NextAvailableSlot returns the earliest free interval of the candidate's
// duration that starts strictly after the candidate.
//
// The candidate's own day is scanned in Step increments from opening time.
// Each following day first tries the candidate's time of day, then scans
// from opening time. The search gives up after LookaheadDays days.
//
// A candidate longer than the operating window never fits a scan. It gets
// the first conflict-free day starting at opening time instead, even though
// the slot runs past closing.
func NextAvailableSlot(q SlotQuery) (Interval, bool) {
	duration := q.Candidate.Duration()
	if !q.Candidate.Valid() {
		return Interval{}, false
	}
	step := q.Step
	if step <= 0 {
		step = DefaultStep
	}
	lookahead := q.LookaheadDays
	if lookahead <= 0 {
		lookahead = DefaultLookaheadDays
	}

	busy := blocking(q.Bookings, q.ExcludeBookingID)
	loc := q.Hours.location()
	day := startOfDay(q.Candidate.Start, loc)

	if !q.Hours.Fits(duration) {
		return openingSlot(day, q.Hours, duration, lookahead, busy)
	}

	if slot, ok := scanDay(day, q.Hours, step, duration, q.Candidate.Start, busy); ok {
		return slot, true
	}

	startLocal := q.Candidate.Start.In(loc)
	for i := 1; i <= lookahead; i++ {
		start := startLocal.AddDate(0, 0, i)
		slot := Interval{Start: start, End: start.Add(duration)}
		openAt, closeAt := q.Hours.window(start)
		if !slot.Start.Before(openAt) && !slot.End.After(closeAt) && free(slot, busy) {
			return slot, true
		}

		if slot, ok := scanDay(day.AddDate(0, 0, i), q.Hours, step, duration, time.Time{}, busy); ok {
			return slot, true
		}
	}

	return Interval{}, false
}

// openingSlot proposes opening time on each following day and ignores the
// closing bound.
func openingSlot(day time.Time, hours OperatingHours, duration time.Duration, lookahead int, busy []Interval) (Interval, bool) {
	for i := 1; i <= lookahead; i++ {
		openAt, _ := hours.window(day.AddDate(0, 0, i))
		slot := Interval{Start: openAt, End: openAt.Add(duration)}
		if free(slot, busy) {
			return slot, true
		}
	}
	return Interval{}, false
}

// scanDay walks step points from opening to closing time on day and returns
// the first free slot that starts after the given instant (when set) and
// ends by closing time.
func scanDay(day time.Time, hours OperatingHours, step, duration time.Duration, after time.Time, busy []Interval) (Interval, bool) {
	openAt, closeAt := hours.window(day)

	for start := openAt; !start.After(closeAt); start = start.Add(step) {
		if !after.IsZero() && !start.After(after) {
			continue
		}
		slot := Interval{Start: start, End: start.Add(duration)}
		if slot.End.After(closeAt) {
			break
		}
		if free(slot, busy) {
			return slot, true
		}
	}
	return Interval{}, false
}

func blocking(bookings []*model.Booking, excludeID string) []Interval {
	out := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.IsConfirmed() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		out = append(out, BookingInterval(b))
	}
	return out
}

func free(slot Interval, busy []Interval) bool {
	for _, iv := range busy {
		if Overlaps(slot, iv) {
			return false
		}
	}
	return true
}
