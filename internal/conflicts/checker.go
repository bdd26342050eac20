package conflicts

import (
	"cmp"
	"context"
	"errors"
	"roomly/pkg/model"
	"slices"
	"strings"
	"time"
)

// BookingSource is the storage the checker reads from.
type BookingSource interface {
	// BookingsOverlapping returns bookings of any status in roomID whose
	// interval overlaps [from, to).
	BookingsOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error)
	// BookingByID returns ErrBookingNotFound, possibly wrapped, when absent.
	BookingByID(ctx context.Context, id string) (*model.Booking, error)
}

type Query struct {
	RoomID           string
	Start            time.Time
	End              time.Time
	ExcludeBookingID string
	// Location decides which calendar day is fetched. Defaults to the
	// checker's operating hours location.
	Location *time.Location
}

type Result struct {
	Conflicts []*model.Booking
	CheckedAt time.Time
	Warnings  []string
}

func (r *Result) HasConflicts() bool {
	return len(r.Conflicts) > 0
}

type SuggestQuery struct {
	RoomID           string
	Start            time.Time
	End              time.Time
	ExcludeBookingID string
	// Hours and Step fall back to the checker defaults when zero.
	Hours *OperatingHours
	Step  time.Duration
}

type Options struct {
	Bounds        Bounds
	Hours         OperatingHours
	Step          time.Duration
	LookaheadDays int
	Now           func() time.Time
}

func DefaultOptions() Options {
	return Options{
		Bounds:        DefaultBounds(),
		Hours:         DefaultOperatingHours(),
		Step:          DefaultStep,
		LookaheadDays: DefaultLookaheadDays,
		Now:           time.Now,
	}
}

type Checker struct {
	source BookingSource
	opts   Options
}

func NewChecker(source BookingSource, opts Options) *Checker {
	def := DefaultOptions()
	if opts.Bounds.Min <= 0 || opts.Bounds.Max <= 0 {
		opts.Bounds = def.Bounds
	}
	if opts.Hours.Close <= opts.Hours.Open {
		opts.Hours = def.Hours
	}
	if opts.Step <= 0 {
		opts.Step = def.Step
	}
	if opts.LookaheadDays <= 0 {
		opts.LookaheadDays = def.LookaheadDays
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Checker{source: source, opts: opts}
}

func (c *Checker) Options() Options {
	return c.opts
}

// FindConflicts lists the confirmed bookings of the room that overlap the
// candidate, ordered by start time then id.
//
// A query missing either endpoint yields an empty result without touching
// storage. A vanished exclusion target is reported as a warning.
func (c *Checker) FindConflicts(ctx context.Context, q Query) (*Result, error) {
	res := &Result{
		Conflicts: []*model.Booking{},
		CheckedAt: c.opts.Now().UTC(),
	}
	if q.Start.IsZero() || q.End.IsZero() {
		return res, nil
	}
	if strings.TrimSpace(q.RoomID) == "" {
		return nil, ErrMissingRoom
	}

	candidate := Interval{Start: q.Start, End: q.End}
	if err := c.opts.Bounds.Validate(candidate); err != nil {
		return nil, err
	}

	exclude, warning, err := c.resolveExclusion(ctx, q.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		res.Warnings = append(res.Warnings, warning)
	}

	loc := q.Location
	if loc == nil {
		loc = c.opts.Hours.location()
	}
	from, to := dayWindow(candidate, loc)

	bookings, err := c.source.BookingsOverlapping(ctx, q.RoomID, from, to)
	if err != nil {
		return nil, unavailable("fetch bookings", err)
	}

	res.Conflicts = Filter(bookings, candidate, exclude)
	return res, nil
}

// SuggestNextSlot validates the candidate like FindConflicts and searches for
// the next free slot of the same duration. ok is false when none exists
// within the lookahead horizon.
func (c *Checker) SuggestNextSlot(ctx context.Context, q SuggestQuery) (slot Interval, ok bool, err error) {
	if strings.TrimSpace(q.RoomID) == "" {
		return Interval{}, false, ErrMissingRoom
	}
	candidate := Interval{Start: q.Start, End: q.End}
	if err := c.opts.Bounds.Validate(candidate); err != nil {
		return Interval{}, false, err
	}

	hours := c.opts.Hours
	if q.Hours != nil {
		hours = *q.Hours
	}
	step := q.Step
	if step <= 0 {
		step = c.opts.Step
	}

	from := startOfDay(candidate.Start, hours.location())
	to := from.AddDate(0, 0, c.opts.LookaheadDays+1)
	if candidate.End.After(to) {
		to = candidate.End
	}

	bookings, err := c.source.BookingsOverlapping(ctx, q.RoomID, from, to)
	if err != nil {
		return Interval{}, false, unavailable("fetch bookings", err)
	}

	slot, ok = NextAvailableSlot(SlotQuery{
		Candidate:        candidate,
		Bookings:         bookings,
		ExcludeBookingID: q.ExcludeBookingID,
		Hours:            hours,
		Step:             step,
		LookaheadDays:    c.opts.LookaheadDays,
	})
	return slot, ok, nil
}

func (c *Checker) resolveExclusion(ctx context.Context, id string) (string, string, error) {
	if id == "" {
		return "", "", nil
	}
	if _, err := c.source.BookingByID(ctx, id); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			return "", WarningExcludedBookingMissing, nil
		}
		return "", "", unavailable("resolve excluded booking", err)
	}
	return id, "", nil
}

// Filter keeps confirmed bookings overlapping candidate, drops excludeID and
// sorts the rest deterministically.
func Filter(bookings []*model.Booking, candidate Interval, excludeID string) []*model.Booking {
	out := make([]*model.Booking, 0, len(bookings))
	for _, b := range bookings {
		if b == nil || !b.IsConfirmed() {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		if Overlaps(candidate, BookingInterval(b)) {
			out = append(out, b)
		}
	}

	slices.SortFunc(out, func(a, b *model.Booking) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// dayWindow is the local calendar day of the candidate's start, widened to
// cover the whole candidate.
func dayWindow(candidate Interval, loc *time.Location) (time.Time, time.Time) {
	from := startOfDay(candidate.Start, loc)
	to := from.AddDate(0, 0, 1)
	if candidate.End.After(to) {
		to = candidate.End
	}
	return from, to
}
