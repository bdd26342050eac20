package conflicts

import (
	"fmt"
	"roomly/pkg/model"
	"time"
)

const (
	DefaultMinDuration = 15 * time.Minute
	DefaultMaxDuration = 8 * time.Hour
)

// Interval is a span of time. Two intervals that only touch at an endpoint
// do not overlap.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

func (i Interval) String() string {
	return i.Start.Format(time.RFC3339) + "/" + i.End.Format(time.RFC3339)
}

// Overlaps reports whether a and b share an interior point.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

func BookingInterval(b *model.Booking) Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// Bounds limits how long a bookable interval may be.
type Bounds struct {
	Min time.Duration
	Max time.Duration
}

func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinDuration, Max: DefaultMaxDuration}
}

func (b Bounds) Validate(iv Interval) error {
	if !iv.Valid() {
		return fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidInterval, iv.End.Format(time.RFC3339), iv.Start.Format(time.RFC3339))
	}
	d := iv.Duration()
	if d < b.Min || d > b.Max {
		return fmt.Errorf("%w: duration %s outside [%s, %s]", ErrInvalidInterval, d, b.Min, b.Max)
	}
	return nil
}
