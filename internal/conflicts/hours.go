package conflicts

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DefaultOpen          = 8 * time.Hour
	DefaultClose         = 18 * time.Hour
	DefaultStep          = 30 * time.Minute
	DefaultLookaheadDays = 7
)

var reClock = regexp.MustCompile(`^([01]\d|2[0-3]):([0-5]\d)$`)

// OperatingHours is the daily window, as offsets from local midnight, inside
// which slots are suggested.
type OperatingHours struct {
	Open     time.Duration
	Close    time.Duration
	Location *time.Location
}

func DefaultOperatingHours() OperatingHours {
	return OperatingHours{Open: DefaultOpen, Close: DefaultClose, Location: time.UTC}
}

// ParseOperatingHours builds hours from "HH:MM" strings and an IANA zone name.
func ParseOperatingHours(openAt, closeAt, timeZone string) (OperatingHours, error) {
	o, err := ParseClock(openAt)
	if err != nil {
		return OperatingHours{}, err
	}
	c, err := ParseClock(closeAt)
	if err != nil {
		return OperatingHours{}, err
	}
	if c <= o {
		return OperatingHours{}, fmt.Errorf("close %s must be after open %s", closeAt, openAt)
	}

	loc := time.UTC
	if timeZone != "" {
		loc, err = time.LoadLocation(timeZone)
		if err != nil {
			return OperatingHours{}, fmt.Errorf("invalid time zone %q: %w", timeZone, err)
		}
	}
	return OperatingHours{Open: o, Close: c, Location: loc}, nil
}

// ParseClock turns "HH:MM" into an offset from midnight.
func ParseClock(s string) (time.Duration, error) {
	m := reClock.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid clock time %q, expected HH:MM", s)
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	return time.Duration(h)*time.Hour + time.Duration(min)*time.Minute, nil
}

func (h OperatingHours) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// Fits reports whether an interval of length d can ever lie inside the window.
func (h OperatingHours) Fits(d time.Duration) bool {
	return d > 0 && h.Open+d <= h.Close
}

// window returns the opening and closing instants of the local day holding t.
func (h OperatingHours) window(t time.Time) (time.Time, time.Time) {
	day := startOfDay(t, h.location())
	return clockOn(day, h.Open), clockOn(day, h.Close)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// clockOn places a wall clock offset on day, so DST changes do not shift it.
func clockOn(day time.Time, offset time.Duration) time.Time {
	y, m, d := day.Date()
	h := int(offset / time.Hour)
	min := int((offset % time.Hour) / time.Minute)
	return time.Date(y, m, d, h, min, 0, 0, day.Location())
}
