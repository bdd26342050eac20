package conflicts

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInterval means end <= start or the duration is out of bounds.
	ErrInvalidInterval = errors.New("invalid interval")
	ErrMissingRoom     = fmt.Errorf("%w: room id is required", ErrInvalidInterval)

	// ErrUnavailable wraps every BookingSource failure. The conflict state is
	// unknown, not empty, and the call may be retried.
	ErrUnavailable = errors.New("booking store unavailable")

	// ErrBookingNotFound is returned by BookingSource.BookingByID.
	ErrBookingNotFound = errors.New("booking not found")
)

// WarningExcludedBookingMissing is attached to a Result when the booking being
// edited no longer exists. The check still runs, without exclusion.
const WarningExcludedBookingMissing = "excluded_booking_missing"

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
