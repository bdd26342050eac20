package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	// ErrLockHeld means another writer is committing a booking for the same room.
	ErrLockHeld = errors.New("room is being booked by another request")

	ErrStartInPast = errors.New("start_time cannot be in the past")

	ErrRoomNotFound = errors.New("room not found")

	ErrRoomInactive = errors.New("room is not accepting bookings")
)
