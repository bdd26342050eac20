// Package conflicts decides whether a proposed booking interval collides with
// the confirmed bookings of a room and, when it does, finds the next slot of
// the same length that is free.
//
// The package holds no state between calls. Storage is reached through the
// BookingSource interface; results are snapshots and callers that commit a
// booking must re-check inside their write transaction.
package conflicts
