package repository

import (
	"context"
	"errors"
	"fmt"
	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/conflicts"
	"roomly/pkg/model"
	"time"
)

// conflictSource exposes a BookingRepository to the conflict checker.
type conflictSource struct {
	repo BookingRepository
}

func NewConflictSource(repo BookingRepository) conflicts.BookingSource {
	return &conflictSource{repo: repo}
}

func (s *conflictSource) BookingsOverlapping(ctx context.Context, roomID string, from, to time.Time) ([]*model.Booking, error) {
	return s.repo.FindOverlapping(ctx, roomID, from, to)
}

// BookingByID treats a malformed id like a missing booking: neither can be
// excluded from a check.
func (s *conflictSource) BookingByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
		return nil, fmt.Errorf("%w: %s", conflicts.ErrBookingNotFound, id)
	}
	return booking, err
}
