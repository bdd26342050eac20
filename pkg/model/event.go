package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingUpdated   = "booking.updated"
	EventBookingCancelled = "booking.cancelled"
	EventBookingDeleted   = "booking.deleted"
)

// BookingEvent is published after every committed booking write.
type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"booking_id"`
	RoomID     string        `json:"room_id"`
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *Booking) *BookingEvent {
	return &BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		RoomID:     b.RoomID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		Status:     b.Status,
		OccurredAt: time.Now().UTC(),
	}
}
