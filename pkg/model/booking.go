package model

import (
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID        string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty"`
	RoomID    string        `json:"room_id" bson:"room_id" validate:"required,min=1,max=64"`
	Title     string        `json:"title" bson:"title" validate:"required,min=2,max=120"`
	Organizer string        `json:"organizer" bson:"organizer" validate:"required,min=2,max=100"`
	StartTime time.Time     `json:"start_time" bson:"start_time" validate:"required"`
	EndTime   time.Time     `json:"end_time" bson:"end_time" validate:"required,gtfield=StartTime,booking_duration"`
	Status    BookingStatus `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time     `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

// IsConfirmed reports whether the booking occupies its room.
func (b *Booking) IsConfirmed() bool {
	return b.Status == StatusConfirmed
}

type BookingUpdate struct {
	Title     string        `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Organizer string        `json:"organizer,omitempty" validate:"omitempty,min=2,max=100"`
	StartTime *time.Time    `json:"start_time,omitempty" validate:"omitempty"`
	EndTime   *time.Time    `json:"end_time,omitempty" validate:"omitempty"`
	Status    BookingStatus `json:"status,omitempty" validate:"omitempty,oneof=pending confirmed cancelled"`
}

// BookingSearch is the window query served by /bookings/search.
type BookingSearch struct {
	RoomID    string
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int64
}
