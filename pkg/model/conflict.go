package model

import "time"

// ConflictCheckRequest carries the candidate interval as RFC3339 strings.
// Missing or unparseable times are not an error; they produce an empty check.
type ConflictCheckRequest struct {
	RoomID           string `json:"room_id" validate:"required"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	ExcludeBookingID string `json:"exclude_booking_id,omitempty"`
}

type ConflictCheckResponse struct {
	Conflicts    []*Booking `json:"conflicts"`
	CheckedAt    time.Time  `json:"checked_at"`
	Warnings     []string   `json:"warnings,omitempty"`
	HasConflicts bool       `json:"has_conflicts"`
}

type SuggestRequest struct {
	RoomID           string    `json:"room_id" validate:"required"`
	StartTime        time.Time `json:"start_time" validate:"required"`
	EndTime          time.Time `json:"end_time" validate:"required"`
	ExcludeBookingID string    `json:"exclude_booking_id,omitempty"`
}

type SuggestResponse struct {
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
	Available bool       `json:"available"`
}
