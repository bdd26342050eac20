package model

import "time"

type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Location    string    `json:"location" bson:"location" validate:"omitempty,max=200"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"required,min=1,max=500"`
	OpenAt      string    `json:"open_at" bson:"open_at" validate:"required,hhmm"`
	CloseAt     string    `json:"close_at" bson:"close_at" validate:"required,hhmm,hhmm_after=OpenAt"`
	TimeZone    string    `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	SlotStepMin int       `json:"slot_step_min" bson:"slot_step_min" validate:"required,min=5,max=120"`
	Active      bool      `json:"active" bson:"active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type RoomUpdate struct {
	Name        string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Location    string `json:"location,omitempty" validate:"omitempty,max=200"`
	Capacity    *int   `json:"capacity,omitempty" validate:"omitempty,min=1,max=500"`
	OpenAt      string `json:"open_at,omitempty" validate:"omitempty,hhmm"`
	CloseAt     string `json:"close_at,omitempty" validate:"omitempty,hhmm"`
	TimeZone    string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	SlotStepMin *int   `json:"slot_step_min,omitempty" validate:"omitempty,min=5,max=120"`
	Active      *bool  `json:"active,omitempty"`
}
