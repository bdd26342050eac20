package model

import "time"

// BookingLock is an advisory per-room lock held while a booking is checked
// and committed. Documents expire through a TTL index on expires_at.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
