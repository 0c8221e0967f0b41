package model

import "time"

// BookingLock is the per-place document every booking write transaction
// touches. Concurrent writers on the same place conflict on it and one of
// them is retried.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	PlaceID   string    `bson:"place_id" json:"place_id"`
	Version   int64     `bson:"version" json:"version"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func BookingLockID(placeID string) string {
	return "place:" + placeID
}
