package model

import "time"

type AvailabilityRequest struct {
	PlaceID        string    `json:"place_id"`
	EventStartTime time.Time `json:"event_start_time"`
	EventEndTime   time.Time `json:"event_end_time"`
}

// Availability is the verdict for a requested window on a place.
// Message is non-empty whenever Available is false.
type Availability struct {
	Available bool       `json:"available"`
	Message   string     `json:"message"`
	Conflicts []*Booking `json:"conflicts,omitempty"`
}
