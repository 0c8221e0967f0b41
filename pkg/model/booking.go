package model

import (
	"time"
)

// Facility references a piece of equipment or service attached to a place,
// together with the contact who manages it.
type Facility struct {
	Name  string `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
}

type Booking struct {
	ID                  string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID              string     `json:"user_id" bson:"user_id" validate:"required,mongodb"`
	PlaceID             string     `json:"place_id" bson:"place_id" validate:"required,mongodb"`
	EventTitle          string     `json:"event_title" bson:"event_title" validate:"required,min=2,max=120"`
	Reason              string     `json:"reason,omitempty" bson:"reason,omitempty" validate:"omitempty,max=1000"`
	Description         string     `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=1000"`
	EventStartTime      time.Time  `json:"event_start_time" bson:"event_start_time" validate:"required"`
	EventEndTime        time.Time  `json:"event_end_time" bson:"event_end_time" validate:"required"`
	Status              string     `json:"status" bson:"status" validate:"required,oneof=pending approved rejected cancelled"`
	RequestedFacilities []Facility `json:"requested_facilities" bson:"requested_facilities" validate:"omitempty,max=20,dive"`
	RequestedAt         time.Time  `json:"requested_at" bson:"requested_at"`
	DecidedAt           *time.Time `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
	DecidedBy           string     `json:"decided_by,omitempty" bson:"decided_by,omitempty"`
}

// Overlaps reports whether the booking window intersects [start, end).
// Windows are half-open, so touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.EventStartTime.Before(end) && start.Before(b.EventEndTime)
}

// BookingRequest is the payload a user submits to request a place.
type BookingRequest struct {
	PlaceID             string     `json:"place_id"`
	EventTitle          string     `json:"event_title"`
	Reason              string     `json:"reason,omitempty"`
	Description         string     `json:"description,omitempty"`
	EventStartTime      time.Time  `json:"event_start_time"`
	EventEndTime        time.Time  `json:"event_end_time"`
	RequestedFacilities []Facility `json:"requested_facilities,omitempty"`
}

// ToBooking builds a booking owned by userID from the request.
func (r *BookingRequest) ToBooking(userID string) *Booking {
	return &Booking{
		UserID:              userID,
		PlaceID:             r.PlaceID,
		EventTitle:          r.EventTitle,
		Reason:              r.Reason,
		Description:         r.Description,
		EventStartTime:      r.EventStartTime,
		EventEndTime:        r.EventEndTime,
		RequestedFacilities: r.RequestedFacilities,
	}
}

type BookingUpdate struct {
	EventTitle          string      `json:"event_title,omitempty" validate:"omitempty,min=2,max=120"`
	Reason              *string     `json:"reason,omitempty" validate:"omitempty,max=1000"`
	Description         *string     `json:"description,omitempty" validate:"omitempty,max=1000"`
	EventStartTime      *time.Time  `json:"event_start_time,omitempty"`
	EventEndTime        *time.Time  `json:"event_end_time,omitempty"`
	RequestedFacilities *[]Facility `json:"requested_facilities,omitempty" validate:"omitempty,max=20,dive"`
}

// BookingFilter narrows booking listings. Empty fields are ignored.
type BookingFilter struct {
	Status  string
	PlaceID string
	UserID  string
	From    *time.Time
	To      *time.Time
}

// BookingDecision is the optional body of an administrative transition.
type BookingDecision struct {
	Status string `json:"status,omitempty"`
	Note   string `json:"note,omitempty"`
}
