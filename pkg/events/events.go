// Package events carries the notifications the API emits when users and
// bookings change state. They are delivered by cmd/notifier.
package events

import (
	"context"
	"time"

	"bookspace/pkg/model"
)

type Type string

const (
	OTPRequested           Type = "otp.requested"
	PasswordResetRequested Type = "password.reset_requested"
	UserApproved           Type = "user.approved"
	UserRejected           Type = "user.rejected"
	UserRemoved            Type = "user.removed"
	BookingCreated         Type = "booking.created"
	BookingApproved        Type = "booking.approved"
	BookingRejected        Type = "booking.rejected"
	BookingCancelled       Type = "booking.cancelled"
)

// Notification is the payload published on the notifications topic.
// Recipient is an email address.
type Notification struct {
	Type       Type         `json:"type"`
	Recipient  string       `json:"recipient"`
	Name       string       `json:"name,omitempty"`
	Code       string       `json:"code,omitempty"`
	ExpiresAt  *time.Time   `json:"expires_at,omitempty"`
	Booking    *BookingInfo `json:"booking,omitempty"`
	Note       string       `json:"note,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type BookingInfo struct {
	ID             string    `json:"id"`
	PlaceID        string    `json:"place_id"`
	PlaceName      string    `json:"place_name,omitempty"`
	EventTitle     string    `json:"event_title"`
	EventStartTime time.Time `json:"event_start_time"`
	EventEndTime   time.Time `json:"event_end_time"`
	Status         string    `json:"status"`
}

func NewBookingInfo(b *model.Booking, placeName string) *BookingInfo {
	return &BookingInfo{
		ID:             b.ID,
		PlaceID:        b.PlaceID,
		PlaceName:      placeName,
		EventTitle:     b.EventTitle,
		EventStartTime: b.EventStartTime,
		EventEndTime:   b.EventEndTime,
		Status:         b.Status,
	}
}

func (t Type) Valid() bool {
	switch t {
	case OTPRequested, PasswordResetRequested,
		UserApproved, UserRejected, UserRemoved,
		BookingCreated, BookingApproved, BookingRejected, BookingCancelled:
		return true
	}
	return false
}

type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, n Notification) error

func (f PublisherFunc) Publish(ctx context.Context, n Notification) error {
	return f(ctx, n)
}
