package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"bookspace/pkg/logger"
	"bookspace/pkg/model"
)

func validBooking() *model.Booking {
	start := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	return &model.Booking{
		UserID:         "65a0000000000000000000b1",
		PlaceID:        "65a0000000000000000000a1",
		EventTitle:     "Guest lecture",
		EventStartTime: start,
		EventEndTime:   start.Add(2 * time.Hour),
		Status:         "pending",
	}
}

func TestValidate(t *testing.T) {
	v := NewBookingValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(b *model.Booking)
		wantField string
	}{
		{"valid", func(b *model.Booking) {}, ""},
		{"bad place id", func(b *model.Booking) { b.PlaceID = "123" }, "place_id"},
		{"missing title", func(b *model.Booking) { b.EventTitle = "" }, "event_title"},
		{"long reason", func(b *model.Booking) { b.Reason = strings.Repeat("r", 1001) }, "reason"},
		{"unknown status", func(b *model.Booking) { b.Status = "confirmed" }, "status"},
		{"facility without name", func(b *model.Booking) { b.RequestedFacilities = []model.Facility{{Email: "a@b.c"}} }, "name"},
		{"facility bad email", func(b *model.Booking) { b.RequestedFacilities = []model.Facility{{Name: "Mic", Email: "nope"}} }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking()
			tt.mutate(b)
			err := v.Validate(b)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs.Details()[tt.wantField]; !ok {
				t.Errorf("expected an error on %s, got %v", tt.wantField, verrs)
			}
		})
	}
}

func TestValidateNew_PastStart(t *testing.T) {
	v := NewBookingValidator(logger.Discard())
	b := validBooking()

	if err := v.ValidateNew(b, b.EventStartTime.Add(-time.Minute)); err != nil {
		t.Errorf("future start should pass: %v", err)
	}
	if err := v.ValidateNew(b, b.EventStartTime.Add(time.Minute)); err == nil {
		t.Error("expected past start to fail")
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewBookingValidator(logger.Discard())
	start := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)

	if err := v.ValidateUpdate(&model.BookingUpdate{EventStartTime: &start, EventEndTime: &end}); err == nil {
		t.Error("expected reversed window to fail")
	}
	if err := v.ValidateUpdate(&model.BookingUpdate{EventTitle: "x"}); err == nil {
		t.Error("expected short title to fail")
	}
	if err := v.ValidateUpdate(&model.BookingUpdate{EventTitle: "Workshop"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
