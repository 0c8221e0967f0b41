package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	bookingserrors "bookspace/internal/bookings/errors"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"
)

const (
	hallID  = "65a0000000000000000000a1"
	roomID  = "65a0000000000000000000a2"
	aliceID = "65a0000000000000000000b1"
	bobID   = "65a0000000000000000000b2"
	adminID = "65a0000000000000000000c1"
)

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func newPlaces() *mockPlaceFinder {
	return &mockPlaceFinder{places: map[string]*model.Place{
		hallID: {ID: hallID, Name: "Main Hall", Capacity: 200, Status: config.PlaceAvailable,
			Facilities: []model.Facility{{Name: "Projector", Email: "av@example.com"}}},
		roomID: {ID: roomID, Name: "Room 2", Capacity: 20, Status: config.PlaceUnavailable},
	}}
}

func booking(placeID, status string, start, end time.Time) *model.Booking {
	return &model.Booking{
		UserID:         aliceID,
		PlaceID:        placeID,
		EventTitle:     "Event",
		EventStartTime: start,
		EventEndTime:   end,
		Status:         status,
	}
}

func TestCheck_Scenario(t *testing.T) {
	repo := newMemoryBookingRepository(booking(hallID, config.Approved, at(10, 0), at(12, 0)))
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		available bool
	}{
		{"overlaps the tail of the approved booking", at(11, 0), at(13, 0), false},
		{"starts exactly when the approved booking ends", at(12, 0), at(13, 0), true},
		{"ends exactly when the approved booking starts", at(9, 0), at(10, 0), true},
		{"contained inside the approved booking", at(10, 30), at(11, 30), false},
		{"contains the approved booking", at(9, 0), at(13, 0), false},
		{"identical window", at(10, 0), at(12, 0), false},
		{"one minute of overlap", at(11, 59), at(13, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.Check(context.Background(), hallID, tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Available != tt.available {
				t.Errorf("expected available=%v, got %v (%s)", tt.available, got.Available, got.Message)
			}
			if !got.Available && got.Message == "" {
				t.Error("expected a non-empty message for an unavailable window")
			}
		})
	}
}

func TestCheck_ConflictMessage(t *testing.T) {
	repo := newMemoryBookingRepository(booking(hallID, config.Approved, at(10, 0), at(12, 0)))
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	got, err := checker.Check(context.Background(), hallID, at(11, 0), at(13, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "overlaps with an existing approved booking from 2024-01-01T10:00:00Z to 2024-01-01T12:00:00Z"
	if got.Message != want {
		t.Errorf("expected message %q, got %q", want, got.Message)
	}
	if len(got.Conflicts) != 1 {
		t.Errorf("expected 1 conflict, got %d", len(got.Conflicts))
	}
}

func TestCheck_InvalidRangeBeforeAnyQuery(t *testing.T) {
	repo := newMemoryBookingRepository(booking(hallID, config.Approved, at(10, 0), at(12, 0)))
	places := newPlaces()
	checker := NewAvailabilityChecker(repo, places, logger.Discard())

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"start equals end", at(11, 0), at(11, 0)},
		{"start after end", at(13, 0), at(11, 0)},
		{"free slot but reversed", at(8, 0), at(7, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.Check(context.Background(), hallID, tt.start, tt.end)
			if !errors.Is(err, bookingserrors.ErrInvalidTimeRange) {
				t.Fatalf("expected ErrInvalidTimeRange, got %v", err)
			}
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeValidation || appErr.HTTPStatus != http.StatusBadRequest {
				t.Errorf("expected a 400 validation error, got %#v", err)
			}
		})
	}

	if repo.queryCount() != 0 {
		t.Errorf("expected no booking queries, got %d", repo.queryCount())
	}
	if places.calls != 0 {
		t.Errorf("expected no place lookups, got %d", places.calls)
	}
}

func TestCheck_NonApprovedBookingsNeverConflict(t *testing.T) {
	repo := newMemoryBookingRepository(
		booking(hallID, config.Pending, at(10, 0), at(12, 0)),
		booking(hallID, config.Rejected, at(10, 0), at(12, 0)),
		booking(hallID, config.Cancelled, at(10, 0), at(12, 0)),
	)
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	got, err := checker.Check(context.Background(), hallID, at(10, 0), at(12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available {
		t.Errorf("expected available, got %q", got.Message)
	}
}

func TestCheck_OtherPlacesNeverConflict(t *testing.T) {
	repo := newMemoryBookingRepository(booking(roomID, config.Approved, at(10, 0), at(12, 0)))
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	got, err := checker.Check(context.Background(), hallID, at(10, 0), at(12, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available {
		t.Error("expected booking on another place to be ignored")
	}
}

func TestCheck_IgnoresStoreFalsePositives(t *testing.T) {
	repo := newMemoryBookingRepository()
	repo.findOverlappingFunc = func(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
		// adjacent window a looser query could return
		return []*model.Booking{booking(hallID, config.Approved, at(8, 0), at(10, 0))}, nil
	}
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	got, err := checker.Check(context.Background(), hallID, at(10, 0), at(11, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Available {
		t.Error("expected adjacent booking to be discarded")
	}
}

func TestCheck_PlaceErrors(t *testing.T) {
	checker := NewAvailabilityChecker(newMemoryBookingRepository(), newPlaces(), logger.Discard())

	tests := []struct {
		name     string
		placeID  string
		wantCode string
	}{
		{"unknown place", "65a0000000000000000000ff", apperrors.CodeNotFound},
		{"malformed id", "not-an-id", apperrors.CodeInvalidInput},
		{"missing id", "", apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := checker.Check(context.Background(), tt.placeID, at(10, 0), at(11, 0))
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %v", tt.wantCode, err)
			}
		})
	}
}

func TestCheck_StoreFailure(t *testing.T) {
	repo := newMemoryBookingRepository()
	repo.findOverlappingFunc = func(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
		return nil, errors.New("connection reset by peer")
	}
	checker := NewAvailabilityChecker(repo, newPlaces(), logger.Discard())

	_, err := checker.Check(context.Background(), hallID, at(10, 0), at(11, 0))
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if strings.Contains(err.Error(), "overlaps") {
		t.Error("store failure must not be reported as a conflict")
	}
	if repo.queryCount() != 1 {
		t.Errorf("expected exactly one query with no retries, got %d", repo.queryCount())
	}
}
