package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "bookspace/internal/bookings/errors"
	"bookspace/internal/bookings/repository"
	placeserrors "bookspace/internal/places/errors"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/logger"
	"bookspace/pkg/model"
)

// PlaceFinder is the part of the place store the booking workflow reads.
type PlaceFinder interface {
	FindByID(ctx context.Context, id string) (*model.Place, error)
}

// AvailabilityChecker decides whether a window on a place can be granted.
// It only reads: nothing is reserved by a check.
type AvailabilityChecker struct {
	repo   repository.BookingRepository
	places PlaceFinder
	log    *logger.Logger
}

func NewAvailabilityChecker(repo repository.BookingRepository, places PlaceFinder, log *logger.Logger) *AvailabilityChecker {
	return &AvailabilityChecker{
		repo:   repo,
		places: places,
		log:    log,
	}
}

// Check reports whether [start, end) on placeID is free of approved bookings.
func (c *AvailabilityChecker) Check(ctx context.Context, placeID string, start, end time.Time) (*model.Availability, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}

	if _, err := c.findPlace(ctx, placeID); err != nil {
		return nil, err
	}

	return c.evaluate(ctx, placeID, start, end, "")
}

// evaluate runs the overlap query without the range and place checks.
// excludeID keeps a booking from conflicting with itself.
func (c *AvailabilityChecker) evaluate(ctx context.Context, placeID string, start, end time.Time, excludeID string) (*model.Availability, error) {
	candidates, err := c.repo.FindOverlappingApproved(ctx, placeID, start, end, excludeID)
	if err != nil {
		c.log.Error("Failed to query approved bookings",
			"place_id", placeID,
			"start", start,
			"end", end,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	var conflicts []*model.Booking
	for _, b := range candidates {
		if b.ID == excludeID {
			continue
		}
		if b.Overlaps(start, end) {
			conflicts = append(conflicts, b)
		}
	}

	if len(conflicts) == 0 {
		return &model.Availability{Available: true, Message: "The place is available for the requested time"}, nil
	}

	first := conflicts[0]
	return &model.Availability{
		Available: false,
		Message:   conflictMessage(first),
		Conflicts: conflicts,
	}, nil
}

func (c *AvailabilityChecker) findPlace(ctx context.Context, placeID string) (*model.Place, error) {
	if placeID == "" {
		return nil, apperrors.Validation("place_id is required", map[string]any{"place_id": "place_id is required"})
	}

	place, err := c.places.FindByID(ctx, placeID)
	if err != nil {
		if errors.Is(err, placeserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Place", placeID)
		}
		if errors.Is(err, placeserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid place ID format")
		}
		c.log.Error("Failed to load place", "place_id", placeID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve place", err)
	}
	return place, nil
}

func checkRange(start, end time.Time) error {
	if start.Before(end) {
		return nil
	}
	appErr := apperrors.Validation("event_end_time must be after event_start_time", map[string]any{
		"event_start_time": start.UTC().Format(time.RFC3339),
		"event_end_time":   end.UTC().Format(time.RFC3339),
	})
	appErr.Err = bookingserrors.ErrInvalidTimeRange
	return appErr
}

func conflictMessage(b *model.Booking) string {
	return fmt.Sprintf("overlaps with an existing approved booking from %s to %s",
		b.EventStartTime.UTC().Format(time.RFC3339),
		b.EventEndTime.UTC().Format(time.RFC3339),
	)
}
