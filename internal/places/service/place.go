package service

import (
	"context"
	"errors"
	"sync"
	"time"

	placeserrors "bookspace/internal/places/errors"
	"bookspace/internal/places/repository"
	"bookspace/internal/places/validator"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/model"
	"bookspace/pkg/sanitizer"
)

type PlaceService interface {
	Create(ctx context.Context, place *model.Place) error
	GetByID(ctx context.Context, id string) (*model.Place, error)
	GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Place, int64, error)
	Update(ctx context.Context, id string, updates *model.PlaceUpdate) (*model.Place, error)
	Delete(ctx context.Context, id string) error
}

// BookingCounter reports approved bookings that have not ended yet.
type BookingCounter interface {
	CountUpcomingApproved(ctx context.Context, placeID string, now time.Time) (int64, error)
}

type placeService struct {
	repo      repository.PlaceRepository
	bookings  BookingCounter
	validator *validator.PlaceValidator
	cfg       *config.Config
	now       func() time.Time
}

func NewPlaceService(repo repository.PlaceRepository, bookings BookingCounter, validator *validator.PlaceValidator, cfg *config.Config) PlaceService {
	return &placeService{
		repo:      repo,
		bookings:  bookings,
		validator: validator,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *placeService) Create(ctx context.Context, place *model.Place) error {
	place.ID = ""
	if place.Status == "" {
		place.Status = config.PlaceAvailable
	}
	sanitize(place)

	if err := s.validator.Validate(place); err != nil {
		s.cfg.Log.Warn("Place validation failed", "name", place.Name, "error", err)
		return validationError("Place validation failed", err)
	}

	if err := s.repo.Create(ctx, place); err != nil {
		if errors.Is(err, placeserrors.ErrDuplicateName) {
			return apperrors.Conflict("A place with this name already exists")
		}
		s.cfg.Log.Error("Failed to create place", "name", place.Name, "error", err)
		return apperrors.Internal("Failed to create place", err)
	}

	s.cfg.Log.Info("Place created successfully", "id", place.ID, "name", place.Name)
	return nil
}

func (s *placeService) GetByID(ctx context.Context, id string) (*model.Place, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Place ID cannot be empty")
	}

	place, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(id, "Failed to retrieve place", err)
	}
	return place, nil
}

func (s *placeService) GetAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Place, int64, error) {
	if status != "" && status != config.PlaceAvailable && status != config.PlaceUnavailable {
		return nil, 0, apperrors.InvalidInput("invalid status filter: " + status)
	}

	var count int64
	var places []*model.Place
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, status)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count places", "error", errCount)
			errCount = apperrors.Internal("Failed to count places", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		places, errFind = s.repo.FindAll(ctx, status, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list places", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve places", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return places, count, nil
}

func (s *placeService) Update(ctx context.Context, id string, updates *model.PlaceUpdate) (*model.Place, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Place update validation failed", "id", id, "error", err)
		return nil, validationError("Invalid update input", err)
	}

	merged := mergePlaceUpdates(existing, updates)
	sanitize(merged)
	if err := s.validator.Validate(merged); err != nil {
		return nil, validationError("Place validation failed", err)
	}

	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, placeserrors.ErrDuplicateName) {
			return nil, apperrors.Conflict("A place with this name already exists")
		}
		s.cfg.Log.Error("Failed to update place", "id", id, "error", err)
		return nil, mapRepoError(id, "Failed to update place", err)
	}

	s.cfg.Log.Info("Place updated successfully", "id", id, "name", merged.Name)
	return merged, nil
}

// Delete removes a place unless approved bookings on it are still ahead.
func (s *placeService) Delete(ctx context.Context, id string) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	upcoming, err := s.bookings.CountUpcomingApproved(ctx, id, s.now().UTC())
	if err != nil {
		s.cfg.Log.Error("Failed to count upcoming bookings", "place_id", id, "error", err)
		return apperrors.Internal("Failed to delete place", err)
	}
	if upcoming > 0 {
		return apperrors.Conflict("Place has upcoming approved bookings").WithDetails(map[string]any{
			"upcoming_bookings": upcoming,
		})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.cfg.Log.Error("Failed to delete place", "id", id, "error", err)
		return mapRepoError(id, "Failed to delete place", err)
	}

	s.cfg.Log.Info("Place deleted successfully", "id", id)
	return nil
}

func mapRepoError(id, message string, err error) error {
	if errors.Is(err, placeserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Place", id)
	}
	if errors.Is(err, placeserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid place ID format")
	}
	return apperrors.Internal(message, err)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func sanitize(p *model.Place) {
	p.Name = sanitizer.NormalizeName(p.Name)
	p.Details = sanitizer.NormalizeText(p.Details)
	p.Location = sanitizer.NormalizeName(p.Location)
	p.Facilities = sanitizer.NormalizeFacilities(p.Facilities)
}

func mergePlaceUpdates(existing *model.Place, updates *model.PlaceUpdate) *model.Place {
	merged := *existing

	if updates.Name != "" {
		merged.Name = updates.Name
	}
	if updates.Details != nil {
		merged.Details = *updates.Details
	}
	if updates.Location != nil {
		merged.Location = *updates.Location
	}
	if updates.Capacity != nil {
		merged.Capacity = *updates.Capacity
	}
	if updates.Facilities != nil {
		merged.Facilities = *updates.Facilities
	}
	if updates.Status != "" {
		merged.Status = updates.Status
	}

	return &merged
}
