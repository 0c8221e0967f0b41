package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "bookspace/internal/bookings/errors"
	"bookspace/internal/bookings/repository"
	"bookspace/internal/bookings/validator"
	"bookspace/pkg/auth"
	"bookspace/pkg/config"
	apperrors "bookspace/pkg/errors"
	"bookspace/pkg/events"
	"bookspace/pkg/model"
	"bookspace/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error)
	Create(ctx context.Context, caller auth.Principal, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, caller auth.Principal, id string) (*model.Booking, error)
	GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error)
	GetApproved(ctx context.Context, from, to *time.Time) ([]*model.Booking, error)
	GetApprovedByPlace(ctx context.Context, placeID string, from, to *time.Time) ([]*model.Booking, error)
	GetMine(ctx context.Context, caller auth.Principal) ([]*model.Booking, error)
	Update(ctx context.Context, caller auth.Principal, id string, updates *model.BookingUpdate) (*model.Booking, error)
	Approve(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)
	Reject(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)
	Cancel(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error)
}

// UserFinder resolves booking owners for notifications.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.BookingLockRepository
	checker   *AvailabilityChecker
	users     UserFinder
	validator *validator.BookingValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.BookingLockRepository,
	checker *AvailabilityChecker,
	users UserFinder,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		checker:   checker,
		users:     users,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *bookingService) CheckAvailability(ctx context.Context, req model.AvailabilityRequest) (*model.Availability, error) {
	return s.checker.Check(ctx, req.PlaceID, req.EventStartTime, req.EventEndTime)
}

func (s *bookingService) Create(ctx context.Context, caller auth.Principal, req *model.BookingRequest) (*model.Booking, error) {
	booking := req.ToBooking(caller.UserID)
	booking.Status = config.Pending
	s.sanitize(booking)

	if err := checkRange(booking.EventStartTime, booking.EventEndTime); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateNew(booking, s.now()); err != nil {
		return nil, s.validationError("Booking validation failed", err)
	}

	place, err := s.checker.findPlace(ctx, booking.PlaceID)
	if err != nil {
		return nil, err
	}
	if place.Status != config.PlaceAvailable {
		return nil, apperrors.Conflict("Place is not available for booking")
	}
	if err := checkFacilities(place, booking.RequestedFacilities); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		// The callback may run again after a transient commit error.
		booking.ID = ""
		if err := s.lockRepo.Touch(sessCtx, booking.PlaceID); err != nil {
			return err
		}
		if err := s.ensureFree(sessCtx, booking, ""); err != nil {
			return err
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "place_id", booking.PlaceID, "user_id", caller.UserID, "error", err)
		return nil, s.transactionError("Failed to create booking", err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"place_id", booking.PlaceID,
		"user_id", booking.UserID,
		"event_start_time", booking.EventStartTime,
	)
	s.notify(ctx, events.BookingCreated, booking, place.Name, "")
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, caller auth.Principal, id string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorOf(caller, booking.UserID) == 0 {
		return nil, apperrors.Forbidden("Access denied: not your booking")
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, int64, error) {
	filter.Status = NormalizeStatus(filter.Status)
	if filter.Status != "" {
		if _, ok := validStatuses[filter.Status]; !ok {
			return nil, 0, apperrors.InvalidInput("invalid status filter: " + filter.Status)
		}
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetApproved(ctx context.Context, from, to *time.Time) ([]*model.Booking, error) {
	if from != nil && to != nil {
		if err := checkRange(*from, *to); err != nil {
			return nil, err
		}
	}
	return s.list(ctx, model.BookingFilter{Status: config.Approved, From: from, To: to})
}

func (s *bookingService) GetApprovedByPlace(ctx context.Context, placeID string, from, to *time.Time) ([]*model.Booking, error) {
	if from != nil && to != nil {
		if err := checkRange(*from, *to); err != nil {
			return nil, err
		}
	}
	if _, err := s.checker.findPlace(ctx, placeID); err != nil {
		return nil, err
	}
	return s.list(ctx, model.BookingFilter{Status: config.Approved, PlaceID: placeID, From: from, To: to})
}

func (s *bookingService) GetMine(ctx context.Context, caller auth.Principal) ([]*model.Booking, error) {
	return s.list(ctx, model.BookingFilter{UserID: caller.UserID})
}

// Update edits a pending booking owned by the caller. A changed window is
// checked against approved bookings the same way a new booking is.
func (s *bookingService) Update(ctx context.Context, caller auth.Principal, id string, updates *model.BookingUpdate) (*model.Booking, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorOf(caller, existing.UserID)&actorOwner == 0 {
		return nil, apperrors.Forbidden("Only the requester can edit a booking")
	}
	if existing.Status != config.Pending {
		return nil, apperrors.Conflict("Only pending bookings can be edited")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Booking update validation failed", "id", id, "error", err)
		return nil, s.validationError("Invalid update input", err)
	}

	merged := mergeBookingUpdates(existing, updates)
	s.sanitize(merged)
	if err := checkRange(merged.EventStartTime, merged.EventEndTime); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateNew(merged, s.now()); err != nil {
		return nil, s.validationError("Booking validation failed", err)
	}

	place, err := s.checker.findPlace(ctx, merged.PlaceID)
	if err != nil {
		return nil, err
	}
	if err := checkFacilities(place, merged.RequestedFacilities); err != nil {
		return nil, err
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.lockRepo.Touch(sessCtx, merged.PlaceID); err != nil {
			return err
		}
		if err := s.ensureFree(sessCtx, merged, merged.ID); err != nil {
			return err
		}
		return s.repo.UpdateDetails(sessCtx, id, merged)
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update booking", "id", id, "error", err)
		return nil, s.transactionError("Failed to update booking", err)
	}

	s.cfg.Log.Info("Booking updated successfully", "id", id)
	return merged, nil
}

// Approve grants a pending booking. The overlap check and the status change
// happen in one transaction under the place lock.
func (s *bookingService) Approve(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
	var booking *model.Booking
	decidedAt := s.now().UTC().Truncate(time.Millisecond)

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		b, err := s.load(sessCtx, id)
		if err != nil {
			return err
		}
		if err := checkTransition(b.Status, config.Approved, actorOf(caller, b.UserID)); err != nil {
			return err
		}
		if err := s.lockRepo.Touch(sessCtx, b.PlaceID); err != nil {
			return err
		}
		if err := s.ensureFree(sessCtx, b, b.ID); err != nil {
			return err
		}
		if err := s.repo.UpdateStatus(sessCtx, b.ID, b.Status, config.Approved, caller.UserID, decidedAt); err != nil {
			return err
		}
		b.Status = config.Approved
		b.DecidedAt = &decidedAt
		b.DecidedBy = caller.UserID
		booking = b
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Failed to approve booking", "id", id, "admin_id", caller.UserID, "error", err)
		return nil, s.transactionError("Failed to approve booking", err)
	}

	s.cfg.Log.Info("Booking approved", "id", id, "admin_id", caller.UserID, "place_id", booking.PlaceID)
	s.notify(ctx, events.BookingApproved, booking, "", note)
	return booking, nil
}

func (s *bookingService) Reject(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
	return s.transition(ctx, caller, id, config.Rejected, events.BookingRejected, note)
}

func (s *bookingService) Cancel(ctx context.Context, caller auth.Principal, id, note string) (*model.Booking, error) {
	return s.transition(ctx, caller, id, config.Cancelled, events.BookingCancelled, note)
}

// transition applies a status change that only shrinks the approved set, so
// it needs no place lock. The conditional update still refuses a booking
// whose status moved since it was read.
func (s *bookingService) transition(ctx context.Context, caller auth.Principal, id, to string, eventType events.Type, note string) (*model.Booking, error) {
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	who := actorOf(caller, booking.UserID)
	if who == 0 {
		return nil, apperrors.Forbidden("Access denied: not your booking")
	}
	if err := checkTransition(booking.Status, to, who); err != nil {
		return nil, err
	}

	decidedAt := s.now().UTC().Truncate(time.Millisecond)
	if err := s.repo.UpdateStatus(ctx, booking.ID, booking.Status, to, caller.UserID, decidedAt); err != nil {
		return nil, s.transactionError("Failed to update booking status", err)
	}

	from := booking.Status
	booking.Status = to
	booking.DecidedAt = &decidedAt
	booking.DecidedBy = caller.UserID

	s.cfg.Log.Info("Booking status changed", "id", id, "from", from, "to", to, "by", caller.UserID)
	s.notify(ctx, eventType, booking, "", note)
	return booking, nil
}

// --- Helpers ---

var validStatuses = map[string]struct{}{
	config.Pending:   {},
	config.Approved:  {},
	config.Rejected:  {},
	config.Cancelled: {},
}

func (s *bookingService) load(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) list(ctx context.Context, filter model.BookingFilter) ([]*model.Booking, error) {
	bookings, err := s.repo.FindAll(ctx, filter, 0, 0)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "filter", filter, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}
	return bookings, nil
}

func (s *bookingService) ensureFree(ctx context.Context, booking *model.Booking, excludeID string) error {
	availability, err := s.checker.evaluate(ctx, booking.PlaceID, booking.EventStartTime, booking.EventEndTime, excludeID)
	if err != nil {
		return err
	}
	if !availability.Available {
		appErr := apperrors.Conflict(availability.Message)
		appErr.Err = bookingserrors.ErrTimeConflict
		return appErr
	}
	return nil
}

func (s *bookingService) transactionError(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFound("Booking")
	}
	if errors.Is(err, bookingserrors.ErrStatusChanged) {
		return apperrors.Conflict("Booking status changed, reload and try again")
	}
	return apperrors.Internal(message, err)
}

func (s *bookingService) validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func (s *bookingService) sanitize(b *model.Booking) {
	b.EventTitle = sanitizer.NormalizeName(b.EventTitle)
	b.Reason = sanitizer.NormalizeText(b.Reason)
	b.Description = sanitizer.NormalizeText(b.Description)
	b.RequestedFacilities = sanitizer.NormalizeFacilities(b.RequestedFacilities)
	b.EventStartTime = b.EventStartTime.UTC().Truncate(time.Millisecond)
	b.EventEndTime = b.EventEndTime.UTC().Truncate(time.Millisecond)
}

// notify publishes eventType to the booking owner. placeName may be empty.
func (s *bookingService) notify(ctx context.Context, eventType events.Type, booking *model.Booking, placeName, note string) {
	if s.publisher == nil || s.users == nil {
		return
	}
	owner, err := s.users.FindByID(ctx, booking.UserID)
	if err != nil {
		s.cfg.Log.Warn("Skipping booking notification, owner lookup failed",
			"booking_id", booking.ID,
			"user_id", booking.UserID,
			"error", err,
		)
		return
	}
	if placeName == "" {
		if place, err := s.checker.places.FindByID(ctx, booking.PlaceID); err == nil {
			placeName = place.Name
		}
	}
	events.Emit(ctx, s.publisher, s.cfg.Log, events.Notification{
		Type:       eventType,
		Recipient:  owner.Email,
		Name:       owner.Name,
		Booking:    events.NewBookingInfo(booking, placeName),
		Note:       note,
		OccurredAt: s.now().UTC(),
	})
}

func checkFacilities(place *model.Place, requested []model.Facility) error {
	missing := make([]string, 0)
	for _, f := range requested {
		if !place.HasFacility(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return apperrors.Validation("Requested facilities are not offered by this place", map[string]any{
			"requested_facilities": missing,
		})
	}
	return nil
}

func mergeBookingUpdates(existing *model.Booking, updates *model.BookingUpdate) *model.Booking {
	merged := *existing

	if updates.EventTitle != "" {
		merged.EventTitle = updates.EventTitle
	}
	if updates.Reason != nil {
		merged.Reason = *updates.Reason
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.EventStartTime != nil {
		merged.EventStartTime = *updates.EventStartTime
	}
	if updates.EventEndTime != nil {
		merged.EventEndTime = *updates.EventEndTime
	}
	if updates.RequestedFacilities != nil {
		merged.RequestedFacilities = *updates.RequestedFacilities
	}

	return &merged
}
