package service

import (
	"context"
	"sync"
	"time"

	bookingserrors "bookspace/internal/bookings/errors"
	placeserrors "bookspace/internal/places/errors"
	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"
	"bookspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// memoryBookingRepository keeps bookings in a map and answers the overlap
// query the same way the Mongo filter does.
type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	queries  int

	// txAttempts > 1 replays the transaction callback, rolling back every
	// attempt but the last. createdIDs records the id each Create received.
	txAttempts int
	createdIDs []string

	findOverlappingFunc func(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
	countFunc           func(ctx context.Context, filter model.BookingFilter) (int64, error)
}

func newMemoryBookingRepository(bookings ...*model.Booking) *memoryBookingRepository {
	r := &memoryBookingRepository{bookings: map[string]*model.Booking{}}
	for _, b := range bookings {
		if b.ID == "" {
			b.ID = primitive.NewObjectID().Hex()
		}
		r.bookings[b.ID] = b
	}
	return r
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createdIDs = append(r.createdIDs, booking.ID)
	booking.ID = primitive.NewObjectID().Hex()
	booking.RequestedAt = time.Now().UTC()
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, bookingserrors.ErrInvalidID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*model.Booking, 0)
	for _, b := range r.bookings {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.PlaceID != "" && b.PlaceID != filter.PlaceID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && !b.EventEndTime.After(*filter.From) {
			continue
		}
		if filter.To != nil && !b.EventStartTime.Before(*filter.To) {
			continue
		}
		copied := *b
		result = append(result, &copied)
	}
	return result, nil
}

func (r *memoryBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	if r.countFunc != nil {
		return r.countFunc(ctx, filter)
	}
	all, _ := r.FindAll(ctx, filter, 0, 0)
	return int64(len(all)), nil
}

func (r *memoryBookingRepository) FindOverlappingApproved(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	r.mu.Lock()
	r.queries++
	r.mu.Unlock()
	if r.findOverlappingFunc != nil {
		return r.findOverlappingFunc(ctx, placeID, start, end, excludeID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*model.Booking, 0)
	for _, b := range r.bookings {
		if b.PlaceID != placeID || b.Status != config.Approved || b.ID == excludeID {
			continue
		}
		if b.EventStartTime.Before(end) && b.EventEndTime.After(start) {
			copied := *b
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (r *memoryBookingRepository) CountUpcomingApproved(ctx context.Context, placeID string, now time.Time) (int64, error) {
	return 0, nil
}

func (r *memoryBookingRepository) UpdateDetails(ctx context.Context, id string, booking *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != config.Pending {
		return bookingserrors.ErrStatusChanged
	}
	copied := *booking
	r.bookings[id] = &copied
	return nil
}

func (r *memoryBookingRepository) UpdateStatus(ctx context.Context, id, from, to, decidedBy string, decidedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != from {
		return bookingserrors.ErrStatusChanged
	}
	b.Status = to
	b.DecidedAt = &decidedAt
	b.DecidedBy = decidedBy
	return nil
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	sessCtx := mongo.NewSessionContext(ctx, nil)
	for i := 1; i < r.txAttempts; i++ {
		snapshot := r.snapshot()
		if err := fn(sessCtx); err != nil {
			return err
		}
		r.restore(snapshot)
	}
	return fn(sessCtx)
}

func (r *memoryBookingRepository) snapshot() map[string]model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.Booking, len(r.bookings))
	for id, b := range r.bookings {
		out[id] = *b
	}
	return out
}

func (r *memoryBookingRepository) restore(snapshot map[string]model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = make(map[string]*model.Booking, len(snapshot))
	for id, b := range snapshot {
		copied := b
		r.bookings[id] = &copied
	}
}

func (r *memoryBookingRepository) queryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queries
}

type mockLockRepository struct {
	mu      sync.Mutex
	touched []string
	err     error
}

func (m *mockLockRepository) Touch(ctx context.Context, placeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.touched = append(m.touched, placeID)
	return nil
}

type mockPlaceFinder struct {
	places map[string]*model.Place
	calls  int
}

func (m *mockPlaceFinder) FindByID(ctx context.Context, id string) (*model.Place, error) {
	m.calls++
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, placeserrors.ErrInvalidID
	}
	p, ok := m.places[id]
	if !ok {
		return nil, placeserrors.ErrNotFound
	}
	return p, nil
}

type mockUserFinder struct {
	users map[string]*model.User
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return u, nil
}
