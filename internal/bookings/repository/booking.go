package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "bookspace/internal/bookings/errors"
	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"
	"bookspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error)
	Count(ctx context.Context, filter model.BookingFilter) (int64, error)
	FindOverlappingApproved(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error)
	CountUpcomingApproved(ctx context.Context, placeID string, now time.Time) (int64, error)
	UpdateDetails(ctx context.Context, id string, booking *model.Booking) error
	UpdateStatus(ctx context.Context, id, from, to, decidedBy string, decidedAt time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.RequestedAt = time.Now().UTC().Truncate(time.Millisecond)

	// Insert without an id so the driver always assigns an ObjectID, even
	// when a retried transaction hands back a booking from an earlier attempt.
	doc := *booking
	doc.ID = ""
	result, err := r.collection.InsertOne(ctx, &doc)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindAll lists bookings matching filter ordered by start time. A limit of
// zero returns every match.
func (r *mongoBookingRepository) FindAll(ctx context.Context, filter model.BookingFilter, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "event_start_time", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Count(ctx context.Context, filter model.BookingFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// FindOverlappingApproved returns approved bookings on placeID whose window
// intersects [start, end). excludeID, when set, is left out of the result.
func (r *mongoBookingRepository) FindOverlappingApproved(ctx context.Context, placeID string, start, end time.Time, excludeID string) ([]*model.Booking, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "event_start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, overlapFilter(placeID, start, end, excludeID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*model.Booking, 0)
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}
	return bookings, nil
}

// overlapFilter matches approved bookings with start < end and end > start,
// so windows that only touch at an edge do not overlap.
func overlapFilter(placeID string, start, end time.Time, excludeID string) bson.M {
	filter := bson.M{
		"place_id":         placeID,
		"status":           config.Approved,
		"event_start_time": bson.M{"$lt": end},
		"event_end_time":   bson.M{"$gt": start},
	}
	if excludeID != "" {
		if oid, err := primitive.ObjectIDFromHex(excludeID); err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	return filter
}

// CountUpcomingApproved counts approved bookings on placeID that have not ended by now.
func (r *mongoBookingRepository) CountUpcomingApproved(ctx context.Context, placeID string, now time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"place_id":       placeID,
		"status":         config.Approved,
		"event_end_time": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count upcoming bookings: %w", err)
	}
	return count, nil
}

// UpdateDetails rewrites the user-editable fields of a pending booking.
func (r *mongoBookingRepository) UpdateDetails(ctx context.Context, id string, booking *model.Booking) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": config.Pending}
	update := bson.M{
		"$set": bson.M{
			"event_title":          booking.EventTitle,
			"reason":               booking.Reason,
			"description":          booking.Description,
			"event_start_time":     booking.EventStartTime,
			"event_end_time":       booking.EventEndTime,
			"requested_facilities": booking.RequestedFacilities,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrChanged(ctx, objectID)
	}
	return nil
}

// UpdateStatus moves a booking from one status to another. The update only
// applies while the stored status still equals from.
func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id, from, to, decidedBy string, decidedAt time.Time) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "status": from}
	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"decided_at": decidedAt.UTC().Truncate(time.Millisecond),
			"decided_by": decidedBy,
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if result.MatchedCount == 0 {
		return r.missOrChanged(ctx, objectID)
	}
	return nil
}

func (r *mongoBookingRepository) missOrChanged(ctx context.Context, objectID primitive.ObjectID) error {
	count, err := r.collection.CountDocuments(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to check booking existence: %w", err)
	}
	if count == 0 {
		return bookingserrors.ErrNotFound
	}
	return bookingserrors.ErrStatusChanged
}

func buildFilter(f model.BookingFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PlaceID != "" {
		filter["place_id"] = f.PlaceID
	}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.From != nil {
		filter["event_end_time"] = bson.M{"$gt": *f.From}
	}
	if f.To != nil {
		filter["event_start_time"] = bson.M{"$lt": *f.To}
	}
	return filter
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
