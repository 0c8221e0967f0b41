package repository

import (
	"context"
	"fmt"
	"time"

	bookingsrepo "bookspace/internal/bookings/repository"
	placesrepo "bookspace/internal/places/repository"
	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatsRepository answers the read-only aggregate queries behind the admin
// dashboard. Time bounds are half-open: [from, to).
type StatsRepository interface {
	CountPlaces(ctx context.Context, status string) (int64, error)
	CountBookings(ctx context.Context, status string) (int64, error)
	CountBookingsStarting(ctx context.Context, status string, from, to time.Time) (int64, error)
	BookedHours(ctx context.Context, from, to time.Time) (float64, error)
	BookingsByMonth(ctx context.Context, year int) (map[int]int64, error)
}

type mongoStatsRepository struct {
	cfg      *config.Config
	bookings *mongo.Collection
	places   *mongo.Collection
}

func NewMongoStatsRepository(cfg *config.Config) StatsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoStatsRepository{
		cfg:      cfg,
		bookings: db.Collection(bookingsrepo.CollectionName),
		places:   db.Collection(placesrepo.CollectionName),
	}
}

func (r *mongoStatsRepository) CountPlaces(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.places.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountBookings(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.bookings.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func (r *mongoStatsRepository) CountBookingsStarting(ctx context.Context, status string, from, to time.Time) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"event_start_time": bson.M{"$gte": from, "$lt": to}}
	if status != "" {
		filter["status"] = status
	}
	count, err := r.bookings.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

// BookedHours sums the approved booking time that falls inside [from, to).
// Bookings crossing a bound only contribute their clipped part.
func (r *mongoStatsRepository) BookedHours(ctx context.Context, from, to time.Time) (float64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"status":           config.Approved,
			"event_start_time": bson.M{"$lt": to},
			"event_end_time":   bson.M{"$gt": from},
		}}},
		{{Key: "$project", Value: bson.M{
			"ms": bson.M{"$subtract": bson.A{
				bson.M{"$min": bson.A{"$event_end_time", to}},
				bson.M{"$max": bson.A{"$event_start_time", from}},
			}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$ms"},
		}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate booked hours: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, fmt.Errorf("failed to decode booked hours: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return float64(rows[0].Total) / float64(time.Hour/time.Millisecond), nil
}

// BookingsByMonth counts bookings of every status by the UTC month of their
// start time. Months without bookings are absent from the result.
func (r *mongoStatsRepository) BookingsByMonth(ctx context.Context, year int) (map[int]int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"event_start_time": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$month": "$event_start_time"},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := r.bookings.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bookings by month: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Month int   `bson:"_id"`
		Count int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode bookings by month: %w", err)
	}

	result := make(map[int]int64, len(rows))
	for _, row := range rows {
		result[row.Month] = row.Count
	}
	return result, nil
}
