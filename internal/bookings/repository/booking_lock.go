package repository

import (
	"context"
	"fmt"
	"time"

	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"
	"bookspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const LockCollectionName = "Booking_locks"

// BookingLockRepository serializes booking writers per place. Touch must be
// called with the transaction's SessionContext so that concurrent
// transactions on the same place hit a write conflict.
type BookingLockRepository interface {
	Touch(ctx context.Context, placeID string) error
}

type mongoBookingLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewBookingLockRepository(cfg *config.Config) BookingLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingLockRepository{
		cfg:        cfg,
		collection: db.Collection(LockCollectionName),
	}
}

func (r *mongoBookingLockRepository) Touch(ctx context.Context, placeID string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": model.BookingLockID(placeID)}
	update := bson.M{
		"$inc":         bson.M{"version": 1},
		"$set":         bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		"$setOnInsert": bson.M{"place_id": placeID},
	}

	if _, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("failed to lock place %s: %w", placeID, err)
	}
	return nil
}
