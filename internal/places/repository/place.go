package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	placeserrors "bookspace/internal/places/errors"
	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"
	"bookspace/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Places"

type PlaceRepository interface {
	Create(ctx context.Context, place *model.Place) error
	FindByID(ctx context.Context, id string) (*model.Place, error)
	FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Place, error)
	Count(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, id string, place *model.Place) error
	Delete(ctx context.Context, id string) error
}

type mongoPlaceRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoPlaceRepository(cfg *config.Config) PlaceRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPlaceRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPlaceRepository) Create(ctx context.Context, place *model.Place) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	place.CreatedAt = now
	place.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, place)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return placeserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to create place: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		place.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPlaceRepository) FindByID(ctx context.Context, id string) (*model.Place, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", placeserrors.ErrInvalidID, id)
	}

	var place model.Place
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&place)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, placeserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find place: %w", err)
	}

	return &place, nil
}

func (r *mongoPlaceRepository) FindAll(ctx context.Context, status string, limit int, offset int64) ([]*model.Place, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, statusFilter(status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find places: %w", err)
	}
	defer cursor.Close(ctx)

	places := make([]*model.Place, 0)
	if err = cursor.All(ctx, &places); err != nil {
		return nil, fmt.Errorf("failed to decode places: %w", err)
	}

	return places, nil
}

func (r *mongoPlaceRepository) Count(ctx context.Context, status string) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count places: %w", err)
	}
	return count, nil
}

func (r *mongoPlaceRepository) Update(ctx context.Context, id string, place *model.Place) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", placeserrors.ErrInvalidID, id)
	}

	place.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$set": bson.M{
			"name":       place.Name,
			"details":    place.Details,
			"location":   place.Location,
			"capacity":   place.Capacity,
			"facilities": place.Facilities,
			"status":     place.Status,
			"updated_at": place.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return placeserrors.ErrDuplicateName
		}
		return fmt.Errorf("failed to update place: %w", err)
	}
	if result.MatchedCount == 0 {
		return placeserrors.ErrNotFound
	}
	return nil
}

func (r *mongoPlaceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", placeserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete place: %w", err)
	}
	if result.DeletedCount == 0 {
		return placeserrors.ErrNotFound
	}
	return nil
}

func statusFilter(status string) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}
