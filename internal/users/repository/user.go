package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	userserrors "bookspace/internal/users/errors"
	"bookspace/pkg/config"
	mongotx "bookspace/pkg/db/mongo"
	"bookspace/pkg/model"
	"bookspace/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Users"

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindAll(ctx context.Context, filter model.UserFilter, limit int, offset int64) ([]*model.User, error)
	Count(ctx context.Context, filter model.UserFilter) (int64, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.User, error)
	SoftDelete(ctx context.Context, id string) (*model.User, error)
	SetResetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type mongoUserRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoUserRepository(cfg *config.Config) UserRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	user.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return userserrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	return nil
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

// FindByEmail returns the user registered with email, deleted or not.
func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": sanitizer.NormalizeEmail(email)})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var user model.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) FindAll(ctx context.Context, filter model.UserFilter, limit int, offset int64) ([]*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetProjection(bson.M{"password_hash": 0, "reset_password_otp": 0, "reset_password_otp_expires": 0})

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	if err = cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *mongoUserRepository) Count(ctx context.Context, filter model.UserFilter) (int64, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *mongoUserRepository) UpdateStatus(ctx context.Context, id, status string) (*model.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"status": status}})
}

func (r *mongoUserRepository) SoftDelete(ctx context.Context, id string) (*model.User, error) {
	return r.findAndUpdate(ctx, id, bson.M{"$set": bson.M{"is_deleted": true}})
}

func (r *mongoUserRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*model.User, error) {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID, "is_deleted": false}, update, opts).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, userserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &user, nil
}

func (r *mongoUserRepository) SetResetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{
			"reset_password_otp":         code,
			"reset_password_otp_expires": expiresAt.UTC().Truncate(time.Millisecond),
		},
	})
}

// UpdatePassword stores a new hash and clears any pending reset code.
func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"password_hash": passwordHash},
		"$unset": bson.M{"reset_password_otp": "", "reset_password_otp_expires": ""},
	})
}

func (r *mongoUserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := mongotx.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", userserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return userserrors.ErrNotFound
	}
	return nil
}

func buildFilter(filter model.UserFilter) bson.M {
	query := bson.M{"is_deleted": false}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if term := sanitizer.EscapeSearch(filter.Search); term != "" {
		pattern := primitive.Regex{Pattern: term, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}
	return query
}
