package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// ActivityRepository stores the per-profile activity log.
type ActivityRepository interface {
	Record(ctx context.Context, activity *models.Activity) error
	ListByProfile(ctx context.Context, profileID uint, skip, limit int64) ([]models.Activity, error)
	DeleteByProfile(ctx context.Context, profileID uint) error
}

// MongoActivityRepository implements ActivityRepository for MongoDB
type MongoActivityRepository struct {
	collection *mongo.Collection
}

func NewMongoActivityRepository(db *mongo.Database) *MongoActivityRepository {
	return &MongoActivityRepository{collection: db.Collection("activities")}
}

// EnsureIndexes creates the (profile_id, created_at) index used by listings.
func (r *MongoActivityRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	return err
}

func (r *MongoActivityRepository) Record(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, activity)
	return err
}

// ListByProfile returns the newest entries first.
func (r *MongoActivityRepository) ListByProfile(ctx context.Context, profileID uint, skip, limit int64) ([]models.Activity, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"profile_id": profileID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	activities := []models.Activity{}
	if err = cursor.All(ctx, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (r *MongoActivityRepository) DeleteByProfile(ctx context.Context, profileID uint) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"profile_id": profileID})
	return err
}

// NopActivityRepository is used when MongoDB is not configured.
type NopActivityRepository struct{}

func (NopActivityRepository) Record(context.Context, *models.Activity) error { return nil }

func (NopActivityRepository) ListByProfile(context.Context, uint, int64, int64) ([]models.Activity, error) {
	return []models.Activity{}, nil
}

func (NopActivityRepository) DeleteByProfile(context.Context, uint) error { return nil }
