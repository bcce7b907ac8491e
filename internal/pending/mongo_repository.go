package pending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const pendingCollection = "pending_registrations"

// MongoRepository stores registrations in a collection with a unique email
// index and a TTL index on created_at. The TTL monitor runs about once a
// minute, so every query also filters on the retention cutoff.
type MongoRepository struct {
	coll      *mongo.Collection
	retention time.Duration
	now       func() time.Time
}

// NewMongoRepository ensures indexes and returns the repository.
func NewMongoRepository(ctx context.Context, db *mongo.Database, retention time.Duration) (*MongoRepository, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	coll := db.Collection(pendingCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention / time.Second)), // TTL index
		},
	}
	if _, err := coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return nil, fmt.Errorf("create pending registration indexes: %w", err)
	}

	return &MongoRepository{coll: coll, retention: retention, now: time.Now}, nil
}

func (r *MongoRepository) cutoff() time.Time {
	return r.now().UTC().Add(-r.retention)
}

func (r *MongoRepository) Insert(ctx context.Context, reg Registration) error {
	_, err := r.coll.InsertOne(ctx, reg)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("insert pending registration: %w", err)
	}

	// The conflicting document may be past retention but not yet swept.
	res, err := r.coll.DeleteOne(ctx, bson.M{
		"email":      reg.Email,
		"created_at": bson.M{"$lte": r.cutoff()},
	})
	if err != nil {
		return fmt.Errorf("purge stale pending registration: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrExists
	}

	if _, err := r.coll.InsertOne(ctx, reg); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrExists
		}
		return fmt.Errorf("insert pending registration: %w", err)
	}
	return nil
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (Registration, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) FindByID(ctx context.Context, id string) (Registration, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (Registration, error) {
	filter["created_at"] = bson.M{"$gt": r.cutoff()}

	var reg Registration
	if err := r.coll.FindOne(ctx, filter).Decode(&reg); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Registration{}, ErrNotFound
		}
		return Registration{}, fmt.Errorf("load pending registration: %w", err)
	}
	return reg, nil
}

func (r *MongoRepository) RefreshCode(ctx context.Context, email, code string, expiresAt time.Time) (Registration, error) {
	filter := bson.M{
		"email":      email,
		"created_at": bson.M{"$gt": r.cutoff()},
	}
	update := bson.M{
		"$set": bson.M{
			"otp":            code,
			"otp_expires_at": expiresAt,
		},
	}

	var reg Registration
	err := r.coll.FindOneAndUpdate(
		ctx,
		filter,
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&reg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Registration{}, ErrNotFound
		}
		return Registration{}, fmt.Errorf("refresh pending registration: %w", err)
	}
	return reg, nil
}

func (r *MongoRepository) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}

func (r *MongoRepository) Retention() time.Duration {
	return r.retention
}
