package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitcoach/internal/model"
)

// UserProfileRepo stores the profile mirror documents read by the admin
// listing. The authoritative identity record lives in the accounts
// collection; this mirror exists so listing never touches identity data.
type UserProfileRepo struct {
	collection *mongo.Collection
}

// NewUserProfileRepo creates the repository over the users collection.
func NewUserProfileRepo(db *mongo.Database) *UserProfileRepo {
	return &UserProfileRepo{
		collection: db.Collection("users"),
	}
}

// Create writes the mirror document at registration time.
func (r *UserProfileRepo) Create(ctx context.Context, profile *model.UserProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, profile)
	return err
}

// List returns every profile document. No pagination or filtering; the
// admin panel renders the flat list as-is.
func (r *UserProfileRepo) List(ctx context.Context) ([]*model.UserProfile, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []*model.UserProfile{}
	if err := cursor.All(ctx, &profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

// Delete removes the mirror document for the user id.
func (r *UserProfileRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
