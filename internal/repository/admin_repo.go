package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitcoach/internal/model"
)

// AdminRepo stores the presence-only admin markers.
type AdminRepo struct {
	collection *mongo.Collection
}

// NewAdminRepo creates the repository over the admins collection.
func NewAdminRepo(db *mongo.Database) *AdminRepo {
	return &AdminRepo{
		collection: db.Collection("admins"),
	}
}

// Exists reports whether a marker is present for the user id.
func (r *AdminRepo) Exists(ctx context.Context, userID string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Upsert writes the marker, overwriting any existing one. Re-running the
// provisioning command is therefore idempotent.
func (r *AdminRepo) Upsert(ctx context.Context, marker *model.AdminMarker) error {
	update := bson.M{
		"$set": bson.M{
			"email":   marker.Email,
			"role":    marker.Role,
			"addedAt": marker.AddedAt,
			"addedBy": marker.AddedBy,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": marker.UserID}, update, opts)
	return err
}

// Delete removes the marker for the user id.
func (r *AdminRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
