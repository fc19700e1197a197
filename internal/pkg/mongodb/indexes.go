package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes used by the application. Safe to call on
// every startup; CreateMany is a no-op for indexes that already exist.
func EnsureIndexes(db *mongo.Database) error {
	ctx := context.Background()

	// conversations: one document per user, keyed by _id = user id.
	convColl := db.Collection("conversations")
	convIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "last_updated", Value: -1}},
			Options: options.Index().SetName("idx_last_updated"),
		},
	}
	if err := createIndexes(ctx, convColl, convIndexes); err != nil {
		return err
	}

	// accounts: identity records.
	accountColl := db.Collection("accounts")
	accountIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	if err := createIndexes(ctx, accountColl, accountIndexes); err != nil {
		return err
	}

	// users: profile mirror documents read by the admin listing.
	userColl := db.Collection("users")
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}
	if err := createIndexes(ctx, userColl, userIndexes); err != nil {
		return err
	}

	// refresh_tokens: lookup by token value, TTL cleanup on expiry.
	refreshTokenColl := db.Collection("refresh_tokens")
	refreshTokenIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_user_id"),
		},
		{
			Keys:    bson.D{bson.E{Key: "token", Value: 1}},
			Options: options.Index().SetName("idx_token").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_expires_at").SetExpireAfterSeconds(0),
		},
	}
	if err := createIndexes(ctx, refreshTokenColl, refreshTokenIndexes); err != nil {
		return err
	}

	// userStats and admins are keyed by _id = user id and need nothing extra.

	return nil
}

func createIndexes(ctx context.Context, coll *mongo.Collection, indexes []mongo.IndexModel) error {
	if len(indexes) == 0 {
		return nil
	}
	_, err := coll.Indexes().CreateMany(ctx, indexes)
	return err
}
