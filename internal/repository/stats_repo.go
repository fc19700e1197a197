package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitcoach/internal/model"
)

// StatsRepo stores the per-user daily usage counters.
type StatsRepo struct {
	collection *mongo.Collection
}

// NewStatsRepo creates the repository over the userStats collection.
func NewStatsRepo(db *mongo.Database) *StatsRepo {
	return &StatsRepo{
		collection: db.Collection("userStats"),
	}
}

// Find returns the user's counter, or nil when the user has never sent a
// message. Absence means an effective count of zero.
func (r *StatsRepo) Find(ctx context.Context, userID string) (*model.UserStats, error) {
	var stats model.UserStats
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&stats)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &stats, nil
}

// Save upserts the counter document. This is a plain read-modify-write from
// the caller's perspective; concurrent saves for the same user last-write-win.
func (r *StatsRepo) Save(ctx context.Context, stats *model.UserStats) error {
	update := bson.M{
		"$set": bson.M{
			"lastQuestionDate":   stats.LastQuestionDate,
			"dailyQuestionCount": stats.DailyQuestionCount,
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": stats.UserID}, update, opts)
	return err
}

// Delete removes the user's counter document.
func (r *StatsRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
