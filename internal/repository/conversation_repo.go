package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitcoach/internal/model"
)

// ConversationRepo stores one conversation document per user, keyed by the
// user id.
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo creates the repository over the conversations collection.
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection("conversations"),
	}
}

// Find returns the user's conversation, or an empty one when no document
// exists yet. First-message flows rely on the empty result, so absence is
// not an error.
func (r *ConversationRepo) Find(ctx context.Context, userID string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &model.Conversation{UserID: userID, Messages: []model.Message{}}, nil
		}
		return nil, err
	}
	return &conv, nil
}

// Save upserts the conversation with merge semantics: only the message array
// and the last-updated stamp are written, unrelated fields are left alone.
func (r *ConversationRepo) Save(ctx context.Context, userID string, messages []model.Message) error {
	update := bson.M{
		"$set": bson.M{
			"messages":     messages,
			"last_updated": time.Now(),
		},
	}

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": userID}, update, opts)
	return err
}

// Delete removes the user's conversation document.
func (r *ConversationRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": userID})
	return err
}
