package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) FindConversationByParticipants(ctx context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	// $all containment, so [A,B] and [B,A] resolve to the same document.
	var conversation models.Conversation
	err := s.db.Collection("conversations").FindOne(ctx, bson.M{
		"participants": bson.M{"$all": []primitive.ObjectID{a, b}},
	}).Decode(&conversation)
	if err != nil {
		return nil, translateErr(err)
	}
	return &conversation, nil
}

func (s *Store) InsertConversation(ctx context.Context, conversation *models.Conversation) error {
	now := time.Now()
	if conversation.Id.IsZero() {
		conversation.Id = primitive.NewObjectID()
	}
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	_, err := s.db.Collection("conversations").InsertOne(ctx, conversation)
	return err
}

func (s *Store) FindConversation(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.Collection("conversations").FindOne(ctx, bson.M{"_id": id}).Decode(&conversation)
	if err != nil {
		return nil, translateErr(err)
	}
	return &conversation, nil
}

func (s *Store) ListConversations(ctx context.Context, user primitive.ObjectID, page store.Page) ([]models.Conversation, int64, error) {
	conversations := []models.Conversation{}
	total, err := findPaged(ctx, s.db.Collection("conversations"), bson.M{"participants": user},
		bson.D{{Key: "updated_at", Value: -1}}, page, &conversations)
	if err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

func (s *Store) TouchConversation(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.db.Collection("conversations").UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"updated_at": at}},
	)
	return err
}

func (s *Store) ListMessages(ctx context.Context, conversation primitive.ObjectID, page store.Page) ([]models.Message, int64, error) {
	messages := []models.Message{}
	total, err := findPaged(ctx, s.db.Collection("messages"), bson.M{"conversation": conversation},
		bson.D{{Key: "created_at", Value: 1}}, page, &messages)
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *Store) InsertMessage(ctx context.Context, message *models.Message) error {
	if message.Id.IsZero() {
		message.Id = primitive.NewObjectID()
	}
	message.CreatedAt = time.Now()

	_, err := s.db.Collection("messages").InsertOne(ctx, message)
	return err
}

func (s *Store) FindMessage(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var message models.Message
	err := s.db.Collection("messages").FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		return nil, translateErr(err)
	}
	return &message, nil
}

func (s *Store) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	return s.deleteByID(ctx, "messages", id)
}
