package memory

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/store"
)

func (s *Store) FindConversationByParticipants(_ context.Context, a, b primitive.ObjectID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.conversations {
		if c.HasParticipant(a) && c.HasParticipant(b) {
			conversation := c
			return &conversation, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) InsertConversation(_ context.Context, conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if conversation.Id.IsZero() {
		conversation.Id = primitive.NewObjectID()
	}
	conversation.CreatedAt = now
	conversation.UpdatedAt = now

	s.conversations[conversation.Id] = *conversation
	return nil
}

func (s *Store) FindConversation(_ context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conversation, ok := s.conversations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &conversation, nil
}

func (s *Store) ListConversations(_ context.Context, user primitive.ObjectID, page store.Page) ([]models.Conversation, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Conversation{}
	for _, c := range s.conversations {
		if c.HasParticipant(user) {
			matched = append(matched, c)
		}
	}

	sortBy(matched, func(c models.Conversation) time.Time { return c.UpdatedAt },
		func(c models.Conversation) primitive.ObjectID { return c.Id }, true)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) TouchConversation(_ context.Context, id primitive.ObjectID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.conversations[id]; ok {
		c.UpdatedAt = at
		s.conversations[id] = c
	}
	return nil
}

func (s *Store) ListMessages(_ context.Context, conversation primitive.ObjectID, page store.Page) ([]models.Message, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Message{}
	for _, m := range s.messages {
		if m.Conversation == conversation {
			matched = append(matched, m)
		}
	}

	sortBy(matched, func(m models.Message) time.Time { return m.CreatedAt },
		func(m models.Message) primitive.ObjectID { return m.Id }, false)
	return paginate(matched, page), int64(len(matched)), nil
}

func (s *Store) InsertMessage(_ context.Context, message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message.Id.IsZero() {
		message.Id = primitive.NewObjectID()
	}
	message.CreatedAt = time.Now()

	s.messages[message.Id] = *message
	return nil
}

func (s *Store) FindMessage(_ context.Context, id primitive.ObjectID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	message, ok := s.messages[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &message, nil
}

func (s *Store) DeleteMessage(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.messages, id)
	return nil
}
