package controllers

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jumuiya/community-backend/src/lib"
	"github.com/jumuiya/community-backend/src/models"
	"github.com/jumuiya/community-backend/src/storage"
	"github.com/jumuiya/community-backend/src/store"
)

type MessagingController struct {
	store store.MessagingStore
	users store.UserStore
	media storage.MediaStore
}

func NewMessagingController(s store.MessagingStore, users store.UserStore, media storage.MediaStore) *MessagingController {
	return &MessagingController{store: s, users: users, media: media}
}

type conversationEnvelope struct {
	Message string `json:"message"`
	models.ConversationDto
}

type messageEnvelope struct {
	Message string `json:"message"`
	models.MessageDto
}

func conversationDto(conversation models.Conversation, refs map[primitive.ObjectID]models.UserRef) models.ConversationDto {
	participants := make([]models.UserRef, 0, len(conversation.Participants))
	for _, p := range conversation.Participants {
		participants = append(participants, refs[p])
	}
	return models.ConversationDto{Conversation: conversation, Participants: participants}
}

// GetConversations lists the caller's conversations, most recently touched
// first.
func (mc *MessagingController) GetConversations(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}
	page := parsePage(c)

	conversations, total, err := mc.store.ListConversations(c.Context(), userID, page)
	if err != nil {
		log.Printf("Get conversations error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get conversations"))
	}

	participantIDs := []primitive.ObjectID{}
	for _, conv := range conversations {
		participantIDs = append(participantIDs, conv.Participants...)
	}
	refs, err := resolveRefs(c.Context(), mc.users, participantIDs)
	if err != nil {
		log.Printf("Get conversations error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get conversations"))
	}

	results := make([]models.ConversationDto, 0, len(conversations))
	for _, conv := range conversations {
		results = append(results, conversationDto(conv, refs))
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

// CreateConversation finds or creates the pairwise conversation with the
// given participant. Lookup is order independent, so the same pair always
// lands on the same conversation. There is no unique index backing this;
// two racing first messages can still mint two conversations.
func (mc *MessagingController) CreateConversation(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	var req struct {
		ParticipantID string `json:"participant_id" form:"participant_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.ParticipantID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Participant ID required"))
	}
	participantID, err := primitive.ObjectIDFromHex(req.ParticipantID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid participant ID"))
	}

	conversation, err := mc.store.FindConversationByParticipants(c.Context(), userID, participantID)
	if err == store.ErrNotFound {
		conversation = &models.Conversation{Participants: []primitive.ObjectID{userID, participantID}}
		err = mc.store.InsertConversation(c.Context(), conversation)
	}
	if err != nil {
		log.Printf("Create conversation error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create conversation"))
	}

	refs, err := resolveRefs(c.Context(), mc.users, conversation.Participants)
	if err != nil {
		log.Printf("Create conversation error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to create conversation"))
	}

	return c.Status(fiber.StatusCreated).JSON(conversationEnvelope{
		Message:         "Conversation created",
		ConversationDto: conversationDto(*conversation, refs),
	})
}

// GetMessages pages through a conversation's messages oldest first.
// Only participants may read.
func (mc *MessagingController) GetMessages(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	rawID := c.Query("conversation_id")
	if rawID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Conversation ID required"))
	}
	conversationID, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid conversation ID"))
	}

	conversation, err := mc.store.FindConversation(c.Context(), conversationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Conversation not found"))
	}
	if !conversation.HasParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	page := parsePage(c)
	messages, total, err := mc.store.ListMessages(c.Context(), conversationID, page)
	if err != nil {
		log.Printf("Get messages error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get messages"))
	}

	senderIDs := make([]primitive.ObjectID, 0, len(messages))
	for _, m := range messages {
		senderIDs = append(senderIDs, m.Sender)
	}
	refs, err := resolveRefs(c.Context(), mc.users, senderIDs)
	if err != nil {
		log.Printf("Get messages error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to get messages"))
	}

	results := make([]models.MessageDto, 0, len(messages))
	for _, m := range messages {
		results = append(results, models.MessageDto{Message: m, Sender: refs[m.Sender]})
	}

	return c.JSON(listResponse{Results: results, Count: total, Page: page.Page, Limit: page.Limit})
}

// SendMessage appends to the conversation and bumps its updated_at so the
// conversation list reorders by recency.
func (mc *MessagingController) SendMessage(c *fiber.Ctx) error {
	_, userID, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	var req struct {
		ConversationID string `json:"conversation_id" form:"conversation_id"`
		Content        string `json:"content" form:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid request body"))
	}
	if req.ConversationID == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Conversation ID and content required"))
	}
	conversationID, err := primitive.ObjectIDFromHex(req.ConversationID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid conversation ID"))
	}

	conversation, err := mc.store.FindConversation(c.Context(), conversationID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Conversation not found"))
	}
	if !conversation.HasParticipant(userID) {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	message := models.Message{
		Conversation: conversationID,
		Sender:       userID,
		Content:      req.Content,
		IsRead:       false,
	}

	if file := formFile(c, "attachment"); file != nil {
		path, err := mc.media.Save(storage.KindMessages, file)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse(err.Error()))
		}
		message.Attachment = path
		message.AttachmentType = models.AttachmentTypeFor(file.Header.Get("Content-Type"))
	}

	if err := mc.store.InsertMessage(c.Context(), &message); err != nil {
		log.Printf("Send message error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to send message"))
	}
	if err := mc.store.TouchConversation(c.Context(), conversationID, time.Now()); err != nil {
		log.Printf("Send message touch error: %v", err)
	}

	return c.Status(fiber.StatusCreated).JSON(messageEnvelope{
		Message:    "Message sent",
		MessageDto: models.MessageDto{Message: message, Sender: resolveRef(c.Context(), mc.users, userID)},
	})
}

func (mc *MessagingController) DeleteMessage(c *fiber.Ctx) error {
	user, _, ok := caller(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(lib.ErrorResponse("Not authenticated"))
	}

	id, err := paramID(c, "id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(lib.ErrorResponse("Invalid message ID"))
	}

	message, err := mc.store.FindMessage(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(lib.ErrorResponse("Message not found"))
	}
	if message.Sender.Hex() != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(lib.ErrorResponse("Not authorized"))
	}

	if err := mc.store.DeleteMessage(c.Context(), id); err != nil {
		log.Printf("Delete message error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(lib.ErrorResponse("Failed to delete message"))
	}

	return c.JSON(lib.MessageResponse("Message deleted"))
}
