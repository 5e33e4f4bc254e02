package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Conversation struct {
	Id           primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Participants []primitive.ObjectID `json:"participants" bson:"participants"`
	CreatedAt    time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at" bson:"updated_at"`
}

// HasParticipant reports whether the user belongs to the conversation.
func (c *Conversation) HasParticipant(id primitive.ObjectID) bool {
	for _, p := range c.Participants {
		if p == id {
			return true
		}
	}
	return false
}

type AttachmentType string

const (
	AttachmentTypeImage    AttachmentType = "image"
	AttachmentTypeDocument AttachmentType = "document"
	AttachmentTypeOther    AttachmentType = "other"
)

// AttachmentTypeFor classifies an upload by its declared media type.
func AttachmentTypeFor(contentType string) AttachmentType {
	if strings.HasPrefix(contentType, "image") {
		return AttachmentTypeImage
	}
	return AttachmentTypeDocument
}

type Message struct {
	Id             primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Conversation   primitive.ObjectID `json:"conversation" bson:"conversation"`
	Sender         primitive.ObjectID `json:"sender" bson:"sender"`
	Content        string             `json:"content,omitempty" bson:"content,omitempty"`
	Attachment     string             `json:"attachment,omitempty" bson:"attachment,omitempty"`
	AttachmentType AttachmentType     `json:"attachment_type,omitempty" bson:"attachment_type,omitempty"`
	IsRead         bool               `json:"is_read" bson:"is_read"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
}

type ConversationDto struct {
	Conversation
	Participants []UserRef `json:"participants"`
}

type MessageDto struct {
	Message
	Sender UserRef `json:"sender"`
}
