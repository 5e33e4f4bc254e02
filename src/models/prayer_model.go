package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrayerType string

const (
	PrayerTypeRequest   PrayerType = "request"
	PrayerTypeTestimony PrayerType = "testimony"
	PrayerTypePraise    PrayerType = "praise"
)

type Prayer struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Content     string             `json:"content" bson:"content"`
	PrayerType  PrayerType         `json:"prayer_type" bson:"prayer_type"`
	IsAnonymous bool               `json:"is_anonymous" bson:"is_anonymous"`
	IsPublic    bool               `json:"is_public" bson:"is_public"`
	Author      primitive.ObjectID `json:"author" bson:"author"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type PrayerResponse struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Prayer    primitive.ObjectID `json:"prayer" bson:"prayer"`
	Author    primitive.ObjectID `json:"author" bson:"author"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

type PrayerSupport struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Prayer    primitive.ObjectID `json:"prayer" bson:"prayer"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type PrayerResponseLike struct {
	Id        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Response  primitive.ObjectID `json:"response" bson:"response"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

type PrayerDto struct {
	Prayer
	Author UserRef `json:"author"`
}

type PrayerResponseDto struct {
	PrayerResponse
	Author UserRef `json:"author"`
}
