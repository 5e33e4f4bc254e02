package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	Password    string             `json:"-" bson:"password"`
	Name        string             `json:"name" bson:"name"`
	Bio         string             `json:"bio" bson:"bio"`
	Image       string             `json:"image" bson:"image"`
	Location    string             `json:"location" bson:"location"`
	Website     string             `json:"website" bson:"website"`
	Facebook    string             `json:"facebook" bson:"facebook"`
	Twitter     string             `json:"twitter" bson:"twitter"`
	Instagram   string             `json:"instagram" bson:"instagram"`
	IsActive    bool               `json:"is_active" bson:"is_active"`
	IsSuperuser bool               `json:"is_superuser" bson:"is_superuser"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// UserRef is the projection embedded in populated responses (author, owner,
// sender, participants).
type UserRef struct {
	Id    primitive.ObjectID `json:"_id" bson:"_id"`
	Email string             `json:"email" bson:"email"`
	Name  string             `json:"name" bson:"name"`
	Image string             `json:"image,omitempty" bson:"image,omitempty"`
}

func (u User) Ref() UserRef {
	return UserRef{Id: u.Id, Email: u.Email, Name: u.Name, Image: u.Image}
}

// AuthUser is the identity resolved from a bearer token. ID is the hex form
// of the user's ObjectID; ownership checks compare it against entity author
// fields as text.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
