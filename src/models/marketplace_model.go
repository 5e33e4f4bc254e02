package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ListingType string

const (
	ListingTypeProduct ListingType = "Product"
	ListingTypeService ListingType = "Service"
	ListingTypeEvent   ListingType = "Event"
)

type MarketplaceListing struct {
	Id          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Owner       primitive.ObjectID `json:"owner" bson:"owner"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Price       string             `json:"price" bson:"price"`
	Currency    string             `json:"currency" bson:"currency"`
	Type        ListingType        `json:"type" bson:"type"`
	Contact     string             `json:"contact" bson:"contact"`
	CountryCode string             `json:"countryCode" bson:"countryCode"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Date        *time.Time         `json:"date,omitempty" bson:"date,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

type ListingDto struct {
	MarketplaceListing
	Owner UserRef `json:"owner"`
}
