// internal/domain/models/favorite.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorite is a saved-donation bookmark. It duplicates a small donation
// snapshot so the favorites list renders without a join, and it deliberately
// survives donation deletion (dangling references are tolerated).
type Favorite struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonationID primitive.ObjectID `bson:"donation_id" json:"donation_id"`
	UserEmail  string             `bson:"user_email" json:"user_email"`

	DonationTitle  string `bson:"donation_title,omitempty" json:"donation_title,omitempty"`
	DonationImage  string `bson:"donation_image,omitempty" json:"donation_image,omitempty"`
	RestaurantName string `bson:"restaurant_name,omitempty" json:"restaurant_name,omitempty"`
	Location       string `bson:"location,omitempty" json:"location,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
