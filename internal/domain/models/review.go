// internal/domain/models/review.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a charity's note on a donation. No state machine; it only
// participates in the user-deletion cascade.
type Review struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonationID    primitive.ObjectID `bson:"donation_id" json:"donation_id"`
	ReviewerName  string             `bson:"reviewer_name" json:"reviewer_name"`
	ReviewerEmail string             `bson:"reviewer_email" json:"reviewer_email"`
	Rating        int                `bson:"rating" json:"rating"`
	Comment       string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}
