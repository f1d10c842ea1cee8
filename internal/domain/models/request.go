// internal/domain/models/request.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request statuses.
const (
	RequestPending  = "Pending"
	RequestAccepted = "Accepted"
	RequestRejected = "Rejected"
)

// Request is one charity's claim against a donation. DonationID is a value
// reference, not ownership: a request can outlive its donation and dangle.
// The donation and charity display fields are snapshots taken at filing time
// so listings never need a join.
type Request struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DonationID primitive.ObjectID `bson:"donation_id" json:"donation_id"`

	DonationTitle   string `bson:"donation_title,omitempty" json:"donation_title,omitempty"`
	RestaurantName  string `bson:"restaurant_name,omitempty" json:"restaurant_name,omitempty"`
	RestaurantEmail string `bson:"restaurant_email,omitempty" json:"restaurant_email,omitempty"`

	CharityName  string `bson:"charity_name" json:"charity_name"`
	CharityEmail string `bson:"charity_email" json:"charity_email"`
	CharityLogo  string `bson:"charity_logo,omitempty" json:"charity_logo,omitempty"`

	Description string `bson:"description,omitempty" json:"description,omitempty"`
	PickupTime  string `bson:"pickup_time,omitempty" json:"pickup_time,omitempty"`

	RequestStatus string `bson:"request_status" json:"request_status"`                      // Pending | Accepted | Rejected
	PickingStatus string `bson:"picking_status,omitempty" json:"picking_status,omitempty"` // "" | Picked Up

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	PickedUpAt *time.Time `bson:"picked_up_at,omitempty" json:"picked_up_at,omitempty"`
}
