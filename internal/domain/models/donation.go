// internal/domain/models/donation.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Donation moderation statuses.
const (
	DonationPending  = "Pending"
	DonationVerified = "Verified"
	DonationRejected = "Rejected"
)

// PickedUp is the terminal pickup status shared by donations
// (donation_status) and requests (picking_status).
const PickedUp = "Picked Up"

// ValidDonationStatus reports whether s is a known moderation status.
func ValidDonationStatus(s string) bool {
	switch s {
	case DonationPending, DonationVerified, DonationRejected:
		return true
	}
	return false
}

// Donation is one posted batch of surplus food.
//
// IsLocked is the arbitration linchpin: true means exactly one request on this
// donation has been accepted, and it only ever flips false→true through a
// conditional single-document write.
type Donation struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	FoodType     string             `bson:"food_type,omitempty" json:"food_type,omitempty"`
	Quantity     string             `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Location     string             `bson:"location,omitempty" json:"location,omitempty"`
	PickupWindow string             `bson:"pickup_window,omitempty" json:"pickup_window,omitempty"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`

	RestaurantName  string `bson:"restaurant_name" json:"restaurant_name"`
	RestaurantEmail string `bson:"restaurant_email" json:"restaurant_email"`

	Status         string `bson:"status" json:"status"`                                       // Pending | Verified | Rejected
	DonationStatus string `bson:"donation_status,omitempty" json:"donation_status,omitempty"` // "" | Picked Up
	IsLocked       bool   `bson:"is_locked" json:"is_locked"`
	IsFeatured     bool   `bson:"is_featured,omitempty" json:"is_featured,omitempty"`

	// Favoriters holds emails with set semantics ($addToSet only).
	Favoriters []string `bson:"favoriters,omitempty" json:"favoriters,omitempty"`

	// Winning charity snapshot, denormalized at pickup confirmation.
	CharityName  string `bson:"charity_name,omitempty" json:"charity_name,omitempty"`
	CharityEmail string `bson:"charity_email,omitempty" json:"charity_email,omitempty"`

	PostedAt   time.Time  `bson:"posted_at" json:"posted_at"`
	UpdatedAt  time.Time  `bson:"updated_at" json:"updated_at"`
	PickedUpAt *time.Time `bson:"picked_up_at,omitempty" json:"picked_up_at,omitempty"`
}
