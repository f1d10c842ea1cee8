// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account profile. The email is the stable identity key: requests,
// reviews, favorites, and transections all reference users by email value,
// never by foreign key.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"` // lowercase, trimmed
	PhotoURL string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	UID      string             `bson:"uid,omitempty" json:"uid,omitempty"` // identity-provider account id
	Role     string             `bson:"role" json:"role"`

	// Organization profile, populated for restaurants and charities
	// (and for pending role requests awaiting approval).
	ContactNumber       string `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	OrganizationName    string `bson:"organization_name,omitempty" json:"organization_name,omitempty"`
	OrganizationEmail   string `bson:"organization_email,omitempty" json:"organization_email,omitempty"`
	OrganizationContact string `bson:"organization_contact,omitempty" json:"organization_contact,omitempty"`
	OrganizationAddress string `bson:"organization_address,omitempty" json:"organization_address,omitempty"`
	OrganizationTagline string `bson:"organization_tagline,omitempty" json:"organization_tagline,omitempty"`
	OrganizationLogo    string `bson:"organization_logo,omitempty" json:"organization_logo,omitempty"`
	Mission             string `bson:"mission,omitempty" json:"mission,omitempty"`

	// TransectionID links the role-upgrade payment record ("transection" is
	// the spelling the payment collection has always used).
	TransectionID string `bson:"transection_id,omitempty" json:"transection_id,omitempty"`

	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
	LastLogin *time.Time `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
