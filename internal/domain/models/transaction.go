// internal/domain/models/transaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction statuses track the role-request outcome in lock-step.
const (
	TransactionPending  = "pending"
	TransactionApproved = "approved"
	TransactionRejected = "rejected"
)

// Transaction records a role-upgrade payment. The collection is named
// "transections" after the original deployment; renaming it would orphan
// every existing document, so the spelling stays.
type Transaction struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TransectionID string             `bson:"transection_id" json:"transection_id"` // payment-processor reference
	Email         string             `bson:"email" json:"email"`
	Amount        int64              `bson:"amount" json:"amount"` // smallest currency unit
	Currency      string             `bson:"currency,omitempty" json:"currency,omitempty"`
	Purpose       string             `bson:"purpose,omitempty" json:"purpose,omitempty"` // e.g. "charity_role" | "restaurant_role"
	Status        string             `bson:"status" json:"status"`
	RequestTime   time.Time          `bson:"request_time" json:"request_time"`
}
