// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		UID:       "uid-" + primitive.NewObjectID().Hex(),
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin)
}

// CreateRestaurant creates a test restaurant user.
func (f *Fixtures) CreateRestaurant(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleRestaurant)
}

// CreateCharity creates a test charity user.
func (f *Fixtures) CreateCharity(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleCharity)
}

// CreateDonation creates a verified, unlocked donation owned by the
// restaurant email.
func (f *Fixtures) CreateDonation(ctx context.Context, title, restaurantName, restaurantEmail string) models.Donation {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.Donation{
		ID:              primitive.NewObjectID(),
		Title:           title,
		FoodType:        "cooked",
		Quantity:        "10 portions",
		Location:        "Test City",
		RestaurantName:  restaurantName,
		RestaurantEmail: restaurantEmail,
		Status:          models.DonationVerified,
		IsLocked:        false,
		PostedAt:        now,
		UpdatedAt:       now,
	}
	if _, err := f.db.Collection("donations").InsertOne(ctx, d); err != nil {
		f.t.Fatalf("failed to create test donation: %v", err)
	}
	return d
}

// CreateRequest creates a Pending request by the charity against the donation.
func (f *Fixtures) CreateRequest(ctx context.Context, d models.Donation, charityName, charityEmail string) models.Request {
	f.t.Helper()

	r := models.Request{
		ID:              primitive.NewObjectID(),
		DonationID:      d.ID,
		DonationTitle:   d.Title,
		RestaurantName:  d.RestaurantName,
		RestaurantEmail: d.RestaurantEmail,
		CharityName:     charityName,
		CharityEmail:    charityEmail,
		RequestStatus:   models.RequestPending,
		CreatedAt:       time.Now().UTC(),
	}
	if _, err := f.db.Collection("requests").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	return r
}

// CreateTransaction creates a pending payment record for the email.
func (f *Fixtures) CreateTransaction(ctx context.Context, email, purpose string) models.Transaction {
	f.t.Helper()

	txn := models.Transaction{
		ID:            primitive.NewObjectID(),
		TransectionID: "pi_" + primitive.NewObjectID().Hex(),
		Email:         email,
		Amount:        2500,
		Currency:      "usd",
		Purpose:       purpose,
		Status:        models.TransactionPending,
		RequestTime:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("transections").InsertOne(ctx, txn); err != nil {
		f.t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}

// CreateReview creates a review by the email on the donation.
func (f *Fixtures) CreateReview(ctx context.Context, donationID primitive.ObjectID, name, email string) models.Review {
	f.t.Helper()

	r := models.Review{
		ID:            primitive.NewObjectID(),
		DonationID:    donationID,
		ReviewerName:  name,
		ReviewerEmail: email,
		Rating:        5,
		Comment:       "great",
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := f.db.Collection("reviews").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test review: %v", err)
	}
	return r
}

// CreateFavorite creates a bookmark by the email on the donation.
func (f *Fixtures) CreateFavorite(ctx context.Context, donationID primitive.ObjectID, email string) models.Favorite {
	f.t.Helper()

	fav := models.Favorite{
		ID:         primitive.NewObjectID(),
		DonationID: donationID,
		UserEmail:  email,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("favorites").InsertOne(ctx, fav); err != nil {
		f.t.Fatalf("failed to create test favorite: %v", err)
	}
	return fav
}
