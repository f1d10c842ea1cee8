// internal/app/store/reviews/reviewstore.go
package reviewstore

import (
	"context"
	"time"

	"github.com/helal366/flexora-server/internal/app/system/normalize"
	"github.com/helal366/flexora-server/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("reviews")}
}

func (s *Store) Insert(ctx context.Context, r models.Review) (models.Review, error) {
	r.ID = primitive.NewObjectID()
	r.ReviewerEmail = normalize.Email(r.ReviewerEmail)
	r.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Review{}, err
	}
	return r, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Review, error) {
	var r models.Review
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ListByDonation returns reviews on one donation, newest first.
func (s *Store) ListByDonation(ctx context.Context, donationID primitive.ObjectID) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"donation_id": donationID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []models.Review
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteOwned removes a review, scoped to its author.
func (s *Store) DeleteOwned(ctx context.Context, id primitive.ObjectID, reviewerEmail string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "reviewer_email": normalize.Email(reviewerEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByReviewer removes every review by the author. Used by the
// user-teardown cascade.
func (s *Store) DeleteByReviewer(ctx context.Context, reviewerEmail string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"reviewer_email": normalize.Email(reviewerEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
