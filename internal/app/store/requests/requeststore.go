// internal/app/store/requests/requeststore.go
package requeststore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
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
	return &Store{c: db.Collection("requests")}
}

// ErrDuplicateClaim is returned when a charity already holds a request on the
// donation. Backed by the unique (donation_id, charity_email) index, so the
// guarantee holds even when two File calls race past the pre-check.
var ErrDuplicateClaim = errors.New("charity already has a request on this donation")

// Insert files a new Pending request.
func (s *Store) Insert(ctx context.Context, r models.Request) (models.Request, error) {
	r.ID = primitive.NewObjectID()
	r.CharityEmail = normalize.Email(r.CharityEmail)
	r.RequestStatus = models.RequestPending
	r.PickingStatus = ""
	r.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Request{}, ErrDuplicateClaim
		}
		return models.Request{}, err
	}
	return r, nil
}

// GetByID loads a request. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// HasActiveClaim reports whether the charity already holds a Pending or
// Accepted request on the donation.
func (s *Store) HasActiveClaim(ctx context.Context, donationID primitive.ObjectID, charityEmail string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"donation_id":    donationID,
		"charity_email":  normalize.Email(charityEmail),
		"request_status": bson.M{"$in": []string{models.RequestPending, models.RequestAccepted}},
	}).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// AcceptIfPending conditionally transitions Pending→Accepted. Returns false
// when the request was not Pending (already decided, or gone).
func (s *Store) AcceptIfPending(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "request_status": models.RequestPending},
		bson.M{"$set": bson.M{"request_status": models.RequestAccepted}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// SetStatus forces a request status. Used for the plain Rejected transition
// and for rolling a lost accept race back to Rejected.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"request_status": status}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// RejectOtherPending bulk-rejects every other Pending request on the
// donation. Requests that already left Pending are skipped by the filter,
// which is exactly the best-effort semantics the protocol wants.
func (s *Store) RejectOtherPending(ctx context.Context, donationID, winnerID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{
			"donation_id":    donationID,
			"_id":            bson.M{"$ne": winnerID},
			"request_status": models.RequestPending,
		},
		bson.M{"$set": bson.M{"request_status": models.RequestRejected}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// ConfirmPickup stamps the picked-up sub-state on an Accepted request.
func (s *Store) ConfirmPickup(ctx context.Context, id primitive.ObjectID, at time.Time) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "request_status": models.RequestAccepted},
		bson.M{"$set": bson.M{"picking_status": models.PickedUp, "picked_up_at": at}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// CountAccepted returns the number of Accepted requests on a donation.
// The arbitration invariant keeps this at 0 or 1.
func (s *Store) CountAccepted(ctx context.Context, donationID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"donation_id":    donationID,
		"request_status": models.RequestAccepted,
	})
}

// ListByCharity returns a charity's requests, newest first.
func (s *Store) ListByCharity(ctx context.Context, charityEmail string) ([]models.Request, error) {
	return s.list(ctx, bson.M{"charity_email": normalize.Email(charityEmail)})
}

// ListByDonation returns every request filed against one donation.
func (s *Store) ListByDonation(ctx context.Context, donationID primitive.ObjectID) ([]models.Request, error) {
	return s.list(ctx, bson.M{"donation_id": donationID})
}

// ListByRestaurant returns all requests against a restaurant's donations,
// matched on the denormalized restaurant_email snapshot.
func (s *Store) ListByRestaurant(ctx context.Context, restaurantEmail string) ([]models.Request, error) {
	return s.list(ctx, bson.M{"restaurant_email": normalize.Email(restaurantEmail)})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Request, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var requests []models.Request
	if err := cur.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// DeleteIfPending removes a charity's own request only while it is still
// Pending. Cancelling an Accepted request would strand the donation lock.
func (s *Store) DeleteIfPending(ctx context.Context, id primitive.ObjectID, charityEmail string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":            id,
		"charity_email":  normalize.Email(charityEmail),
		"request_status": models.RequestPending,
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByCharity removes every request filed by the charity. Used by the
// user-teardown cascade.
func (s *Store) DeleteByCharity(ctx context.Context, charityEmail string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"charity_email": normalize.Email(charityEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
