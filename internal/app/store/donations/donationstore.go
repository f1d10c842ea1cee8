// internal/app/store/donations/donationstore.go
package donationstore

import (
	"context"
	"errors"
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
	return &Store{c: db.Collection("donations")}
}

var (
	// ErrAlreadyLocked reports a lost lock race: the donation exists but
	// is_locked was already true.
	ErrAlreadyLocked = errors.New("donation is already locked")
	// ErrAlreadyFavorited reports that the favoriter set already held the email.
	ErrAlreadyFavorited = errors.New("donation already favorited by this user")
)

// Create inserts a new donation in the Pending, unlocked state.
func (s *Store) Create(ctx context.Context, d models.Donation) (models.Donation, error) {
	d.ID = primitive.NewObjectID()
	d.RestaurantEmail = normalize.Email(d.RestaurantEmail)
	d.Status = models.DonationPending
	d.DonationStatus = ""
	d.IsLocked = false

	now := time.Now().UTC()
	d.PostedAt = now
	d.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, d); err != nil {
		return models.Donation{}, err
	}
	return d, nil
}

// GetByID loads a donation. Returns mongo.ErrNoDocuments if absent.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Donation, error) {
	var d models.Donation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Lock atomically flips is_locked false→true. This is the arbitration
// linchpin: the filter carries the predicate, so the compare and the set are
// one document-level operation, never a read-then-write pair.
func (s *Store) Lock(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_locked": false},
		bson.M{"$set": bson.M{"is_locked": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 1 {
		return nil
	}
	// No unlocked document matched: either the donation is gone or someone
	// else holds the lock.
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err != nil {
		return err // mongo.ErrNoDocuments or a real failure
	}
	return ErrAlreadyLocked
}

// ConfirmPickup marks the donation picked up and records the winning
// charity's display snapshot.
func (s *Store) ConfirmPickup(ctx context.Context, id primitive.ObjectID, charityName, charityEmail string, at time.Time) (int64, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"donation_status": models.PickedUp,
		"picked_up_at":    at,
		"charity_name":    charityName,
		"charity_email":   normalize.Email(charityEmail),
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SetStatus applies a moderation decision (Pending/Verified/Rejected).
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// SetFeatured toggles the featured flag.
func (s *Store) SetFeatured(ctx context.Context, id primitive.ObjectID, featured bool) (int64, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_featured": featured, "updated_at": time.Now().UTC()}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// AddFavoriter adds an email to the favoriter set. Returns ErrAlreadyFavorited
// when the set already contained it ($addToSet matched but modified nothing).
func (s *Store) AddFavoriter(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"favoriters": normalize.Email(email)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	if res.ModifiedCount == 0 {
		return ErrAlreadyFavorited
	}
	return nil
}

// RemoveFavoriter pulls an email from the favoriter set.
func (s *Store) RemoveFavoriter(ctx context.Context, id primitive.ObjectID, email string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$pull": bson.M{"favoriters": normalize.Email(email)}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ContentUpdate holds the owner-editable donation fields.
type ContentUpdate struct {
	Title        string
	Description  string
	FoodType     string
	Quantity     string
	Location     string
	PickupWindow string
	Image        string
}

// UpdateContent applies an owner edit, scoped to the owning restaurant so a
// stale id can never touch someone else's donation.
func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, restaurantEmail string, upd ContentUpdate) (int64, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "restaurant_email": normalize.Email(restaurantEmail)},
		bson.M{"$set": bson.M{
			"title":         upd.Title,
			"description":   upd.Description,
			"food_type":     upd.FoodType,
			"quantity":      upd.Quantity,
			"location":      upd.Location,
			"pickup_window": upd.PickupWindow,
			"image":         upd.Image,
			"updated_at":    time.Now().UTC(),
		}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// DeleteOwned removes a donation, scoped to its owner.
func (s *Store) DeleteOwned(ctx context.Context, id primitive.ObjectID, restaurantEmail string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "restaurant_email": normalize.Email(restaurantEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByRestaurant removes every donation owned by the restaurant.
// Used by the user-teardown cascade; requests referencing these donations are
// deliberately left dangling.
func (s *Store) DeleteByRestaurant(ctx context.Context, restaurantEmail string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"restaurant_email": normalize.Email(restaurantEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListVerified returns all publicly visible donations, newest first.
func (s *Store) ListVerified(ctx context.Context) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"status": models.DonationVerified})
}

// ListFeatured returns verified donations flagged as featured.
func (s *Store) ListFeatured(ctx context.Context) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"status": models.DonationVerified, "is_featured": true})
}

// ListByRestaurant returns a restaurant's own donations in any status.
func (s *Store) ListByRestaurant(ctx context.Context, restaurantEmail string) ([]models.Donation, error) {
	return s.list(ctx, bson.M{"restaurant_email": normalize.Email(restaurantEmail)})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Donation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "posted_at", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var donations []models.Donation
	if err := cur.All(ctx, &donations); err != nil {
		return nil, err
	}
	return donations, nil
}
