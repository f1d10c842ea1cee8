// internal/app/store/favorites/favoritestore.go
package favoritestore

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
	return &Store{c: db.Collection("favorites")}
}

// ErrDuplicateFavorite is returned when the user already bookmarked the
// donation (unique (user_email, donation_id) index).
var ErrDuplicateFavorite = errors.New("donation already in favorites")

func (s *Store) Insert(ctx context.Context, f models.Favorite) (models.Favorite, error) {
	f.ID = primitive.NewObjectID()
	f.UserEmail = normalize.Email(f.UserEmail)
	f.CreatedAt = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, f); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Favorite{}, ErrDuplicateFavorite
		}
		return models.Favorite{}, err
	}
	return f, nil
}

// Delete removes one bookmark by donation and owner.
func (s *Store) Delete(ctx context.Context, donationID primitive.ObjectID, userEmail string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"donation_id": donationID,
		"user_email":  normalize.Email(userEmail),
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByUser returns the user's bookmarks, newest first.
func (s *Store) ListByUser(ctx context.Context, userEmail string) ([]models.Favorite, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"user_email": normalize.Email(userEmail)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []models.Favorite
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteByUser removes every bookmark owned by the user. Used by the
// user-teardown cascade.
func (s *Store) DeleteByUser(ctx context.Context, userEmail string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_email": normalize.Email(userEmail)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
