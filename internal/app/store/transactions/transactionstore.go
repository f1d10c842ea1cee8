// internal/app/store/transactions/transactionstore.go
package transactionstore

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

// Store wraps the "transections" collection (historical spelling, kept so
// existing documents stay reachable).
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("transections")}
}

// Insert records a captured payment with a server-side timestamp.
func (s *Store) Insert(ctx context.Context, t models.Transaction) (models.Transaction, error) {
	t.ID = primitive.NewObjectID()
	t.Email = normalize.Email(t.Email)
	if t.Status == "" {
		t.Status = models.TransactionPending
	}
	t.RequestTime = time.Now().UTC()

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Transaction{}, err
	}
	return t, nil
}

// LatestByEmail returns the payer's most recent transaction.
// Returns mongo.ErrNoDocuments when none exist.
func (s *Store) LatestByEmail(ctx context.Context, email string) (*models.Transaction, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "request_time", Value: -1}})
	var t models.Transaction
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}, opts).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// SetStatus updates one transaction's status by document id.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (int64, error) {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, err
	}
	return res.MatchedCount, nil
}

// ListByEmail returns the payer's transactions, newest first.
func (s *Store) ListByEmail(ctx context.Context, email string) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "request_time", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"email": normalize.Email(email)}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []models.Transaction
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// DeleteByEmail removes every transaction for the payer. Used by the
// user-teardown cascade.
func (s *Store) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"email": normalize.Email(email)})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
